package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"busstation-backend/internal/denorm"
	"busstation-backend/internal/logging"
	"busstation-backend/internal/parse"
)

// The PATCH handlers below are thin edits of source entities. Each one
// pushes the edit onto dependent dispatch records before answering; a sync
// failure is logged and never changes the response status.

type updateVehicleRequest struct {
	PlateNumber *string `json:"plateNumber"`
	OperatorID  *string `json:"operatorId"`
	DriverID    *string `json:"driverId"`
	SeatCount   *int    `json:"seatCount"`
}

// UpdateVehicle handles PATCH /api/vehicles/:id.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	var req updateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := map[string]any{}
	var changes denorm.VehicleChanges
	if req.PlateNumber != nil {
		plate := parse.NormalizePlate(*req.PlateNumber)
		if plate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plateNumber must not be blank", "field": "plateNumber"})
			return
		}
		fields["plate_number"] = plate
		changes.PlateNumber = &plate
	}
	if req.OperatorID != nil {
		operatorID := strings.TrimSpace(*req.OperatorID)
		fields["operator_id"] = nullable(operatorID)
		changes.OperatorID = &operatorID
	}
	if req.DriverID != nil {
		fields["driver_id"] = nullable(strings.TrimSpace(*req.DriverID))
	}
	if req.SeatCount != nil {
		if *req.SeatCount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seatCount must not be negative", "field": "seatCount"})
			return
		}
		fields["seat_count"] = *req.SeatCount
	}

	vehicle, err := h.store.UpdateVehicle(ctx, id, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result := h.syncVehicle(ctx, id, changes)
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle, "sync": result})
}

func (h *Handler) syncVehicle(ctx context.Context, id string, changes denorm.VehicleChanges) denorm.SyncResult {
	if changes.PlateNumber == nil && changes.OperatorID == nil {
		h.syncer.ForgetVehicle(id)
		return denorm.SyncResult{}
	}
	result, err := h.syncer.SyncVehicleChanges(ctx, id, changes)
	if err != nil {
		logging.LogError(h.log, "api", "UpdateVehicle", "sync dispatch records", id, err)
	}
	return result
}

type updateDriverRequest struct {
	FullName      *string `json:"fullName"`
	Phone         *string `json:"phone"`
	LicenseNumber *string `json:"licenseNumber"`
}

// UpdateDriver handles PATCH /api/drivers/:id.
func (h *Handler) UpdateDriver(c *gin.Context) {
	var req updateDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := map[string]any{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fullName must not be blank", "field": "fullName"})
			return
		}
		fields["full_name"] = name
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.LicenseNumber != nil {
		fields["license_number"] = strings.TrimSpace(*req.LicenseNumber)
	}

	driver, err := h.store.UpdateDriver(ctx, id, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var result denorm.SyncResult
	if req.FullName != nil {
		result, err = h.syncer.SyncDriverChanges(ctx, id, driver.FullName)
		if err != nil {
			logging.LogError(h.log, "api", "UpdateDriver", "sync dispatch records", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver, "sync": result})
}

type updateRouteRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	DestinationID *string `json:"destinationId"`
}

// UpdateRoute handles PATCH /api/routes/:id.
func (h *Handler) UpdateRoute(c *gin.Context) {
	var req updateRouteRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := map[string]any{}
	var changes denorm.RouteChanges
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		fields["name"] = name
		changes.Name = &name
	}
	if req.Type != nil {
		routeType := strings.TrimSpace(*req.Type)
		fields["type"] = routeType
		changes.Type = &routeType
	}
	if req.DestinationID != nil {
		destID := strings.TrimSpace(*req.DestinationID)
		fields["destination_id"] = nullable(destID)
		changes.DestinationID = &destID
	}

	route, err := h.store.UpdateRoute(ctx, id, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var result denorm.SyncResult
	if len(fields) > 0 {
		result, err = h.syncer.SyncRouteChanges(ctx, id, changes)
		if err != nil {
			logging.LogError(h.log, "api", "UpdateRoute", "sync dispatch records", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"route": route, "sync": result})
}

type updateCodedRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

func (r updateCodedRequest) fields() map[string]any {
	fields := map[string]any{}
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
		fields["name"] = *r.Name
	}
	if r.Code != nil {
		*r.Code = strings.TrimSpace(*r.Code)
		fields["code"] = *r.Code
	}
	return fields
}

// UpdateOperator handles PATCH /api/operators/:id.
func (h *Handler) UpdateOperator(c *gin.Context) {
	var req updateCodedRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := req.fields()
	operator, err := h.store.UpdateOperator(ctx, id, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var result denorm.OperatorSyncResult
	if len(fields) > 0 {
		result, err = h.syncer.SyncOperatorChanges(ctx, id, denorm.OperatorChanges{Name: req.Name, Code: req.Code})
		if err != nil {
			logging.LogError(h.log, "api", "UpdateOperator", "sync dispatch records", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"operator": operator, "sync": result})
}

// UpdateLocation handles PATCH /api/locations/:id.
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req updateCodedRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	fields := req.fields()
	location, err := h.store.UpdateLocation(ctx, id, fields)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var result denorm.DestinationSyncResult
	if len(fields) > 0 {
		result, err = h.syncer.SyncDestinationChanges(ctx, id, denorm.LocationChanges{Name: req.Name, Code: req.Code})
		if err != nil {
			logging.LogError(h.log, "api", "UpdateLocation", "sync dispatch records", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"location": location, "sync": result})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
