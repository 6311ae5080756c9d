package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busstation-backend/internal/dispatch"
	"busstation-backend/internal/model"
	"busstation-backend/internal/mw"
	"busstation-backend/internal/store"
)

const (
	defaultListLimit = 200
	maxListLimit     = 500
)

// CreateDispatch handles POST /api/dispatch.
func (h *Handler) CreateDispatch(c *gin.Context) {
	var req dispatch.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.workflow.CreateDispatch(c.Request.Context(), mw.ActorFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ListDispatch handles GET /api/dispatch.
func (h *Handler) ListDispatch(c *gin.Context) {
	filter := store.DispatchFilter{
		VehicleID:     c.Query("vehicleId"),
		DriverID:      c.Query("driverId"),
		RouteID:       c.Query("routeId"),
		OperatorID:    c.Query("operatorId"),
		DestinationID: c.Query("destinationId"),
		Status:        model.DispatchStatus(c.Query("status")),
		Limit:         defaultListLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		filter.Limit = limit
	}

	records, err := h.workflow.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetDispatch handles GET /api/dispatch/:id.
func (h *Handler) GetDispatch(c *gin.Context) {
	rec, err := h.workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// transitionHandler binds the step input and runs the step for the record in the path.
func transitionHandler[T any](h *Handler, step func(c *gin.Context, id, actor string, in T) (*model.DispatchRecord, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if !bindJSON(c, &req) {
			return
		}
		rec, err := step(c, c.Param("id"), mw.ActorFrom(c), req)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// PassengerDrop handles POST /api/dispatch/:id/passenger-drop with the
// desk confirmation rules.
func (h *Handler) PassengerDrop() gin.HandlerFunc {
	return transitionHandler(h, func(c *gin.Context, id, actor string, in dispatch.PassengerDropInput) (*model.DispatchRecord, error) {
		return h.workflow.ConfirmPassengerDrop(c.Request.Context(), id, actor, in)
	})
}

// IssuePermit handles POST /api/dispatch/:id/permit.
func (h *Handler) IssuePermit() gin.HandlerFunc {
	return transitionHandler(h, func(c *gin.Context, id, actor string, in dispatch.PermitInput) (*model.DispatchRecord, error) {
		return h.workflow.IssuePermit(c.Request.Context(), id, actor, in)
	})
}

// ProcessPayment handles POST /api/dispatch/:id/payment.
func (h *Handler) ProcessPayment() gin.HandlerFunc {
	return transitionHandler(h, func(c *gin.Context, id, actor string, in dispatch.PaymentInput) (*model.DispatchRecord, error) {
		return h.workflow.ProcessPayment(c.Request.Context(), id, actor, in)
	})
}

// DepartureOrder handles POST /api/dispatch/:id/departure-order.
func (h *Handler) DepartureOrder() gin.HandlerFunc {
	return transitionHandler(h, func(c *gin.Context, id, actor string, in dispatch.DepartureOrderInput) (*model.DispatchRecord, error) {
		return h.workflow.RecordDepartureOrder(c.Request.Context(), id, actor, in)
	})
}

// Exit handles POST /api/dispatch/:id/exit.
func (h *Handler) Exit() gin.HandlerFunc {
	return transitionHandler(h, func(c *gin.Context, id, actor string, in dispatch.ExitInput) (*model.DispatchRecord, error) {
		return h.workflow.RecordExit(c.Request.Context(), id, actor, in)
	})
}
