// Package registry mirrors the upstream badge registry into the badge
// vehicle table and refreshes dispatch records of badges whose plate changed.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"busstation-backend/config"
	"busstation-backend/internal/denorm"
	"busstation-backend/internal/logging"
	"busstation-backend/internal/model"
	"busstation-backend/internal/parse"
)

const moduleName = "registry"

// BadgeStore persists badge vehicles.
type BadgeStore interface {
	UpsertBadgeVehicles(ctx context.Context, badges []model.BadgeVehicle) ([]model.BadgeVehicle, error)
}

// VehicleSyncer pushes vehicle edits onto dispatch records.
type VehicleSyncer interface {
	SyncVehicleChanges(ctx context.Context, vehicleID string, changes denorm.VehicleChanges) (denorm.SyncResult, error)
}

// Service polls the badge registry.
type Service struct {
	cfg    config.RegistryConfig
	store  BadgeStore
	syncer VehicleSyncer
	client *http.Client
	log    logrus.FieldLogger
}

// NewService creates and initializes a new registry poller.
func NewService(cfg config.RegistryConfig, st BadgeStore, syncer VehicleSyncer, log logrus.FieldLogger) *Service {
	log = log.WithField("module", moduleName)

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warnf("invalid proxy URL %q: %v, registry will not use a proxy", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:    cfg,
		store:  st,
		syncer: syncer,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		log: log,
	}
}

// Run polls the registry until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("badge registry poller is disabled")
		return
	}
	s.log.WithField("interval", s.cfg.Interval).Info("starting badge registry poller")

	s.ScrapeOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("badge registry poller shutting down")
			return
		case <-timer.C:
			s.ScrapeOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// ScrapeOnce fetches every page, upserts the badges and syncs the dispatch
// records of badges whose plate number changed. It returns the number of
// badges imported.
func (s *Service) ScrapeOnce(ctx context.Context) int {
	var items []ApiItem
	total := 1
	pageSize := s.cfg.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchPage(ctx, page)
		if err != nil {
			logging.LogError(s.log, moduleName, "ScrapeOnce", "fetch page", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		items = append(items, resp.Data.Items...)
	}

	if fetchErr != nil && len(items) == 0 {
		s.log.Warn("registry cycle aborted, no badges retrieved")
		return 0
	}

	badges := make([]model.BadgeVehicle, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		badge, ok := s.toBadge(item)
		if !ok {
			continue
		}
		if _, dup := seen[badge.Key]; dup {
			continue
		}
		seen[badge.Key] = struct{}{}
		badges = append(badges, badge)
	}

	changed, err := s.store.UpsertBadgeVehicles(ctx, badges)
	if err != nil {
		logging.LogError(s.log, moduleName, "ScrapeOnce", "upsert badges", len(badges), err)
		return 0
	}

	for _, badge := range changed {
		plate := badge.PlateNumber
		ref := denorm.VehicleRef{Kind: denorm.RefBadge, Key: badge.Key}
		if _, err := s.syncer.SyncVehicleChanges(ctx, ref.String(), denorm.VehicleChanges{PlateNumber: &plate}); err != nil {
			logging.LogError(s.log, moduleName, "ScrapeOnce", "sync badge vehicle", ref.String(), err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"badges":  len(badges),
		"changed": len(changed),
	}).Info("registry cycle finished")
	return len(badges)
}

func (s *Service) toBadge(item ApiItem) (model.BadgeVehicle, bool) {
	key := strings.TrimSpace(item.Key)
	if key == "" || strings.TrimSpace(item.PlateNumber) == "" {
		s.log.WithField("item", item).Warn("skipping registry item without key or plate")
		return model.BadgeVehicle{}, false
	}

	badge := model.BadgeVehicle{
		Key:         key,
		PlateNumber: parse.NormalizePlate(item.PlateNumber),
		BadgeNumber: strings.TrimSpace(item.BadgeNumber),
	}
	expires, err := parseExpiry(item.ExpiresAt)
	if err != nil {
		s.log.WithField("badgeKey", key).Warnf("could not parse expiry: %v", err)
	}
	badge.ExpiresAt = expires
	return badge, true
}

// parseExpiry accepts a full timestamp or a bare date.
func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", value)
}

// fetchPage fetches a single page of badges from the upstream API.
func (s *Service) fetchPage(ctx context.Context, page int) (*ApiResponse, error) {
	jsonBody, err := json.Marshal(map[string]int{"page": page, "pageSize": s.cfg.PageSize})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp ApiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	if apiResp.Code != 0 {
		return nil, fmt.Errorf("API returned non-zero application code: %d", apiResp.Code)
	}
	return &apiResp, nil
}
