package moderation

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	"github.com/mitrakatalog/catalog-management/internal/core/events"
)

type Service struct {
	catalogs catalog.RepositoryAPI
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(catalogs catalog.RepositoryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		catalogs: catalogs,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ApproveCatalog publishes a PAID catalog. The publication window starts at
// the requested date (or now) and runs for the duration snapshotted at
// creation. Approving from any other status, including a second approve of
// an already-approved record, fails with a conflict.
func (s *Service) ApproveCatalog(catalogID int64, moderator *auth.User, startDate *time.Time) (*catalog.Catalog, error) {
	if !moderator.Can(auth.OpApprove) {
		return nil, errors.ErrModeratorOnly
	}

	c, err := s.getDomain(catalogID)
	if err != nil {
		return nil, err
	}

	observed := c.Status

	start := s.now()
	if startDate != nil {
		start = *startDate
	}
	start, end := catalog.PublicationWindow(start, c.DurationMonthsSnapshot)

	if err := c.Approve(start, end); err != nil {
		s.logger.Warn("approve refused",
			"catalog_id", catalogID,
			"moderator_id", moderator.ID,
			"status", observed)
		return nil, err
	}

	if err := s.catalogs.UpdateWithStatusCAS(catalog.ToDataModel(c), string(observed)); err != nil {
		s.logger.Error("failed to approve catalog", "catalog_id", catalogID, "error", err)
		return nil, err
	}

	s.eventBus.Publish(context.Background(),
		events.NewCatalogApprovedEvent(catalogID, moderator.ID, start, end))

	s.logger.Info("catalog approved",
		"catalog_id", catalogID,
		"moderator_id", moderator.ID,
		"start_date", start,
		"end_date", end)

	return c, nil
}

// RejectCatalog declines a PENDING or PAID submission with a reason the
// owner will see.
func (s *Service) RejectCatalog(catalogID int64, moderator *auth.User, reason string) (*catalog.Catalog, error) {
	if !moderator.Can(auth.OpReject) {
		return nil, errors.ErrModeratorOnly
	}
	if reason == "" {
		return nil, errors.NewValidationFieldError("reason", "rejection reason is required", errors.ErrCodeValidationFailed)
	}

	c, err := s.getDomain(catalogID)
	if err != nil {
		return nil, err
	}

	observed := c.Status

	if err := c.Reject(reason); err != nil {
		s.logger.Warn("reject refused",
			"catalog_id", catalogID,
			"moderator_id", moderator.ID,
			"status", observed)
		return nil, err
	}

	if err := s.catalogs.UpdateWithStatusCAS(catalog.ToDataModel(c), string(observed)); err != nil {
		s.logger.Error("failed to reject catalog", "catalog_id", catalogID, "error", err)
		return nil, err
	}

	s.eventBus.Publish(context.Background(),
		events.NewCatalogRejectedEvent(catalogID, moderator.ID, reason))

	s.logger.Info("catalog rejected",
		"catalog_id", catalogID,
		"moderator_id", moderator.ID,
		"reason", reason)

	return c, nil
}

// OverrideApprove renews a catalog whose publication window has lapsed. Only
// admins hold this capability, and only derived-expired records qualify.
func (s *Service) OverrideApprove(catalogID int64, admin *auth.User, startDate *time.Time) (*catalog.Catalog, error) {
	if !admin.Can(auth.OpOverride) {
		return nil, errors.ErrAdminOnly
	}

	c, err := s.getDomain(catalogID)
	if err != nil {
		return nil, err
	}

	observed := c.Status
	now := s.now()

	start := now
	if startDate != nil {
		start = *startDate
	}
	start, end := catalog.PublicationWindow(start, c.DurationMonthsSnapshot)

	if err := c.OverrideApprove(start, end, now); err != nil {
		s.logger.Warn("override refused",
			"catalog_id", catalogID,
			"admin_id", admin.ID,
			"status", observed)
		return nil, err
	}

	if err := s.catalogs.UpdateWithStatusCAS(catalog.ToDataModel(c), string(observed)); err != nil {
		s.logger.Error("failed to override-approve catalog", "catalog_id", catalogID, "error", err)
		return nil, err
	}

	s.eventBus.Publish(context.Background(),
		events.NewCatalogOverrideApprovedEvent(catalogID, admin.ID, start, end))

	s.logger.Info("catalog renewed by override",
		"catalog_id", catalogID,
		"admin_id", admin.ID,
		"start_date", start,
		"end_date", end)

	return c, nil
}

func (s *Service) getDomain(catalogID int64) (*catalog.Catalog, error) {
	m, err := s.catalogs.GetByID(catalogID)
	if err != nil {
		return nil, errors.ErrCatalogNotFound
	}
	return catalog.FromDataModel(m), nil
}
