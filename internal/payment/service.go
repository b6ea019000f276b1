package payment

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	paymentDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/payment"
	"github.com/mitrakatalog/catalog-management/internal/core/events"
)

// RepositoryAPI persists payment evidence. SubmitWithStatus must write the
// evidence row and flip the catalog status in one transaction, failing with
// ErrStaleStatus when the catalog no longer holds the expected status.
type RepositoryAPI interface {
	GetByCatalogID(catalogID int64) (*paymentDatamodel.CatalogPayment, error)
	SubmitWithStatus(evidence *paymentDatamodel.CatalogPayment, expectedCatalogStatus, newCatalogStatus string) error
}

// CatalogReaderAPI is the slice of the catalog repository this service needs.
type CatalogReaderAPI interface {
	GetByID(id int64) (*catalogDatamodel.Catalog, error)
}

type Service struct {
	repo     RepositoryAPI
	catalogs CatalogReaderAPI
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, catalogs CatalogReaderAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
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

// SubmitPayment records transfer evidence for a PENDING catalog and flips it
// to PAID atomically. Resubmitting while PAID overwrites the evidence and
// leaves the status untouched; any other status rejects the submission.
func (s *Service) SubmitPayment(catalogID, ownerID int64, dto SubmitPaymentDTO) (*CatalogPayment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("payment validation failed", "catalog_id", catalogID, "error", err.GetDetailedMessage())
		return nil, err
	}

	m, err := s.catalogs.GetByID(catalogID)
	if err != nil {
		return nil, errors.ErrCatalogNotFound
	}
	c := catalog.FromDataModel(m)

	if !c.IsOwnedBy(ownerID) {
		s.logger.Warn("payment denied: not owner", "catalog_id", catalogID, "user_id", ownerID)
		return nil, errors.ErrNotOwner
	}

	observed := c.Status
	switch observed {
	case catalog.StatusPending, catalog.StatusPaid:
	default:
		s.logger.Warn("payment denied: status does not accept evidence", "catalog_id", catalogID, "status", observed)
		return nil, errors.ErrPaymentNotAccepted
	}

	now := s.now()
	evidence := &CatalogPayment{
		CatalogID:     catalogID,
		PaymentMethod: dto.PaymentMethod,
		BankName:      dto.BankName,
		SenderName:    dto.SenderName,
		ReferenceNo:   dto.ReferenceNo,
		ReceiptURL:    dto.ReceiptURL,
		Notes:         dto.Notes,
		SubmittedAt:   now,
	}

	model := ToDataModel(evidence)
	if err := s.repo.SubmitWithStatus(model, string(observed), string(catalog.StatusPaid)); err != nil {
		s.logger.Error("failed to submit payment", "catalog_id", catalogID, "error", err)
		return nil, err
	}
	evidence.ID = model.ID
	evidence.CreatedAt = model.CreatedAt
	evidence.UpdatedAt = model.UpdatedAt

	s.eventBus.Publish(context.Background(),
		events.NewPaymentSubmittedEvent(catalogID, ownerID, evidence.ReferenceNo))

	s.logger.Info("payment evidence submitted",
		"catalog_id", catalogID,
		"user_id", ownerID,
		"payment_method", evidence.PaymentMethod,
		"reference_no", evidence.ReferenceNo)

	return evidence, nil
}

// GetPaymentForCatalog returns the evidence for the catalog's owner or a
// moderator reviewing the submission.
func (s *Service) GetPaymentForCatalog(catalogID int64, actor *auth.User) (*CatalogPayment, error) {
	m, err := s.catalogs.GetByID(catalogID)
	if err != nil {
		return nil, errors.ErrCatalogNotFound
	}
	c := catalog.FromDataModel(m)

	if !c.IsOwnedBy(actor.ID) && !actor.Can(auth.OpModerateView) {
		return nil, errors.ErrNotOwner
	}

	evidence, err := s.repo.GetByCatalogID(catalogID)
	if err != nil {
		return nil, errors.NewInternalError("failed to get payment", err)
	}
	if evidence == nil {
		return nil, errors.ErrPaymentNotFound
	}

	return FromDataModel(evidence), nil
}
