package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosimple/slug"

	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	"github.com/mitrakatalog/catalog-management/internal/packages"
)

// RepositoryAPI is the data access contract for catalog records. Mutating
// operations that move a record through its lifecycle take the status the
// caller observed and must fail with ErrStaleStatus when the row no longer
// holds it (compare-and-set).
type RepositoryAPI interface {
	Create(m *catalogDatamodel.Catalog) error
	GetByID(id int64) (*catalogDatamodel.Catalog, error)
	GetBySlug(slugStr string) (*catalogDatamodel.Catalog, error)
	GetByUserID(userID int64, limit, offset int) ([]*catalogDatamodel.Catalog, error)
	GetByStatus(status string, limit, offset int) ([]*catalogDatamodel.Catalog, error)
	ListPublished(now time.Time, category string, limit, offset int) ([]*catalogDatamodel.Catalog, error)
	ListExpired(now time.Time, limit, offset int) ([]*catalogDatamodel.Catalog, error)
	UpdateWithStatusCAS(m *catalogDatamodel.Catalog, expectedStatus string) error
	DeleteWithStatusCAS(id int64, expectedStatus string) error
	SlugExists(slugStr string) (bool, error)
	IncrementViewCount(id int64, delta int64) error
	IncrementDownloadCount(id int64, delta int64) error
}

// PackageResolverAPI resolves the package whose price and duration get
// snapshotted onto a new record.
type PackageResolverAPI interface {
	GetActivePackage(id int64) (*packages.Package, error)
}

// CounterAPI absorbs view/download bumps. Implementations must be safe to
// call from a goroutine and must swallow their own errors; counters are
// best-effort and never part of the read transaction.
type CounterAPI interface {
	BumpView(ctx context.Context, catalogID int64)
	BumpDownload(ctx context.Context, catalogID int64)
}

// DetailCacheAPI caches serialized public detail payloads. A nil-miss is
// (nil, nil). Implementations honor the ttl so a cached payload can never
// outlive the publication window.
type DetailCacheAPI interface {
	GetDetail(ctx context.Context, slugStr string) ([]byte, error)
	SetDetail(ctx context.Context, slugStr string, payload []byte, ttl time.Duration) error
	InvalidateDetail(ctx context.Context, slugStr string) error
}

type Service struct {
	repo        RepositoryAPI
	pkgResolver PackageResolverAPI
	counters    CounterAPI
	detailCache DetailCacheAPI
	detailTTL   time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// cachedDetail keeps the record id next to the public payload so cache hits
// can still bump the view counter.
type cachedDetail struct {
	ID     int64                  `json:"id"`
	Detail *PublicCatalogResponse `json:"detail"`
}

func NewService(repo RepositoryAPI, pkgResolver PackageResolverAPI, counters CounterAPI, detailCache DetailCacheAPI, detailTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		pkgResolver: pkgResolver,
		counters:    counters,
		detailCache: detailCache,
		detailTTL:   detailTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the service clock; tests use it to control derived expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateCatalog validates the submission, snapshots the package price and
// duration onto the record and stores it as PENDING.
func (s *Service) CreateCatalog(ownerID int64, dto CreateCatalogDTO) (*Catalog, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("catalog validation failed", "user_id", ownerID, "error", err.GetDetailedMessage())
		return nil, err
	}

	pkg, err := s.pkgResolver.GetActivePackage(dto.PackageID)
	if err != nil {
		s.logger.Warn("package not resolvable", "package_id", dto.PackageID, "error", err)
		return nil, errors.ErrPackageNotFound
	}

	slugStr, err := s.uniqueSlug(dto.Title)
	if err != nil {
		return nil, errors.NewInternalError("failed to generate slug", err)
	}

	now := s.now()
	c := &Catalog{
		Slug:                   slugStr,
		UserID:                 ownerID,
		Title:                  dto.Title,
		Description:            dto.Description,
		Category:               dto.Category,
		Tags:                   dto.Tags,
		CoverImageURL:          dto.CoverImageURL,
		PdfFileURL:             dto.PdfFileURL,
		PageCount:              dto.PageCount,
		CompanyName:            dto.CompanyName,
		ContactPerson:          dto.ContactPerson,
		Phone:                  dto.Phone,
		Email:                  dto.Email,
		Website:                dto.Website,
		PackageID:              pkg.ID,
		PriceSnapshot:          pkg.Price,
		DurationMonthsSnapshot: pkg.DurationMonths,
		Status:                 StatusPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	model := ToDataModel(c)
	if err := s.repo.Create(model); err != nil {
		s.logger.Error("failed to create catalog", "user_id", ownerID, "error", err)
		return nil, errors.NewInternalError("failed to create catalog", err)
	}
	c.ID = model.ID

	s.logger.Info("catalog created",
		"catalog_id", c.ID,
		"user_id", ownerID,
		"package_id", pkg.ID,
		"price_snapshot", c.PriceSnapshot.String(),
		"duration_months", c.DurationMonthsSnapshot)

	return c, nil
}

// UpdateCatalog applies an owner edit. Only PENDING and REJECTED records are
// editable; editing a REJECTED record re-enters the moderation funnel.
func (s *Service) UpdateCatalog(catalogID, ownerID int64, dto UpdateCatalogDTO) (*Catalog, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.getDomain(catalogID)
	if err != nil {
		return nil, err
	}

	if !c.IsOwnedBy(ownerID) {
		s.logger.Warn("update denied: not owner", "catalog_id", catalogID, "user_id", ownerID)
		return nil, errors.ErrNotOwner
	}
	if !c.Status.Editable() {
		s.logger.Warn("update denied: status not editable", "catalog_id", catalogID, "status", c.Status)
		return nil, errors.ErrStatusNotEditable
	}

	observedStatus := c.Status

	c.Title = dto.Title
	c.Description = dto.Description
	c.Category = dto.Category
	c.Tags = dto.Tags
	c.CoverImageURL = dto.CoverImageURL
	c.PdfFileURL = dto.PdfFileURL
	c.PageCount = dto.PageCount
	c.CompanyName = dto.CompanyName
	c.ContactPerson = dto.ContactPerson
	c.Phone = dto.Phone
	c.Email = dto.Email
	c.Website = dto.Website
	c.UpdatedAt = s.now()

	if observedStatus == StatusRejected {
		if err := c.ResetForResubmission(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateWithStatusCAS(ToDataModel(c), string(observedStatus)); err != nil {
		s.logger.Error("failed to update catalog", "catalog_id", catalogID, "error", err)
		return nil, err
	}

	s.logger.Info("catalog updated", "catalog_id", catalogID, "user_id", ownerID, "status", c.Status)
	return c, nil
}

// DeleteCatalog hard-deletes an owner's record while it is still PENDING or
// REJECTED. Published and paid records are never deletable by the owner.
func (s *Service) DeleteCatalog(catalogID, ownerID int64) error {
	c, err := s.getDomain(catalogID)
	if err != nil {
		return err
	}

	if !c.IsOwnedBy(ownerID) {
		return errors.ErrNotOwner
	}
	if !c.Status.Deletable() {
		s.logger.Warn("delete denied: status not deletable", "catalog_id", catalogID, "status", c.Status)
		return errors.ErrStatusNotDeletable
	}

	if err := s.repo.DeleteWithStatusCAS(catalogID, string(c.Status)); err != nil {
		return err
	}

	s.logger.Info("catalog deleted", "catalog_id", catalogID, "user_id", ownerID)
	return nil
}

// GetCatalogForActor returns the full record for its owner or a moderator.
func (s *Service) GetCatalogForActor(catalogID int64, actor *auth.User) (*Catalog, error) {
	c, err := s.getDomain(catalogID)
	if err != nil {
		return nil, err
	}

	if !c.IsOwnedBy(actor.ID) && !actor.Can(auth.OpModerateView) {
		s.logger.Warn("status view denied", "catalog_id", catalogID, "user_id", actor.ID)
		return nil, errors.ErrNotOwner
	}

	return c, nil
}

func (s *Service) ListOwned(ownerID int64, limit, offset int) ([]*Catalog, error) {
	models, err := s.repo.GetByUserID(ownerID, limit, offset)
	if err != nil {
		return nil, errors.NewInternalError("failed to list catalogs", err)
	}
	return FromDataModelSlice(models), nil
}

// ListModerationQueue lists records by stored status for the admin screens.
// The derived EXPIRED pseudo-status is supported as a filter and translates
// to approved-records-past-their-window.
func (s *Service) ListModerationQueue(statusFilter string, limit, offset int) ([]*Catalog, error) {
	if statusFilter == "" {
		statusFilter = string(StatusPaid)
	}

	if Status(statusFilter) == StatusExpired {
		models, err := s.repo.ListExpired(s.now(), limit, offset)
		if err != nil {
			return nil, errors.NewInternalError("failed to list expired catalogs", err)
		}
		return FromDataModelSlice(models), nil
	}

	if _, ok := ParseStoredStatus(statusFilter); !ok {
		return nil, errors.NewValidationFieldError("status", "unknown status filter", errors.ErrCodeValidationFailed)
	}

	models, err := s.repo.GetByStatus(statusFilter, limit, offset)
	if err != nil {
		return nil, errors.NewInternalError("failed to list catalogs", err)
	}
	return FromDataModelSlice(models), nil
}

// ListPublished returns the publicly visible records: approved and inside
// their window at the time of the query.
func (s *Service) ListPublished(category string, limit, offset int) ([]*PublicCatalogResponse, error) {
	models, err := s.repo.ListPublished(s.now(), category, limit, offset)
	if err != nil {
		return nil, errors.NewInternalError("failed to list published catalogs", err)
	}

	result := make([]*PublicCatalogResponse, 0, len(models))
	for _, m := range models {
		result = append(result, FromDataModel(m).ToPublicResponse())
	}
	return result, nil
}

// GetPublishedBySlug serves the public detail page. Unpublished, rejected
// and expired records all surface as not-found. The view counter bump is
// fire-and-forget and never delays or fails the read.
func (s *Service) GetPublishedBySlug(ctx context.Context, slugStr string) (*PublicCatalogResponse, error) {
	if cached := s.cachedDetail(ctx, slugStr); cached != nil {
		s.bumpView(ctx, cached.ID)
		return cached.Detail, nil
	}

	m, err := s.repo.GetBySlug(slugStr)
	if err != nil {
		return nil, errors.ErrCatalogNotFound
	}

	c := FromDataModel(m)
	now := s.now()
	if !c.IsPubliclyVisible(now) {
		return nil, errors.ErrCatalogNotFound
	}

	detail := c.ToPublicResponse()
	s.storeDetail(ctx, c, detail, now)
	s.bumpView(ctx, c.ID)

	return detail, nil
}

// RegisterDownload resolves the pdf URL for a published record and bumps the
// download counter.
func (s *Service) RegisterDownload(ctx context.Context, slugStr string) (string, error) {
	m, err := s.repo.GetBySlug(slugStr)
	if err != nil {
		return "", errors.ErrCatalogNotFound
	}

	c := FromDataModel(m)
	if !c.IsPubliclyVisible(s.now()) {
		return "", errors.ErrCatalogNotFound
	}

	if s.counters != nil {
		go s.counters.BumpDownload(context.WithoutCancel(ctx), c.ID)
	}

	return c.PdfFileURL, nil
}

func (s *Service) getDomain(catalogID int64) (*Catalog, error) {
	m, err := s.repo.GetByID(catalogID)
	if err != nil {
		return nil, errors.ErrCatalogNotFound
	}
	return FromDataModel(m), nil
}

func (s *Service) bumpView(ctx context.Context, catalogID int64) {
	if s.counters == nil {
		return
	}
	go s.counters.BumpView(context.WithoutCancel(ctx), catalogID)
}

func (s *Service) cachedDetail(ctx context.Context, slugStr string) *cachedDetail {
	if s.detailCache == nil {
		return nil
	}
	payload, err := s.detailCache.GetDetail(ctx, slugStr)
	if err != nil || payload == nil {
		return nil
	}
	var cached cachedDetail
	if err := json.Unmarshal(payload, &cached); err != nil || cached.Detail == nil {
		return nil
	}
	return &cached
}

// storeDetail caches the payload with a ttl capped by the remaining window,
// so the cache can never serve a record past its end date.
func (s *Service) storeDetail(ctx context.Context, c *Catalog, detail *PublicCatalogResponse, now time.Time) {
	if s.detailCache == nil || s.detailTTL <= 0 {
		return
	}

	ttl := s.detailTTL
	if c.EndDate != nil {
		if remaining := c.EndDate.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}

	payload, err := json.Marshal(cachedDetail{ID: c.ID, Detail: detail})
	if err != nil {
		return
	}
	if err := s.detailCache.SetDetail(ctx, c.Slug, payload, ttl); err != nil {
		s.logger.Debug("detail cache set failed", "slug", c.Slug, "error", err)
	}
}

const maxSlugAttempts = 50

func (s *Service) uniqueSlug(title string) (string, error) {
	base := slug.Make(title)
	candidate := base

	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.repo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", fmt.Errorf("could not find a free slug for %q", base)
}
