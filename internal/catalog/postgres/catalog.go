package postgres

import (
	"time"

	"gorm.io/gorm"

	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
)

// CatalogRepository implements catalog.RepositoryAPI using GORM. Lifecycle
// writes are guarded with a status predicate so a concurrent transition
// surfaces as ErrStaleStatus instead of silently overwriting.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(m *catalogDatamodel.Catalog) error {
	return r.db.Create(m).Error
}

func (r *CatalogRepository) GetByID(id int64) (*catalogDatamodel.Catalog, error) {
	var m catalogDatamodel.Catalog
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCatalogNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) GetBySlug(slugStr string) (*catalogDatamodel.Catalog, error) {
	var m catalogDatamodel.Catalog
	err := r.db.Where("slug = ?", slugStr).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCatalogNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) GetByUserID(userID int64, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var models []*catalogDatamodel.Catalog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	return models, err
}

func (r *CatalogRepository) GetByStatus(status string, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var models []*catalogDatamodel.Catalog
	err := r.db.Where("status = ?", status).
		Order("created_at ASC"). // FIFO for the moderation queue
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	return models, err
}

// ListPublished returns approved catalogs still inside their publication
// window at the given instant.
func (r *CatalogRepository) ListPublished(now time.Time, category string, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	query := r.db.Where("status = ? AND end_date > ?", string(catalog.StatusApproved), now)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var models []*catalogDatamodel.Catalog
	err := query.
		Order("start_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	return models, err
}

// ListExpired returns approved catalogs whose window has already closed.
func (r *CatalogRepository) ListExpired(now time.Time, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var models []*catalogDatamodel.Catalog
	err := r.db.Where("status = ? AND end_date <= ?", string(catalog.StatusApproved), now).
		Order("end_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	return models, err
}

// UpdateWithStatusCAS rewrites the row only while it still holds the status
// the caller observed. Zero affected rows means someone else transitioned
// the record first.
func (r *CatalogRepository) UpdateWithStatusCAS(m *catalogDatamodel.Catalog, expectedStatus string) error {
	m.UpdatedAt = time.Now()

	result := r.db.Model(&catalogDatamodel.Catalog{}).
		Where("id = ? AND status = ?", m.ID, expectedStatus).
		Updates(map[string]interface{}{
			"title":          m.Title,
			"description":    m.Description,
			"category":       m.Category,
			"tags":           m.Tags,
			"cover_image_url": m.CoverImageURL,
			"pdf_file_url":   m.PdfFileURL,
			"page_count":     m.PageCount,
			"company_name":   m.CompanyName,
			"contact_person": m.ContactPerson,
			"phone":          m.Phone,
			"email":          m.Email,
			"website":        m.Website,
			"status":         m.Status,
			"admin_notes":    m.AdminNotes,
			"start_date":     m.StartDate,
			"end_date":       m.EndDate,
			"updated_at":     m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrStaleStatus
	}
	return nil
}

func (r *CatalogRepository) DeleteWithStatusCAS(id int64, expectedStatus string) error {
	result := r.db.Where("id = ? AND status = ?", id, expectedStatus).
		Delete(&catalogDatamodel.Catalog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrStaleStatus
	}
	return nil
}

func (r *CatalogRepository) SlugExists(slugStr string) (bool, error) {
	var count int64
	err := r.db.Model(&catalogDatamodel.Catalog{}).
		Where("slug = ?", slugStr).
		Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository) IncrementViewCount(id int64, delta int64) error {
	return r.db.Model(&catalogDatamodel.Catalog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta)).Error
}

func (r *CatalogRepository) IncrementDownloadCount(id int64, delta int64) error {
	return r.db.Model(&catalogDatamodel.Catalog{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", delta)).Error
}
