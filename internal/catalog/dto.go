package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/core/common/validation"
)

// CatalogFieldsDTO carries the member-editable fields, shared by create and
// update requests.
type CatalogFieldsDTO struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	CoverImageURL string   `json:"cover_image_url"`
	PdfFileURL    string   `json:"pdf_file_url"`
	PageCount     int      `json:"page_count"`
	CompanyName   string   `json:"company_name"`
	ContactPerson string   `json:"contact_person"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Website       string   `json:"website"`
}

func (dto CatalogFieldsDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("description", dto.Description).Required().MaxLength(5000)
	v.Field("category", dto.Category).Required().OneOf(Categories(), errors.ErrCodeInvalidCategory)
	v.Field("cover_image_url", dto.CoverImageURL).Required().URL()
	v.Field("pdf_file_url", dto.PdfFileURL).Required().URL()
	v.Field("page_count", int64(dto.PageCount)).Required().MinInt(1, errors.ErrCodeInvalidPageCount)
	v.Field("company_name", dto.CompanyName).Required().MaxLength(200)
	v.Field("contact_person", dto.ContactPerson).Required().MaxLength(200)
	v.Field("phone", dto.Phone).Required().MaxLength(30)
	v.Field("email", dto.Email).Required().Email()
	v.Field("website", dto.Website).URL()
	return v.Validate()
}

type CreateCatalogDTO struct {
	CatalogFieldsDTO
	PackageID int64 `json:"package_id"`
}

func (dto CreateCatalogDTO) Validate() *errors.AppError {
	if err := dto.CatalogFieldsDTO.Validate(); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("package_id", dto.PackageID).Required()
	return v.Validate()
}

type UpdateCatalogDTO struct {
	CatalogFieldsDTO
}

// PublicCatalogResponse is the published view: no owner id, no admin notes,
// derived status only.
type PublicCatalogResponse struct {
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Tags          []string        `json:"tags"`
	CoverImageURL string          `json:"cover_image_url"`
	PageCount     int             `json:"page_count"`
	CompanyName   string          `json:"company_name"`
	ContactPerson string          `json:"contact_person"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Website       string          `json:"website,omitempty"`
	PriceSnapshot decimal.Decimal `json:"price"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	ViewCount     int64           `json:"view_count"`
	DownloadCount int64           `json:"download_count"`
}

func (c *Catalog) ToPublicResponse() *PublicCatalogResponse {
	return &PublicCatalogResponse{
		Slug:          c.Slug,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Tags:          c.Tags,
		CoverImageURL: c.CoverImageURL,
		PageCount:     c.PageCount,
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		Website:       c.Website,
		PriceSnapshot: c.PriceSnapshot,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		ViewCount:     c.ViewCount,
		DownloadCount: c.DownloadCount,
	}
}

// OwnerCatalogResponse is the owner/moderator view: the full record plus the
// derived status and expiry flag computed at serialization time.
type OwnerCatalogResponse struct {
	*Catalog
	DerivedStatus Status `json:"derived_status"`
	IsExpired     bool   `json:"is_expired"`
}

func (c *Catalog) ToOwnerResponse(now time.Time) *OwnerCatalogResponse {
	return &OwnerCatalogResponse{
		Catalog:       c,
		DerivedStatus: c.DerivedStatus(now),
		IsExpired:     c.IsExpired(now),
	}
}

func ToOwnerResponseSlice(catalogs []*Catalog, now time.Time) []*OwnerCatalogResponse {
	result := make([]*OwnerCatalogResponse, len(catalogs))
	for i, c := range catalogs {
		result[i] = c.ToOwnerResponse(now)
	}
	return result
}
