package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog is the persisted shape of a submitted product catalog.
// PriceSnapshot and DurationMonthsSnapshot are copied from the referenced
// package at creation time and never re-read from the packages table.
type Catalog struct {
	ID                     int64           `json:"id" gorm:"primaryKey"`
	Slug                   string          `json:"slug" gorm:"uniqueIndex;not null"`
	UserID                 int64           `json:"user_id" gorm:"column:user_id;not null;index"`
	Title                  string          `json:"title" gorm:"not null"`
	Description            string          `json:"description" gorm:"not null"`
	Category               string          `json:"category" gorm:"not null"`
	Tags                   string          `json:"-" gorm:"column:tags"` // JSON array of strings
	CoverImageURL          string          `json:"cover_image_url" gorm:"column:cover_image_url;not null"`
	PdfFileURL             string          `json:"pdf_file_url" gorm:"column:pdf_file_url;not null"`
	PageCount              int             `json:"page_count" gorm:"column:page_count"`
	CompanyName            string          `json:"company_name" gorm:"column:company_name;not null"`
	ContactPerson          string          `json:"contact_person" gorm:"column:contact_person;not null"`
	Phone                  string          `json:"phone" gorm:"not null"`
	Email                  string          `json:"email" gorm:"not null"`
	Website                string          `json:"website"`
	PackageID              int64           `json:"package_id" gorm:"column:package_id;not null"`
	PriceSnapshot          decimal.Decimal `json:"price_snapshot" gorm:"column:price_snapshot;type:decimal(12,2);not null"`
	DurationMonthsSnapshot int             `json:"duration_months_snapshot" gorm:"column:duration_months_snapshot;not null"`
	Status                 string          `json:"status" gorm:"not null;default:PENDING;index"`
	AdminNotes             string          `json:"admin_notes" gorm:"column:admin_notes"`
	StartDate              *time.Time      `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate                *time.Time      `json:"end_date,omitempty" gorm:"column:end_date"`
	ViewCount              int64           `json:"view_count" gorm:"column:view_count;default:0"`
	DownloadCount          int64           `json:"download_count" gorm:"column:download_count;default:0"`
	CreatedAt              time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt              time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Catalog) TableName() string {
	return "catalogs"
}
