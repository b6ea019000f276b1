package packages

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a purchasable publication package. Price and duration are
// snapshotted onto catalogs at creation time, so editing a row here never
// changes already-issued catalogs.
type Package struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	DurationMonths int             `json:"duration_months" gorm:"column:duration_months;not null"`
	Features       string          `json:"-" gorm:"column:features"` // JSON array of strings, ordered
	IsActive       bool            `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Package) TableName() string {
	return "packages"
}
