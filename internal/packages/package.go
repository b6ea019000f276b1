package packages

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	packagesDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/packages"
)

// Package is a purchasable publication plan. Its price and duration are
// copied onto each catalog at creation time, so a later price change never
// affects catalogs already in flight.
type Package struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	DurationMonths int             `json:"duration_months"`
	Features       []string        `json:"features"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Package) IsActivePackage() bool {
	return p.IsActive
}

func (p *Package) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

func (p *Package) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

func ToDataModel(p *Package) *packagesDatamodel.Package {
	return &packagesDatamodel.Package{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		DurationMonths: p.DurationMonths,
		Features:       marshalFeatures(p.Features),
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(m *packagesDatamodel.Package) *Package {
	return &Package{
		ID:             m.ID,
		Name:           m.Name,
		Price:          m.Price,
		DurationMonths: m.DurationMonths,
		Features:       unmarshalFeatures(m.Features),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func marshalFeatures(features []string) string {
	if len(features) == 0 {
		return "[]"
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalFeatures(raw string) []string {
	if raw == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil
	}
	return features
}
