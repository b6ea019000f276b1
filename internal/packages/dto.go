package packages

import "github.com/shopspring/decimal"

type PackageResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	DurationMonths int             `json:"duration_months"`
	Features       []string        `json:"features"`
}

type PackagesResponse struct {
	Packages []PackageResponse `json:"packages"`
}

func (p *Package) ToResponse() PackageResponse {
	return PackageResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		DurationMonths: p.DurationMonths,
		Features:       p.Features,
	}
}
