package catalog

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/mitrakatalog/catalog-management/internal"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
)

// Status is the closed set of persisted catalog states. EXPIRED is derived
// at read time from APPROVED plus an elapsed end date and is never stored.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"

	// StatusExpired only ever appears in derived views and API responses.
	StatusExpired Status = "EXPIRED"
)

func ParseStoredStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// memberMutable is the permitted-transition table for owner edits and
// deletes: only records still in (or returned to) the moderation funnel may
// be touched by their owner.
var memberMutable = map[Status]bool{
	StatusPending:  true,
	StatusRejected: true,
}

func (s Status) Editable() bool {
	return memberMutable[s]
}

func (s Status) Deletable() bool {
	return memberMutable[s]
}

const (
	CategoryFoodBeverage = "FOOD_BEVERAGE"
	CategoryFashion      = "FASHION"
	CategoryHandicraft   = "HANDICRAFT"
	CategoryFurniture    = "FURNITURE"
	CategoryElectronics  = "ELECTRONICS"
	CategoryHealthBeauty = "HEALTH_BEAUTY"
	CategoryAgriculture  = "AGRICULTURE"
	CategoryServices     = "SERVICES"
	CategoryOther        = "OTHER"
)

func Categories() []string {
	return []string{
		CategoryFoodBeverage,
		CategoryFashion,
		CategoryHandicraft,
		CategoryFurniture,
		CategoryElectronics,
		CategoryHealthBeauty,
		CategoryAgriculture,
		CategoryServices,
		CategoryOther,
	}
}

type Catalog struct {
	ID                     int64           `json:"id"`
	Slug                   string          `json:"slug"`
	UserID                 int64           `json:"user_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description"`
	Category               string          `json:"category"`
	Tags                   []string        `json:"tags"`
	CoverImageURL          string          `json:"cover_image_url"`
	PdfFileURL             string          `json:"pdf_file_url"`
	PageCount              int             `json:"page_count"`
	CompanyName            string          `json:"company_name"`
	ContactPerson          string          `json:"contact_person"`
	Phone                  string          `json:"phone"`
	Email                  string          `json:"email"`
	Website                string          `json:"website,omitempty"`
	PackageID              int64           `json:"package_id"`
	PriceSnapshot          decimal.Decimal `json:"price_snapshot"`
	DurationMonthsSnapshot int             `json:"duration_months_snapshot"`
	Status                 Status          `json:"status"`
	AdminNotes             string          `json:"admin_notes,omitempty"`
	StartDate              *time.Time      `json:"start_date,omitempty"`
	EndDate                *time.Time      `json:"end_date,omitempty"`
	ViewCount              int64           `json:"view_count"`
	DownloadCount          int64           `json:"download_count"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// The transition methods below are the only mutators of Status. Each checks
// the current state and fails with a conflict instead of silently no-opping,
// so a double approve or a payment against an approved record surfaces as an
// error the caller has to look at.

// MarkPaid records that payment evidence exists for this catalog.
func (c *Catalog) MarkPaid() error {
	if c.Status != StatusPending {
		return errors.ErrPaymentNotAccepted
	}
	c.Status = StatusPaid
	c.UpdatedAt = time.Now()
	return nil
}

// Approve publishes the catalog for the given window. Only a PAID record may
// be approved.
func (c *Catalog) Approve(start, end time.Time) error {
	if c.Status != StatusPaid {
		return errors.ErrIllegalTransition
	}
	c.Status = StatusApproved
	c.StartDate = &start
	c.EndDate = &end
	c.UpdatedAt = time.Now()
	return nil
}

// OverrideApprove re-publishes a record whose window has lapsed. This is the
// explicit administrative renewal path; it refuses records that are not
// currently in the derived EXPIRED state.
func (c *Catalog) OverrideApprove(start, end time.Time, now time.Time) error {
	if !c.IsExpired(now) {
		return errors.ErrIllegalTransition
	}
	c.StartDate = &start
	c.EndDate = &end
	c.UpdatedAt = time.Now()
	return nil
}

// Reject declines the submission and records the reason for the owner.
// Allowed from PAID, and from PENDING so obviously invalid submissions can
// be turned away before any payment happens.
func (c *Catalog) Reject(reason string) error {
	if c.Status != StatusPending && c.Status != StatusPaid {
		return errors.ErrIllegalTransition
	}
	c.Status = StatusRejected
	c.AdminNotes = reason
	c.UpdatedAt = time.Now()
	return nil
}

// ResetForResubmission re-enters the moderation funnel after an owner edit of
// a rejected record: status back to PENDING, moderator notes cleared.
func (c *Catalog) ResetForResubmission() error {
	if c.Status != StatusRejected {
		return errors.ErrIllegalTransition
	}
	c.Status = StatusPending
	c.AdminNotes = ""
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Catalog) IsOwnedBy(userID int64) bool {
	return c.UserID == userID
}

// IsExpired reports the derived expiry: an approved record whose window has
// closed. There is no stored EXPIRED state.
func (c *Catalog) IsExpired(now time.Time) bool {
	return c.Status == StatusApproved && c.EndDate != nil && now.After(*c.EndDate)
}

// DerivedStatus is what consumers should display: the stored status, except
// that a lapsed APPROVED record reads as EXPIRED.
func (c *Catalog) DerivedStatus(now time.Time) Status {
	if c.IsExpired(now) {
		return StatusExpired
	}
	return c.Status
}

// IsPubliclyVisible gates every public read: approved, inside the window.
func (c *Catalog) IsPubliclyVisible(now time.Time) bool {
	return c.Status == StatusApproved && !c.IsExpired(now)
}

func ToDataModel(c *Catalog) *catalogDatamodel.Catalog {
	return &catalogDatamodel.Catalog{
		ID:                     c.ID,
		Slug:                   c.Slug,
		UserID:                 c.UserID,
		Title:                  c.Title,
		Description:            c.Description,
		Category:               c.Category,
		Tags:                   marshalTags(c.Tags),
		CoverImageURL:          c.CoverImageURL,
		PdfFileURL:             c.PdfFileURL,
		PageCount:              c.PageCount,
		CompanyName:            c.CompanyName,
		ContactPerson:          c.ContactPerson,
		Phone:                  c.Phone,
		Email:                  c.Email,
		Website:                c.Website,
		PackageID:              c.PackageID,
		PriceSnapshot:          c.PriceSnapshot,
		DurationMonthsSnapshot: c.DurationMonthsSnapshot,
		Status:                 string(c.Status),
		AdminNotes:             c.AdminNotes,
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		ViewCount:              c.ViewCount,
		DownloadCount:          c.DownloadCount,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func FromDataModel(m *catalogDatamodel.Catalog) *Catalog {
	return &Catalog{
		ID:                     m.ID,
		Slug:                   m.Slug,
		UserID:                 m.UserID,
		Title:                  m.Title,
		Description:            m.Description,
		Category:               m.Category,
		Tags:                   unmarshalTags(m.Tags),
		CoverImageURL:          m.CoverImageURL,
		PdfFileURL:             m.PdfFileURL,
		PageCount:              m.PageCount,
		CompanyName:            m.CompanyName,
		ContactPerson:          m.ContactPerson,
		Phone:                  m.Phone,
		Email:                  m.Email,
		Website:                m.Website,
		PackageID:              m.PackageID,
		PriceSnapshot:          m.PriceSnapshot,
		DurationMonthsSnapshot: m.DurationMonthsSnapshot,
		Status:                 Status(m.Status),
		AdminNotes:             m.AdminNotes,
		StartDate:              m.StartDate,
		EndDate:                m.EndDate,
		ViewCount:              m.ViewCount,
		DownloadCount:          m.DownloadCount,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func FromDataModelSlice(models []*catalogDatamodel.Catalog) []*Catalog {
	result := make([]*Catalog, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}

func marshalTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}
