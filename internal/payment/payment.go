package payment

import (
	"time"

	paymentDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/payment"
)

// Payment methods accepted as self-reported transfer evidence. There is no
// gateway integration; an admin verifies the reference manually before
// approving the catalog.
const (
	MethodBankTransfer  = "BANK_TRANSFER"
	MethodMobileBanking = "MOBILE_BANKING"
	MethodATMTransfer   = "ATM_TRANSFER"
)

func Methods() []string {
	return []string{MethodBankTransfer, MethodMobileBanking, MethodATMTransfer}
}

// CatalogPayment is the single evidence record attached to a catalog.
type CatalogPayment struct {
	ID            int64     `json:"id"`
	CatalogID     int64     `json:"catalog_id"`
	PaymentMethod string    `json:"payment_method"`
	BankName      string    `json:"bank_name"`
	SenderName    string    `json:"sender_name"`
	ReferenceNo   string    `json:"reference_no"`
	ReceiptURL    string    `json:"receipt_url"`
	Notes         string    `json:"notes"`
	SubmittedAt   time.Time `json:"submitted_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToDataModel(p *CatalogPayment) *paymentDatamodel.CatalogPayment {
	return &paymentDatamodel.CatalogPayment{
		ID:            p.ID,
		CatalogID:     p.CatalogID,
		PaymentMethod: p.PaymentMethod,
		BankName:      p.BankName,
		SenderName:    p.SenderName,
		ReferenceNo:   p.ReferenceNo,
		ReceiptURL:    p.ReceiptURL,
		Notes:         p.Notes,
		SubmittedAt:   p.SubmittedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromDataModel(m *paymentDatamodel.CatalogPayment) *CatalogPayment {
	return &CatalogPayment{
		ID:            m.ID,
		CatalogID:     m.CatalogID,
		PaymentMethod: m.PaymentMethod,
		BankName:      m.BankName,
		SenderName:    m.SenderName,
		ReferenceNo:   m.ReferenceNo,
		ReceiptURL:    m.ReceiptURL,
		Notes:         m.Notes,
		SubmittedAt:   m.SubmittedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
