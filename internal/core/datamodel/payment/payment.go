package payment

import "time"

// CatalogPayment is the single self-reported bank-transfer evidence row for a
// catalog. The unique index on catalog_id enforces the 1:1 relationship;
// resubmission updates the row in place instead of appending history.
type CatalogPayment struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	CatalogID     int64     `json:"catalog_id" gorm:"column:catalog_id;uniqueIndex;not null"`
	PaymentMethod string    `json:"payment_method" gorm:"column:payment_method;not null"`
	BankName      string    `json:"bank_name" gorm:"column:bank_name;not null"`
	SenderName    string    `json:"sender_name" gorm:"column:sender_name;not null"`
	ReferenceNo   string    `json:"reference_no" gorm:"column:reference_no;not null"`
	ReceiptURL    string    `json:"receipt_url" gorm:"column:receipt_url"`
	Notes         string    `json:"notes"`
	SubmittedAt   time.Time `json:"submitted_at" gorm:"column:submitted_at"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (CatalogPayment) TableName() string {
	return "catalog_payments"
}
