package payment

import (
	errors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/core/common/validation"
)

type SubmitPaymentDTO struct {
	PaymentMethod string `json:"payment_method"`
	BankName      string `json:"bank_name"`
	SenderName    string `json:"sender_name"`
	ReferenceNo   string `json:"reference_no"`
	ReceiptURL    string `json:"receipt_url"`
	Notes         string `json:"notes"`
}

func (dto SubmitPaymentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("payment_method", dto.PaymentMethod).Required().OneOf(Methods(), errors.ErrCodeInvalidMethod)
	v.Field("bank_name", dto.BankName).Required().MaxLength(100)
	v.Field("sender_name", dto.SenderName).Required().MaxLength(200)
	v.Field("reference_no", dto.ReferenceNo).Required().MaxLength(100)
	v.Field("receipt_url", dto.ReceiptURL).URL()
	v.Field("notes", dto.Notes).MaxLength(1000)
	return v.Validate()
}
