package payment_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	paymentDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/payment"
	"github.com/mitrakatalog/catalog-management/internal/core/events"
	"github.com/mitrakatalog/catalog-management/internal/payment"
)

func TestPayment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Suite")
}

type mockCatalogReader struct {
	catalogs map[int64]*catalogDatamodel.Catalog
	// staleStatus, when set, is what reads report regardless of the stored
	// row, to simulate a transition racing between read and write.
	staleStatus map[int64]string
}

func (m *mockCatalogReader) GetByID(id int64) (*catalogDatamodel.Catalog, error) {
	c, ok := m.catalogs[id]
	if !ok {
		return nil, apperrors.ErrCatalogNotFound
	}
	copied := *c
	if status, ok := m.staleStatus[id]; ok {
		copied.Status = status
	}
	return &copied, nil
}

type mockPaymentRepository struct {
	byCatalog map[int64]*paymentDatamodel.CatalogPayment
	catalogs  map[int64]*catalogDatamodel.Catalog
	nextID    int64
}

func newMockPaymentRepository(catalogs map[int64]*catalogDatamodel.Catalog) *mockPaymentRepository {
	return &mockPaymentRepository{
		byCatalog: make(map[int64]*paymentDatamodel.CatalogPayment),
		catalogs:  catalogs,
		nextID:    1,
	}
}

func (m *mockPaymentRepository) GetByCatalogID(catalogID int64) (*paymentDatamodel.CatalogPayment, error) {
	p, ok := m.byCatalog[catalogID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

// SubmitWithStatus mirrors the real repository: evidence and status flip
// succeed or fail together.
func (m *mockPaymentRepository) SubmitWithStatus(evidence *paymentDatamodel.CatalogPayment, expectedCatalogStatus, newCatalogStatus string) error {
	c, ok := m.catalogs[evidence.CatalogID]
	if !ok || c.Status != expectedCatalogStatus {
		return apperrors.ErrStaleStatus
	}

	if existing, ok := m.byCatalog[evidence.CatalogID]; ok {
		evidence.ID = existing.ID
		evidence.CreatedAt = existing.CreatedAt
	} else {
		evidence.ID = m.nextID
		m.nextID++
		evidence.CreatedAt = time.Now()
	}
	evidence.UpdatedAt = time.Now()

	copied := *evidence
	m.byCatalog[evidence.CatalogID] = &copied
	c.Status = newCatalogStatus
	return nil
}

func validSubmitDTO() payment.SubmitPaymentDTO {
	return payment.SubmitPaymentDTO{
		PaymentMethod: payment.MethodBankTransfer,
		BankName:      "Bank Mandiri",
		SenderName:    "Sari Dewi",
		ReferenceNo:   "TRX-2026-0412-001",
		ReceiptURL:    "https://cdn.example.com/receipts/trx-001.jpg",
	}
}

var _ = Describe("Payment Service", func() {
	var (
		catalogs map[int64]*catalogDatamodel.Catalog
		reader   *mockCatalogReader
		repo     *mockPaymentRepository
		service  *payment.Service
	)

	BeforeEach(func() {
		catalogs = map[int64]*catalogDatamodel.Catalog{
			1: {
				ID:                     1,
				Slug:                   "batik-collection",
				UserID:                 10,
				Status:                 string(catalog.StatusPending),
				PriceSnapshot:          decimal.RequireFromString("150000.00"),
				DurationMonthsSnapshot: 3,
			},
		}
		repo = newMockPaymentRepository(catalogs)
		reader = &mockCatalogReader{catalogs: catalogs}

		testLog := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(testLog)
		service = payment.NewService(repo, reader, bus, testLog)
	})

	Describe("SubmitPayment", func() {
		It("records the evidence and flips the catalog to PAID", func() {
			evidence, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(evidence.CatalogID).To(Equal(int64(1)))
			Expect(evidence.ReferenceNo).To(Equal("TRX-2026-0412-001"))
			Expect(catalogs[1].Status).To(Equal(string(catalog.StatusPaid)))
		})

		It("overwrites the evidence on resubmission while PAID", func() {
			_, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := validSubmitDTO()
			dto.ReferenceNo = "TRX-2026-0412-002"
			evidence, err := service.SubmitPayment(1, 10, dto)
			Expect(err).NotTo(HaveOccurred())

			Expect(evidence.ReferenceNo).To(Equal("TRX-2026-0412-002"))
			Expect(catalogs[1].Status).To(Equal(string(catalog.StatusPaid)))
			Expect(repo.byCatalog[1].ReferenceNo).To(Equal("TRX-2026-0412-002"))
		})

		It("refuses evidence for an approved catalog", func() {
			catalogs[1].Status = string(catalog.StatusApproved)

			_, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).To(MatchError(apperrors.ErrPaymentNotAccepted))
			Expect(repo.byCatalog).To(BeEmpty())
		})

		It("refuses evidence for a rejected catalog", func() {
			catalogs[1].Status = string(catalog.StatusRejected)

			_, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).To(MatchError(apperrors.ErrPaymentNotAccepted))
		})

		It("refuses a non-owner", func() {
			_, err := service.SubmitPayment(1, 99, validSubmitDTO())
			Expect(err).To(MatchError(apperrors.ErrNotOwner))
		})

		It("refuses an unknown payment method", func() {
			dto := validSubmitDTO()
			dto.PaymentMethod = "CASH_ON_DELIVERY"
			_, err := service.SubmitPayment(1, 10, dto)

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("surfaces a stale status when the catalog transitions mid-submit", func() {
			// The read sees PENDING but by write time the row is REJECTED.
			catalogs[1].Status = string(catalog.StatusRejected)
			reader.staleStatus = map[int64]string{1: string(catalog.StatusPending)}

			_, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).To(MatchError(apperrors.ErrStaleStatus))
			Expect(repo.byCatalog).To(BeEmpty())
		})
	})

	Describe("GetPaymentForCatalog", func() {
		BeforeEach(func() {
			_, err := service.SubmitPayment(1, 10, validSubmitDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("serves the owner", func() {
			evidence, err := service.GetPaymentForCatalog(1, &auth.User{ID: 10, Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())
			Expect(evidence.ReferenceNo).To(Equal("TRX-2026-0412-001"))
		})

		It("serves a moderator", func() {
			_, err := service.GetPaymentForCatalog(1, &auth.User{ID: 50, Role: auth.RoleEditor})
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses an unrelated member", func() {
			_, err := service.GetPaymentForCatalog(1, &auth.User{ID: 50, Role: auth.RoleMember})
			Expect(err).To(MatchError(apperrors.ErrNotOwner))
		})

		It("reports missing evidence as not-found", func() {
			catalogs[2] = &catalogDatamodel.Catalog{ID: 2, UserID: 10, Status: string(catalog.StatusPending)}
			_, err := service.GetPaymentForCatalog(2, &auth.User{ID: 10, Role: auth.RoleMember})
			Expect(err).To(MatchError(apperrors.ErrPaymentNotFound))
		})
	})
})
