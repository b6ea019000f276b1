package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	paymentDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/payment"
	"github.com/mitrakatalog/catalog-management/internal/payment"
	paymentPostgres "github.com/mitrakatalog/catalog-management/internal/payment/postgres"
)

func TestPaymentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Postgres Suite")
}

var _ = Describe("Payment PostgreSQL Repository", func() {
	var (
		db        *gorm.DB
		repo      payment.RepositoryAPI
		catalogID int64
	)

	newEvidence := func(referenceNo string) *paymentDatamodel.CatalogPayment {
		return &paymentDatamodel.CatalogPayment{
			CatalogID:     catalogID,
			PaymentMethod: payment.MethodBankTransfer,
			BankName:      "Bank Mandiri",
			SenderName:    "Sari Dewi",
			ReferenceNo:   referenceNo,
		}
	}

	catalogStatus := func() string {
		var m catalogDatamodel.Catalog
		Expect(db.First(&m, catalogID).Error).NotTo(HaveOccurred())
		return m.Status
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&catalogDatamodel.Catalog{}, &paymentDatamodel.CatalogPayment{})
		Expect(err).NotTo(HaveOccurred())

		record := &catalogDatamodel.Catalog{
			Slug:                   "batik-collection",
			UserID:                 10,
			Title:                  "Batik Collection",
			Description:            "Hand drawn batik.",
			Category:               catalog.CategoryFashion,
			Tags:                   "[]",
			CoverImageURL:          "https://cdn.example.com/covers/batik.jpg",
			PdfFileURL:             "https://cdn.example.com/catalogs/batik.pdf",
			PageCount:              12,
			CompanyName:            "UD Batik Indah",
			ContactPerson:          "Sari",
			Phone:                  "+62-811-000-111",
			Email:                  "sari@batikindah.co.id",
			PackageID:              1,
			PriceSnapshot:          decimal.RequireFromString("150000.00"),
			DurationMonthsSnapshot: 3,
			Status:                 string(catalog.StatusPending),
		}
		Expect(db.Create(record).Error).NotTo(HaveOccurred())
		catalogID = record.ID

		repo = paymentPostgres.NewPaymentRepository(db)
	})

	Describe("SubmitWithStatus", func() {
		It("writes the evidence and flips the catalog in one step", func() {
			evidence := newEvidence("TRX-001")
			err := repo.SubmitWithStatus(evidence, string(catalog.StatusPending), string(catalog.StatusPaid))
			Expect(err).NotTo(HaveOccurred())
			Expect(evidence.ID).To(BeNumerically(">", 0))

			Expect(catalogStatus()).To(Equal(string(catalog.StatusPaid)))

			stored, err := repo.GetByCatalogID(catalogID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ReferenceNo).To(Equal("TRX-001"))
		})

		It("updates the evidence in place on resubmission", func() {
			Expect(repo.SubmitWithStatus(newEvidence("TRX-001"), string(catalog.StatusPending), string(catalog.StatusPaid))).To(Succeed())
			Expect(repo.SubmitWithStatus(newEvidence("TRX-002"), string(catalog.StatusPaid), string(catalog.StatusPaid))).To(Succeed())

			var count int64
			Expect(db.Model(&paymentDatamodel.CatalogPayment{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			stored, err := repo.GetByCatalogID(catalogID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ReferenceNo).To(Equal("TRX-002"))
		})

		It("rolls the evidence back when the status flip fails", func() {
			err := repo.SubmitWithStatus(newEvidence("TRX-001"), string(catalog.StatusApproved), string(catalog.StatusPaid))
			Expect(err).To(MatchError(apperrors.ErrStaleStatus))

			// The transaction left neither the evidence nor the status behind.
			stored, getErr := repo.GetByCatalogID(catalogID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
			Expect(catalogStatus()).To(Equal(string(catalog.StatusPending)))
		})
	})

	Describe("GetByCatalogID", func() {
		It("returns nil for a catalog without evidence", func() {
			stored, err := repo.GetByCatalogID(999)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(BeNil())
		})
	})
})
