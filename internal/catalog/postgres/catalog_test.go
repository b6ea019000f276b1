package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogPostgres "github.com/mitrakatalog/catalog-management/internal/catalog/postgres"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
)

func TestCatalogPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Postgres Suite")
}

func newCatalogModel(userID int64, slug, status string) *catalogDatamodel.Catalog {
	return &catalogDatamodel.Catalog{
		Slug:                   slug,
		UserID:                 userID,
		Title:                  "Batik Collection",
		Description:            "Hand drawn batik from Pekalongan.",
		Category:               catalog.CategoryFashion,
		Tags:                   `["batik"]`,
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
		Status:                 status,
	}
}

var _ = Describe("Catalog PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo catalog.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&catalogDatamodel.Catalog{})
		Expect(err).NotTo(HaveOccurred())

		repo = catalogPostgres.NewCatalogRepository(db)
	})

	Describe("Create and lookups", func() {
		It("stores a record and finds it by id and slug", func() {
			m := newCatalogModel(10, "batik-collection", string(catalog.StatusPending))
			Expect(repo.Create(m)).To(Succeed())
			Expect(m.ID).To(BeNumerically(">", 0))

			byID, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Slug).To(Equal("batik-collection"))

			bySlug, err := repo.GetBySlug("batik-collection")
			Expect(err).NotTo(HaveOccurred())
			Expect(bySlug.ID).To(Equal(m.ID))
		})

		It("returns not-found for unknown records", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))

			_, err = repo.GetBySlug("nope")
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))
		})

		It("enforces slug uniqueness", func() {
			Expect(repo.Create(newCatalogModel(10, "batik-collection", string(catalog.StatusPending)))).To(Succeed())
			err := repo.Create(newCatalogModel(11, "batik-collection", string(catalog.StatusPending)))
			Expect(err).To(HaveOccurred())

			exists, err := repo.SlugExists("batik-collection")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})

	Describe("UpdateWithStatusCAS", func() {
		var m *catalogDatamodel.Catalog

		BeforeEach(func() {
			m = newCatalogModel(10, "batik-collection", string(catalog.StatusPending))
			Expect(repo.Create(m)).To(Succeed())
		})

		It("applies the update while the observed status still holds", func() {
			m.Title = "Batik Collection, Revised"
			m.Status = string(catalog.StatusPending)

			Expect(repo.UpdateWithStatusCAS(m, string(catalog.StatusPending))).To(Succeed())

			stored, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Batik Collection, Revised"))
		})

		It("fails with a stale status when the row moved on", func() {
			// Another actor flips the record to PAID first.
			Expect(db.Model(&catalogDatamodel.Catalog{}).
				Where("id = ?", m.ID).
				Update("status", string(catalog.StatusPaid)).Error).To(Succeed())

			m.Title = "Too late"
			err := repo.UpdateWithStatusCAS(m, string(catalog.StatusPending))
			Expect(err).To(MatchError(apperrors.ErrStaleStatus))

			stored, getErr := repo.GetByID(m.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Batik Collection"))
			Expect(stored.Status).To(Equal(string(catalog.StatusPaid)))
		})

		It("lets exactly one of two competing approvals through", func() {
			Expect(db.Model(&catalogDatamodel.Catalog{}).
				Where("id = ?", m.ID).
				Update("status", string(catalog.StatusPaid)).Error).To(Succeed())

			start := time.Now()
			end := start.AddDate(0, 3, 0)
			m.Status = string(catalog.StatusApproved)
			m.StartDate = &start
			m.EndDate = &end

			Expect(repo.UpdateWithStatusCAS(m, string(catalog.StatusPaid))).To(Succeed())
			Expect(repo.UpdateWithStatusCAS(m, string(catalog.StatusPaid))).To(MatchError(apperrors.ErrStaleStatus))
		})
	})

	Describe("DeleteWithStatusCAS", func() {
		It("deletes only while the observed status holds", func() {
			m := newCatalogModel(10, "batik-collection", string(catalog.StatusPending))
			Expect(repo.Create(m)).To(Succeed())

			Expect(repo.DeleteWithStatusCAS(m.ID, string(catalog.StatusPaid))).To(MatchError(apperrors.ErrStaleStatus))
			Expect(repo.DeleteWithStatusCAS(m.ID, string(catalog.StatusPending))).To(Succeed())

			_, err := repo.GetByID(m.ID)
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))
		})
	})

	Describe("Published listings", func() {
		var now time.Time

		BeforeEach(func() {
			now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

			active := newCatalogModel(10, "active-catalog", string(catalog.StatusApproved))
			activeStart := now.AddDate(0, -1, 0)
			activeEnd := now.AddDate(0, 2, 0)
			active.StartDate = &activeStart
			active.EndDate = &activeEnd
			Expect(repo.Create(active)).To(Succeed())

			lapsed := newCatalogModel(11, "lapsed-catalog", string(catalog.StatusApproved))
			lapsedStart := now.AddDate(0, -4, 0)
			lapsedEnd := now.AddDate(0, -1, 0)
			lapsed.StartDate = &lapsedStart
			lapsed.EndDate = &lapsedEnd
			Expect(repo.Create(lapsed)).To(Succeed())

			pending := newCatalogModel(12, "pending-catalog", string(catalog.StatusPending))
			Expect(repo.Create(pending)).To(Succeed())
		})

		It("lists only approved records inside their window", func() {
			listed, err := repo.ListPublished(now, "", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].Slug).To(Equal("active-catalog"))
		})

		It("filters by category", func() {
			listed, err := repo.ListPublished(now, catalog.CategoryFurniture, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(BeEmpty())

			listed, err = repo.ListPublished(now, catalog.CategoryFashion, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
		})

		It("lists lapsed approved records as expired", func() {
			expired, err := repo.ListExpired(now, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(HaveLen(1))
			Expect(expired[0].Slug).To(Equal("lapsed-catalog"))
		})
	})

	Describe("Counters", func() {
		It("adds deltas to the stored counts", func() {
			m := newCatalogModel(10, "batik-collection", string(catalog.StatusPending))
			Expect(repo.Create(m)).To(Succeed())

			Expect(repo.IncrementViewCount(m.ID, 5)).To(Succeed())
			Expect(repo.IncrementViewCount(m.ID, 2)).To(Succeed())
			Expect(repo.IncrementDownloadCount(m.ID, 3)).To(Succeed())

			stored, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ViewCount).To(Equal(int64(7)))
			Expect(stored.DownloadCount).To(Equal(int64(3)))
		})
	})
})
