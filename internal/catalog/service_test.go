package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/mitrakatalog/catalog-management/internal"
	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	"github.com/mitrakatalog/catalog-management/internal/packages"
)

type mockCatalogRepository struct {
	catalogs map[int64]*catalogDatamodel.Catalog
	slugs    map[string]int64
	nextID   int64
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		catalogs: make(map[int64]*catalogDatamodel.Catalog),
		slugs:    make(map[string]int64),
		nextID:   1,
	}
}

func (m *mockCatalogRepository) Create(c *catalogDatamodel.Catalog) error {
	c.ID = m.nextID
	m.nextID++
	m.catalogs[c.ID] = c
	m.slugs[c.Slug] = c.ID
	return nil
}

func (m *mockCatalogRepository) GetByID(id int64) (*catalogDatamodel.Catalog, error) {
	c, ok := m.catalogs[id]
	if !ok {
		return nil, apperrors.ErrCatalogNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCatalogRepository) GetBySlug(slug string) (*catalogDatamodel.Catalog, error) {
	id, ok := m.slugs[slug]
	if !ok {
		return nil, apperrors.ErrCatalogNotFound
	}
	return m.GetByID(id)
}

func (m *mockCatalogRepository) GetByUserID(userID int64, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var result []*catalogDatamodel.Catalog
	for _, c := range m.catalogs {
		if c.UserID == userID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCatalogRepository) GetByStatus(status string, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var result []*catalogDatamodel.Catalog
	for _, c := range m.catalogs {
		if c.Status == status {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCatalogRepository) ListPublished(now time.Time, category string, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var result []*catalogDatamodel.Catalog
	for _, c := range m.catalogs {
		if c.Status != string(catalog.StatusApproved) || c.EndDate == nil || !c.EndDate.After(now) {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockCatalogRepository) ListExpired(now time.Time, limit, offset int) ([]*catalogDatamodel.Catalog, error) {
	var result []*catalogDatamodel.Catalog
	for _, c := range m.catalogs {
		if c.Status == string(catalog.StatusApproved) && c.EndDate != nil && !c.EndDate.After(now) {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCatalogRepository) UpdateWithStatusCAS(c *catalogDatamodel.Catalog, expectedStatus string) error {
	stored, ok := m.catalogs[c.ID]
	if !ok || stored.Status != expectedStatus {
		return apperrors.ErrStaleStatus
	}
	delete(m.slugs, stored.Slug)
	copied := *c
	m.catalogs[c.ID] = &copied
	m.slugs[c.Slug] = c.ID
	return nil
}

func (m *mockCatalogRepository) DeleteWithStatusCAS(id int64, expectedStatus string) error {
	stored, ok := m.catalogs[id]
	if !ok || stored.Status != expectedStatus {
		return apperrors.ErrStaleStatus
	}
	delete(m.slugs, stored.Slug)
	delete(m.catalogs, id)
	return nil
}

func (m *mockCatalogRepository) SlugExists(slug string) (bool, error) {
	_, ok := m.slugs[slug]
	return ok, nil
}

func (m *mockCatalogRepository) IncrementViewCount(id int64, delta int64) error {
	if c, ok := m.catalogs[id]; ok {
		c.ViewCount += delta
	}
	return nil
}

func (m *mockCatalogRepository) IncrementDownloadCount(id int64, delta int64) error {
	if c, ok := m.catalogs[id]; ok {
		c.DownloadCount += delta
	}
	return nil
}

type mockPackageResolver struct {
	pkg *packages.Package
	err error
}

func (m *mockPackageResolver) GetActivePackage(id int64) (*packages.Package, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.pkg == nil || m.pkg.ID != id {
		return nil, apperrors.ErrPackageNotFound
	}
	return m.pkg, nil
}

func validCreateDTO(packageID int64) catalog.CreateCatalogDTO {
	return catalog.CreateCatalogDTO{
		CatalogFieldsDTO: catalog.CatalogFieldsDTO{
			Title:         "Rattan Furniture Collection 2026",
			Description:   "Hand woven rattan furniture from Cirebon.",
			Category:      catalog.CategoryFurniture,
			Tags:          []string{"rattan", "furniture"},
			CoverImageURL: "https://cdn.example.com/covers/rattan.jpg",
			PdfFileURL:    "https://cdn.example.com/catalogs/rattan.pdf",
			PageCount:     24,
			CompanyName:   "CV Rotan Jaya",
			ContactPerson: "Sari Dewi",
			Phone:         "+62-811-111-222",
			Email:         "sari@rotanjaya.co.id",
			Website:       "https://rotanjaya.co.id",
		},
		PackageID: packageID,
	}
}

var _ = Describe("Catalog Service", func() {
	var (
		repo     *mockCatalogRepository
		resolver *mockPackageResolver
		service  *catalog.Service
		now      time.Time
		testLog  *slog.Logger
	)

	BeforeEach(func() {
		repo = newMockCatalogRepository()
		now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
		resolver = &mockPackageResolver{
			pkg: &packages.Package{
				ID:             7,
				Name:           "Standard",
				Price:          decimal.RequireFromString("250000.00"),
				DurationMonths: 6,
				IsActive:       true,
			},
		}
		testLog = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(repo, resolver, nil, nil, 0, testLog).
			WithClock(func() time.Time { return now })
	})

	Describe("CreateCatalog", func() {
		It("snapshots the package price and duration onto the record", func() {
			created, err := service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())

			Expect(created.Status).To(Equal(catalog.StatusPending))
			Expect(created.PriceSnapshot).To(Equal(decimal.RequireFromString("250000.00")))
			Expect(created.DurationMonthsSnapshot).To(Equal(6))
			Expect(created.Slug).To(Equal("rattan-furniture-collection-2026"))
			Expect(created.StartDate).To(BeNil())
			Expect(created.EndDate).To(BeNil())
		})

		It("suffixes the slug when the title collides", func() {
			first, err := service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())

			second, err := service.CreateCatalog(11, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Slug).To(Equal(first.Slug + "-2"))
		})

		It("rejects an unknown package", func() {
			_, err := service.CreateCatalog(10, validCreateDTO(99))
			Expect(err).To(MatchError(apperrors.ErrPackageNotFound))
		})

		It("rejects an invalid category", func() {
			dto := validCreateDTO(7)
			dto.Category = "SPACESHIPS"
			_, err := service.CreateCatalog(10, dto)

			var appErr *apperrors.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})
	})

	Describe("UpdateCatalog", func() {
		var created *catalog.Catalog

		BeforeEach(func() {
			var err error
			created, err = service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies an owner edit to a PENDING record", func() {
			dto := catalog.UpdateCatalogDTO{CatalogFieldsDTO: validCreateDTO(7).CatalogFieldsDTO}
			dto.Title = "Rattan Furniture Collection, Revised"

			updated, err := service.UpdateCatalog(created.ID, 10, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Rattan Furniture Collection, Revised"))
			Expect(updated.Status).To(Equal(catalog.StatusPending))
		})

		It("refuses an edit by a non-owner", func() {
			dto := catalog.UpdateCatalogDTO{CatalogFieldsDTO: validCreateDTO(7).CatalogFieldsDTO}
			_, err := service.UpdateCatalog(created.ID, 99, dto)
			Expect(err).To(MatchError(apperrors.ErrNotOwner))
		})

		It("refuses an edit while the record is PAID", func() {
			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusPaid)

			dto := catalog.UpdateCatalogDTO{CatalogFieldsDTO: validCreateDTO(7).CatalogFieldsDTO}
			_, err := service.UpdateCatalog(created.ID, 10, dto)
			Expect(err).To(MatchError(apperrors.ErrStatusNotEditable))
		})

		It("returns a REJECTED record to PENDING and clears the notes", func() {
			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusRejected)
			stored.AdminNotes = "cover image unreadable"

			dto := catalog.UpdateCatalogDTO{CatalogFieldsDTO: validCreateDTO(7).CatalogFieldsDTO}
			updated, err := service.UpdateCatalog(created.ID, 10, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(catalog.StatusPending))
			Expect(updated.AdminNotes).To(BeEmpty())

			Expect(repo.catalogs[created.ID].Status).To(Equal(string(catalog.StatusPending)))
			Expect(repo.catalogs[created.ID].AdminNotes).To(BeEmpty())
		})
	})

	Describe("DeleteCatalog", func() {
		var created *catalog.Catalog

		BeforeEach(func() {
			var err error
			created, err = service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())
		})

		It("deletes an owned PENDING record", func() {
			Expect(service.DeleteCatalog(created.ID, 10)).To(Succeed())
			_, err := repo.GetByID(created.ID)
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))
		})

		It("refuses to delete an approved record", func() {
			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusApproved)

			err := service.DeleteCatalog(created.ID, 10)
			Expect(err).To(MatchError(apperrors.ErrStatusNotDeletable))
		})
	})

	Describe("GetCatalogForActor", func() {
		var created *catalog.Catalog

		BeforeEach(func() {
			var err error
			created, err = service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())
		})

		It("serves the owner", func() {
			actor := &auth.User{ID: 10, Role: auth.RoleMember}
			c, err := service.GetCatalogForActor(created.ID, actor)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(Equal(created.ID))
		})

		It("serves a moderator who is not the owner", func() {
			actor := &auth.User{ID: 50, Role: auth.RoleEditor}
			_, err := service.GetCatalogForActor(created.ID, actor)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses an unrelated member", func() {
			actor := &auth.User{ID: 50, Role: auth.RoleMember}
			_, err := service.GetCatalogForActor(created.ID, actor)
			Expect(err).To(MatchError(apperrors.ErrNotOwner))
		})
	})

	Describe("Public reads", func() {
		var created *catalog.Catalog

		BeforeEach(func() {
			var err error
			created, err = service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())

			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusApproved)
			start := now.AddDate(0, -1, 0)
			end := now.AddDate(0, 5, 0)
			stored.StartDate = &start
			stored.EndDate = &end
		})

		It("serves a published record by slug without the owner id", func() {
			detail, err := service.GetPublishedBySlug(context.Background(), created.Slug)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Slug).To(Equal(created.Slug))
			Expect(detail.Title).To(Equal(created.Title))
		})

		It("hides an expired record behind not-found", func() {
			stored := repo.catalogs[created.ID]
			end := now.AddDate(0, -1, 0)
			stored.EndDate = &end

			_, err := service.GetPublishedBySlug(context.Background(), created.Slug)
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))
		})

		It("hides a pending record behind not-found", func() {
			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusPending)
			stored.StartDate = nil
			stored.EndDate = nil

			_, err := service.GetPublishedBySlug(context.Background(), created.Slug)
			Expect(err).To(MatchError(apperrors.ErrCatalogNotFound))
		})

		It("lists only records inside their window", func() {
			listed, err := service.ListPublished("", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))

			stored := repo.catalogs[created.ID]
			end := now.AddDate(0, -1, 0)
			stored.EndDate = &end

			listed, err = service.ListPublished("", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(BeEmpty())
		})

		It("resolves the pdf URL on download", func() {
			pdfURL, err := service.RegisterDownload(context.Background(), created.Slug)
			Expect(err).NotTo(HaveOccurred())
			Expect(pdfURL).To(Equal(created.PdfFileURL))
		})
	})

	Describe("ListModerationQueue", func() {
		It("translates the EXPIRED filter to lapsed approved records", func() {
			created, err := service.CreateCatalog(10, validCreateDTO(7))
			Expect(err).NotTo(HaveOccurred())

			stored := repo.catalogs[created.ID]
			stored.Status = string(catalog.StatusApproved)
			end := now.AddDate(0, -1, 0)
			stored.EndDate = &end

			listed, err := service.ListModerationQueue("EXPIRED", 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(1))
			Expect(listed[0].DerivedStatus(now)).To(Equal(catalog.StatusExpired))
		})

		It("refuses an unknown status filter", func() {
			_, err := service.ListModerationQueue("BOGUS", 20, 0)
			var appErr *apperrors.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})
	})
})
