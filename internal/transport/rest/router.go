package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	"github.com/mitrakatalog/catalog-management/internal/moderation"
	"github.com/mitrakatalog/catalog-management/internal/packages"
	"github.com/mitrakatalog/catalog-management/internal/payment"
	"github.com/mitrakatalog/catalog-management/internal/transport/middleware"
	"github.com/mitrakatalog/catalog-management/internal/transport/swagger"
)

type Handlers struct {
	Auth       *auth.Handler
	Packages   *packages.Handler
	Catalog    *catalog.Handler
	Payment    *payment.Handler
	Moderation *moderation.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redisClient *redis.Client, handlers Handlers, rbac *auth.RBAC, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redisClient)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
		})

		// Public surface: packages, categories and the published directory.
		r.Get("/packages", handlers.Packages.GetPackages)
		r.Get("/categories", handlers.Catalog.GetCategories)
		r.Route("/catalogs", func(cr chi.Router) {
			cr.Get("/", handlers.Catalog.ListPublishedCatalogs)

			// Member routes sit under /catalogs/member so the public slug
			// route below cannot shadow them.
			cr.Group(func(pr chi.Router) {
				pr.Use(handlers.Auth.AuthMiddleware)
				pr.Post("/member/create", handlers.Catalog.CreateCatalog)
				pr.Get("/member/my-catalogs", handlers.Catalog.GetMyCatalogs)
				pr.Get("/member/{id}/status", handlers.Catalog.GetCatalogStatus)
				pr.Put("/member/{id}", handlers.Catalog.UpdateCatalog)
				pr.Delete("/member/{id}", handlers.Catalog.DeleteCatalog)
			})

			cr.Get("/{slug}", handlers.Catalog.GetPublishedCatalog)
			cr.Post("/{slug}/download", handlers.Catalog.DownloadCatalog)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			pr.Route("/catalog-payments", func(cpr chi.Router) {
				cpr.Post("/{id}", handlers.Payment.SubmitPayment)
				cpr.Get("/{id}", handlers.Payment.GetPayment)
			})

			pr.Route("/admin/catalogs", func(ar chi.Router) {
				ar.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.OpModerateView))
					mr.Get("/", handlers.Catalog.AdminListCatalogs)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.OpApprove))
					mr.Patch("/{id}/approve", handlers.Moderation.ApproveCatalog)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.OpReject))
					mr.Patch("/{id}/reject", handlers.Moderation.RejectCatalog)
				})
				ar.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(auth.OpOverride))
					mr.Patch("/{id}/override", handlers.Moderation.OverrideApproveCatalog)
				})
			})
		})
	})
}
