package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/transport"
	"github.com/mitrakatalog/catalog-management/pkg/logger"
)

type ServiceAPI interface {
	CreateCatalog(ownerID int64, dto CreateCatalogDTO) (*Catalog, error)
	UpdateCatalog(catalogID, ownerID int64, dto UpdateCatalogDTO) (*Catalog, error)
	DeleteCatalog(catalogID, ownerID int64) error
	GetCatalogForActor(catalogID int64, actor *auth.User) (*Catalog, error)
	ListOwned(ownerID int64, limit, offset int) ([]*Catalog, error)
	ListModerationQueue(statusFilter string, limit, offset int) ([]*Catalog, error)
	ListPublished(category string, limit, offset int) ([]*PublicCatalogResponse, error)
	GetPublishedBySlug(ctx context.Context, slugStr string) (*PublicCatalogResponse, error)
	RegisterDownload(ctx context.Context, slugStr string) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	maxPageSize int
}

func NewHandler(service ServiceAPI, maxPageSize int) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		maxPageSize: maxPageSize,
	}
}

func (h *Handler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateCatalog: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCatalogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCatalog: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateCatalog(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created.ToOwnerResponse(time.Now()))
}

func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	catalogID, err := h.catalogIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog ID")
		return
	}

	var dto UpdateCatalogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateCatalog: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateCatalog(catalogID, user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated.ToOwnerResponse(time.Now()))
}

func (h *Handler) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	catalogID, err := h.catalogIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog ID")
		return
	}

	if err := h.Service.DeleteCatalog(catalogID, user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "catalog deleted"})
}

func (h *Handler) GetMyCatalogs(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := h.pagination(r)
	catalogs, err := h.Service.ListOwned(user.ID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": ToOwnerResponseSlice(catalogs, time.Now()),
		"limit":    limit,
		"offset":   offset,
	})
}

// GetCatalogStatus serves the owner's status view, including the derived
// status and admin notes after a rejection.
func (h *Handler) GetCatalogStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	catalogID, err := h.catalogIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog ID")
		return
	}

	c, err := h.Service.GetCatalogForActor(catalogID, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToOwnerResponse(time.Now()))
}

func (h *Handler) AdminListCatalogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	statusFilter := r.URL.Query().Get("status")

	catalogs, err := h.Service.ListModerationQueue(statusFilter, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": ToOwnerResponseSlice(catalogs, time.Now()),
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) ListPublishedCatalogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.pagination(r)
	category := r.URL.Query().Get("category")

	catalogs, err := h.Service.ListPublished(category, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": catalogs,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) GetPublishedCatalog(w http.ResponseWriter, r *http.Request) {
	slugStr := chi.URLParam(r, "slug")
	if slugStr == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog slug")
		return
	}

	detail, err := h.Service.GetPublishedBySlug(r.Context(), slugStr)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) DownloadCatalog(w http.ResponseWriter, r *http.Request) {
	slugStr := chi.URLParam(r, "slug")
	if slugStr == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog slug")
		return
	}

	pdfURL, err := h.Service.RegisterDownload(r.Context(), slugStr)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"pdf_file_url": pdfURL})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": Categories(),
	})
}

func (h *Handler) catalogIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= h.maxPageSize {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
