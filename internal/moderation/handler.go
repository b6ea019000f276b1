package moderation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/mitrakatalog/catalog-management/internal/auth"
	"github.com/mitrakatalog/catalog-management/internal/catalog"
	"github.com/mitrakatalog/catalog-management/internal/transport"
	"github.com/mitrakatalog/catalog-management/pkg/logger"
)

type ServiceAPI interface {
	ApproveCatalog(catalogID int64, moderator *auth.User, startDate *time.Time) (*catalog.Catalog, error)
	RejectCatalog(catalogID int64, moderator *auth.User, reason string) (*catalog.Catalog, error)
	OverrideApprove(catalogID int64, admin *auth.User, startDate *time.Time) (*catalog.Catalog, error)
}

type ApproveCatalogDTO struct {
	StartDate *time.Time `json:"start_date,omitempty"`
}

type RejectCatalogDTO struct {
	Reason string `json:"reason"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ApproveCatalog(w http.ResponseWriter, r *http.Request) {
	user, catalogID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto ApproveCatalogDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.ApproveCatalog(catalogID, user, dto.StartDate)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToOwnerResponse(time.Now()))
}

func (h *Handler) RejectCatalog(w http.ResponseWriter, r *http.Request) {
	user, catalogID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectCatalogDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.RejectCatalog(catalogID, user, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToOwnerResponse(time.Now()))
}

func (h *Handler) OverrideApproveCatalog(w http.ResponseWriter, r *http.Request) {
	user, catalogID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto ApproveCatalogDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	c, err := h.Service.OverrideApprove(catalogID, user, dto.StartDate)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToOwnerResponse(time.Now()))
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.User, int64, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, 0, false
	}

	catalogID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid catalog ID")
		return nil, 0, false
	}

	return user, catalogID, true
}
