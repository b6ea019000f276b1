package packages

import (
	"net/http"

	"github.com/mitrakatalog/catalog-management/internal/transport"
)

type ServiceAPI interface {
	GetActivePackages() ([]PackageResponse, error)
	GetActivePackage(id int64) (*Package, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.Service.GetActivePackages()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PackagesResponse{
		Packages: pkgs,
	})
}
