package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/catalog"
)

type CatalogHandler struct {
	provider catalog.Provider
}

func NewCatalogHandler(provider catalog.Provider) *CatalogHandler {
	return &CatalogHandler{provider: provider}
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := h.provider.FetchCatalog(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	respondJSON(w, http.StatusOK, cat)
}
