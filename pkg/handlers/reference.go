package handlers

import (
	"net/http"

	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/utils"
	"blog-admin-backend/pkg/webflow"
)

// referencePageSize is the fixed page size for reference lists; both
// collections are small and consumed whole by dropdowns.
const referencePageSize = "100"

// ReferenceHandler serves the category and location lookup lists used
// to resolve reference fields to display names.
type ReferenceHandler struct {
	config *config.Config
	cms    *webflow.Client
}

// NewReferenceHandler creates the reference-list handler.
func NewReferenceHandler(cfg *config.Config, cms *webflow.Client) *ReferenceHandler {
	return &ReferenceHandler{
		config: cfg,
		cms:    cms,
	}
}

// Categories lists the category collection.
func (h *ReferenceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.config.CategoriesCollectionID, "CATEGORIES_COLLECTION_ID")
}

// Locations lists the location collection.
func (h *ReferenceHandler) Locations(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.config.LocationsCollectionID, "LOCATIONS_COLLECTION_ID")
}

func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request, collectionID, setting string) {
	if h.cms == nil {
		utils.WriteInternalServerError(w, "WEBFLOW_API_KEY is not configured")
		return
	}
	if collectionID == "" {
		utils.WriteInternalServerError(w, setting+" is not configured")
		return
	}

	result, err := h.cms.ListItems(r.Context(), collectionID, webflow.ListOptions{Limit: referencePageSize})
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
