package handlers

import (
	"net/http"

	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/utils"
	"blog-admin-backend/pkg/webflow"

	"github.com/go-chi/chi/v5"
)

// PostsHandler serves CRUD and publish operations on the blog
// collection. It is stateless per request: every call is forwarded to
// the CMS client and the remote result is returned as-is.
type PostsHandler struct {
	config *config.Config
	cms    *webflow.Client
}

// NewPostsHandler creates the posts handler. cms may be nil when no API
// token is configured; operations then fail with a configuration error.
func NewPostsHandler(cfg *config.Config, cms *webflow.Client) *PostsHandler {
	return &PostsHandler{
		config: cfg,
		cms:    cms,
	}
}

// ready reports whether the CMS client and blog collection are
// configured, writing the configuration error itself when not.
func (h *PostsHandler) ready(w http.ResponseWriter) bool {
	if h.cms == nil {
		utils.WriteInternalServerError(w, "WEBFLOW_API_KEY is not configured")
		return false
	}
	if h.config.BlogCollectionID == "" {
		utils.WriteInternalServerError(w, "BLOG_COLLECTION_ID is not configured")
		return false
	}
	return true
}

// List returns one page of posts. limit and offset are forwarded to the
// CMS verbatim, without client-side bounds checking.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	opts := webflow.ListOptions{
		Limit:  utils.GetQueryParam(r, "limit", "100"),
		Offset: utils.GetQueryParam(r, "offset", "0"),
	}

	result, err := h.cms.ListItems(r.Context(), h.config.BlogCollectionID, opts)
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// Create creates a post. The body is field values plus an optional
// isDraft flag (default true); everything else is forwarded as
// fieldData untouched.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var body map[string]interface{}
	if err := utils.ParseJSONBody(r, &body); err != nil || body == nil {
		utils.WriteBadRequest(w, "Invalid request body")
		return
	}

	isDraft := true
	if v, ok := body["isDraft"].(bool); ok {
		isDraft = v
	}
	delete(body, "isDraft")

	item, err := h.cms.CreateItem(r.Context(), h.config.BlogCollectionID, body, isDraft)
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

// Schema returns the blog collection's field definitions, used by the
// admin form to render an input per field.
func (h *PostsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	collection, err := h.cms.GetCollection(r.Context(), h.config.BlogCollectionID)
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, collection)
}

// Get fetches a single post.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteBadRequest(w, "Post id is required")
		return
	}

	item, err := h.cms.GetItem(r.Context(), h.config.BlogCollectionID, id)
	if err != nil {
		if webflow.IsNotFound(err) {
			utils.WriteNotFound(w, err.Error())
			return
		}
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

// Update patches the draft or live copy of a post depending on the
// isLive flag (default false). Omitted fields are left untouched
// server-side.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteBadRequest(w, "Post id is required")
		return
	}

	var body map[string]interface{}
	if err := utils.ParseJSONBody(r, &body); err != nil || body == nil {
		utils.WriteBadRequest(w, "Invalid request body")
		return
	}

	isLive := false
	if v, ok := body["isLive"].(bool); ok {
		isLive = v
	}
	delete(body, "isLive")

	item, err := h.cms.UpdateItem(r.Context(), h.config.BlogCollectionID, id, body, isLive)
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

// Delete removes a post. Deleting a missing id surfaces the upstream
// error, never a silent success.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteBadRequest(w, "Post id is required")
		return
	}

	if err := h.cms.DeleteItem(r.Context(), h.config.BlogCollectionID, id); err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Publish promotes the draft content of a post to live.
func (h *PostsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteBadRequest(w, "Post id is required")
		return
	}

	result, err := h.cms.PublishItems(r.Context(), h.config.BlogCollectionID, []string{id})
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
