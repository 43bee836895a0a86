package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/upload"
	"blog-admin-backend/pkg/utils"
)

// UploadHandler accepts a multipart image and hands it to the
// configured upload backend.
type UploadHandler struct {
	config   *config.Config
	uploader upload.Uploader
}

// NewUploadHandler creates the upload handler.
func NewUploadHandler(cfg *config.Config, uploader upload.Uploader) *UploadHandler {
	return &UploadHandler{
		config:   cfg,
		uploader: uploader,
	}
}

// Upload reads the "file" form part, validates it and delegates to the
// backend selected at startup. Validation failures map to 400;
// everything else (upstream, configuration) to 500.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		// A body cut off by the request cap surfaces here, before the
		// declared-size check ever runs
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteBadRequest(w, fmt.Sprintf("File too large. Maximum size is %dMB.", h.config.MaxUploadBytes/(1024*1024)))
			return
		}
		utils.WriteBadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	f := upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	if err := upload.ValidateFile(f, h.config.MaxUploadBytes); err != nil {
		var vErr *upload.ValidationError
		if errors.As(err, &vErr) {
			utils.WriteBadRequest(w, vErr.Reason)
			return
		}
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	f.Data, err = io.ReadAll(file)
	if err != nil {
		utils.WriteInternalServerError(w, "Failed to read uploaded file")
		return
	}

	result, err := h.uploader.Upload(r.Context(), f)
	if err != nil {
		utils.WriteInternalServerError(w, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
