package upload

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/webflow"

	"github.com/rs/zerolog"
)

// File is an incoming binary with its declared metadata. ContentType is
// the type the client declared, not a sniffed one.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Result is the durable reference an upload produces. FileID is set
// only by the native CMS asset pipeline; PublicID only by Cloudinary.
type Result struct {
	URL      string `json:"url"`
	FileID   string `json:"fileId,omitempty"`
	PublicID string `json:"publicId,omitempty"`
}

// Uploader hosts a binary image somewhere publicly reachable. Which
// backend serves a deployment is resolved once by New; callers never
// branch per request.
type Uploader interface {
	Upload(ctx context.Context, f File) (*Result, error)
}

// ValidationError marks a rejection of the file itself (type or size),
// as opposed to an upstream or configuration failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// allowedTypes is the raster-format allow-list for uploads.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateFile rejects disallowed declared types regardless of size and
// oversized files regardless of type.
func ValidateFile(f File, maxBytes int64) error {
	if !allowedTypes[f.ContentType] {
		return &ValidationError{Reason: "Invalid file type. Please upload JPEG, PNG, GIF, or WebP."}
	}
	if f.Size > maxBytes {
		return &ValidationError{Reason: fmt.Sprintf("File too large. Maximum size is %dMB.", maxBytes/(1024*1024))}
	}
	return nil
}

// newAssetName derives a unique filename from a fixed prefix, a
// timestamp and the original extension. Collisions are negligible at a
// single operator's request rate.
func newAssetName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("blog-%d%s", time.Now().UnixMilli(), ext)
}

// New selects the upload backend from configuration: the Webflow asset
// pipeline when a site id is configured, otherwise one of the two image
// hosts by whichever credential is present. The selection happens here,
// once, so the returned Uploader is a fixed strategy.
func New(cfg *config.Config, cms *webflow.Client, log zerolog.Logger) Uploader {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	switch {
	case cfg.WebflowSiteID != "" && cms != nil:
		return &assetUploader{
			cms:        cms,
			siteID:     cfg.WebflowSiteID,
			httpClient: httpClient,
			log:        log,
		}
	case cfg.ImgBBKey != "":
		return &imgbbUploader{
			apiKey:     cfg.ImgBBKey,
			endpoint:   imgbbEndpoint,
			httpClient: httpClient,
			log:        log,
		}
	case cfg.CloudinaryCloudName != "" && cfg.CloudinaryUploadPreset != "":
		return &cloudinaryUploader{
			endpoint:   fmt.Sprintf(cloudinaryEndpointFormat, cfg.CloudinaryCloudName),
			preset:     cfg.CloudinaryUploadPreset,
			httpClient: httpClient,
			log:        log,
		}
	case cms != nil:
		// No site id and no image host configured: the asset uploader
		// discovers a site through the sites endpoint on first use.
		return &assetUploader{
			cms:        cms,
			httpClient: httpClient,
			log:        log,
		}
	default:
		return &disabledUploader{}
	}
}

// disabledUploader fails every upload with an error naming both
// missing configuration options.
type disabledUploader struct{}

func (u *disabledUploader) Upload(ctx context.Context, f File) (*Result, error) {
	return nil, fmt.Errorf("image hosting not configured: set IMGBB_API_KEY or CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET")
}
