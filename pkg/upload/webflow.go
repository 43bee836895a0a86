package upload

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"blog-admin-backend/pkg/webflow"

	"github.com/rs/zerolog"
)

// assetUploader hosts images through the Webflow asset pipeline: it
// requests an upload ticket from the CMS, then submits the binary
// directly to the delegated storage target. A failed second phase
// leaves the ticketed asset id orphaned on the remote side; there is no
// cleanup call in the remote API.
type assetUploader struct {
	cms        *webflow.Client
	httpClient *http.Client
	log        zerolog.Logger

	mu     sync.Mutex
	siteID string
}

// site returns the target site id, discovering it through the sites
// endpoint when none was configured. A successful discovery is cached;
// a failed one is retried on the next upload.
func (u *assetUploader) site(ctx context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.siteID != "" {
		return u.siteID, nil
	}

	sites, err := u.cms.ListSites(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to discover site: %w", err)
	}
	if len(sites.Sites) == 0 {
		return "", fmt.Errorf("no sites available for asset uploads")
	}

	u.siteID = sites.Sites[0].ID
	u.log.Debug().Str("site_id", u.siteID).Msg("discovered asset upload site")
	return u.siteID, nil
}

func (u *assetUploader) Upload(ctx context.Context, f File) (*Result, error) {
	siteID, err := u.site(ctx)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(f.Data)
	fileHash := hex.EncodeToString(sum[:])
	fileName := newAssetName(f.Name)

	meta, err := u.cms.CreateAssetMetadata(ctx, siteID, fileName, fileHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset metadata: %w", err)
	}

	if err := u.uploadToStorage(ctx, meta, f); err != nil {
		return nil, err
	}

	u.log.Debug().Str("asset_id", meta.ID).Str("file_name", fileName).Msg("asset uploaded")

	url := meta.HostedURL
	if url == "" {
		url = meta.AssetURL
	}
	return &Result{URL: url, FileID: meta.ID}, nil
}

// uploadToStorage performs the second phase: a multipart POST carrying
// the ticket's form fields in the exact order the ticket listed them,
// with the binary payload as the final part. The storage service
// validates a signature computed over the field sequence.
func (u *assetUploader) uploadToStorage(ctx context.Context, meta *webflow.AssetMetadata, f File) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for _, field := range meta.UploadDetails {
		if err := form.WriteField(field.Name, field.Value); err != nil {
			return fmt.Errorf("failed to write form field %q: %w", field.Name, err)
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name)))
	header.Set("Content-Type", f.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, meta.UploadURL, &buf)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
