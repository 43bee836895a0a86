package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/rs/zerolog"
)

const cloudinaryEndpointFormat = "https://api.cloudinary.com/v1_1/%s/image/upload"

// cloudinaryUploader performs an unsigned multipart upload against a
// preconfigured Cloudinary upload preset.
type cloudinaryUploader struct {
	endpoint   string
	preset     string
	httpClient *http.Client
	log        zerolog.Logger
}

func (u *cloudinaryUploader) Upload(ctx context.Context, f File) (*Result, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name)))
	header.Set("Content-Type", f.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := form.WriteField("upload_preset", u.preset); err != nil {
		return nil, fmt.Errorf("failed to write upload preset: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil || resp.StatusCode >= 400 {
		if result.Error.Message != "" {
			return nil, fmt.Errorf("failed to upload to Cloudinary: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("failed to upload to Cloudinary: status %d", resp.StatusCode)
	}

	u.log.Debug().Str("public_id", result.PublicID).Msg("image uploaded to cloudinary")

	return &Result{URL: result.SecureURL, PublicID: result.PublicID}, nil
}
