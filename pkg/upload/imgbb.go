package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const imgbbEndpoint = "https://api.imgbb.com/1/upload"

// imgbbUploader posts the binary as base64 to the ImgBB hosting API.
// ImgBB expects url-encoded form data, not multipart.
type imgbbUploader struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

func (u *imgbbUploader) Upload(ctx context.Context, f File) (*Result, error) {
	params := url.Values{}
	params.Set("image", base64.StdEncoding.EncodeToString(f.Data))
	params.Set("key", u.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		Success bool `json:"success"`
		Data    struct {
			URL        string `json:"url"`
			DisplayURL string `json:"display_url"`
			DeleteURL  string `json:"delete_url"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil || resp.StatusCode >= 400 || !result.Success {
		if result.Error.Message != "" {
			return nil, fmt.Errorf("failed to upload to ImgBB: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("failed to upload to ImgBB: status %d", resp.StatusCode)
	}

	u.log.Debug().Str("url", result.Data.URL).Msg("image uploaded to imgbb")

	return &Result{URL: result.Data.URL}, nil
}
