package webflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// APIError is the single error value every non-2xx remote response is
// normalized into. Message carries the remote-provided message when the
// body is parseable structured data.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a stateless-per-call wrapper around the Webflow Data API.
// It holds only immutable configuration and is safe to share across
// concurrent requests.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Webflow API client. baseURL is normally
// config.DefaultWebflowAPIURL; tests point it at a local fake.
func NewClient(baseURL, token string, log zerolog.Logger) *Client {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// request performs one authenticated round trip. No retries: every
// failure surfaces to the caller immediately.
func (c *Client) request(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("webflow api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.log.Error().Int("status", resp.StatusCode).Str("endpoint", endpoint).
			Str("body", string(respBody)).Msg("webflow api error")
		return normalizeError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// normalizeError converts a non-2xx response into an *APIError carrying
// the remote message, with a generic fallback when the body is not
// structured data.
func normalizeError(statusCode int, body []byte) error {
	var remote struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &remote); err == nil && remote.Message != "" {
		return &APIError{StatusCode: statusCode, Message: remote.Message}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("API request failed with status %d", statusCode),
	}
}

// ListItems fetches one page of collection items. Limit and offset are
// forwarded exactly as given.
func (c *Client) ListItems(ctx context.Context, collectionID string, opts ListOptions) (*ItemList, error) {
	params := url.Values{}
	if opts.Limit != "" {
		params.Set("limit", opts.Limit)
	}
	if opts.Offset != "" {
		params.Set("offset", opts.Offset)
	}

	endpoint := fmt.Sprintf("/collections/%s/items", collectionID)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var list ItemList
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetItem fetches a single item.
func (c *Client) GetItem(ctx context.Context, collectionID, itemID string) (*Item, error) {
	var item Item
	endpoint := fmt.Sprintf("/collections/%s/items/%s", collectionID, itemID)
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem creates a new item, as a draft or directly live depending
// on isDraft. The returned item includes the id assigned by the CMS.
func (c *Client) CreateItem(ctx context.Context, collectionID string, fieldData map[string]interface{}, isDraft bool) (*Item, error) {
	endpoint := fmt.Sprintf("/collections/%s/items", collectionID)
	if !isDraft {
		endpoint += "/live"
	}

	body := map[string]interface{}{
		"fieldData": fieldData,
		"isDraft":   isDraft,
	}

	var item Item
	if err := c.request(ctx, http.MethodPost, endpoint, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem patches the draft or the live copy depending on isLive.
// Fields omitted from fieldData are left untouched server-side.
func (c *Client) UpdateItem(ctx context.Context, collectionID, itemID string, fieldData map[string]interface{}, isLive bool) (*Item, error) {
	endpoint := fmt.Sprintf("/collections/%s/items/%s", collectionID, itemID)
	if isLive {
		endpoint += "/live"
	}

	body := map[string]interface{}{
		"fieldData": fieldData,
	}

	var item Item
	if err := c.request(ctx, http.MethodPatch, endpoint, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item. The remote API does not guarantee
// idempotency for repeated deletes of the same id.
func (c *Client) DeleteItem(ctx context.Context, collectionID, itemID string) error {
	endpoint := fmt.Sprintf("/collections/%s/items/%s", collectionID, itemID)
	return c.request(ctx, http.MethodDelete, endpoint, nil, nil)
}

// PublishItems promotes the draft content of the given ids to live.
func (c *Client) PublishItems(ctx context.Context, collectionID string, itemIDs []string) (*PublishResult, error) {
	endpoint := fmt.Sprintf("/collections/%s/items/publish", collectionID)
	body := map[string]interface{}{
		"itemIds": itemIDs,
	}

	var result PublishResult
	if err := c.request(ctx, http.MethodPost, endpoint, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCollection fetches a collection's schema. The admin form uses the
// field definitions to render an input per field.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (*Collection, error) {
	var collection Collection
	endpoint := fmt.Sprintf("/collections/%s", collectionID)
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListSites lists the sites the token can access. Asset uploads need a
// site id.
func (c *Client) ListSites(ctx context.Context) (*SiteList, error) {
	var sites SiteList
	if err := c.request(ctx, http.MethodGet, "/sites", nil, &sites); err != nil {
		return nil, err
	}
	return &sites, nil
}

// CreateAssetMetadata requests an upload ticket for a new asset. The
// ticket authorizes one direct upload to the storage target without
// routing the binary through the CMS.
func (c *Client) CreateAssetMetadata(ctx context.Context, siteID, fileName, fileHash string) (*AssetMetadata, error) {
	endpoint := fmt.Sprintf("/sites/%s/assets", siteID)
	body := map[string]interface{}{
		"fileName": fileName,
		"fileHash": fileHash,
	}

	var meta AssetMetadata
	if err := c.request(ctx, http.MethodPost, endpoint, body, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
