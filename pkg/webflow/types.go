package webflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is a collection item as the Webflow Data API returns it. The
// draft and live copies of an item are distinct server-side
// representations; IsDraft reflects which one a response describes.
// FieldData is schema-free: field names are agreed upon with the remote
// collection ("name", "slug", "post-summary", "rich-text", ...).
type Item struct {
	ID            string                 `json:"id"`
	CmsLocaleID   string                 `json:"cmsLocaleId,omitempty"`
	LastPublished string                 `json:"lastPublished,omitempty"`
	LastUpdated   string                 `json:"lastUpdated,omitempty"`
	CreatedOn     string                 `json:"createdOn,omitempty"`
	IsArchived    bool                   `json:"isArchived"`
	IsDraft       bool                   `json:"isDraft"`
	FieldData     map[string]interface{} `json:"fieldData"`
}

// Pagination mirrors the remote list envelope.
type Pagination struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
	Total  int64 `json:"total"`
}

// ItemList is one page of collection items, in remote order.
type ItemList struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ListOptions carries paging parameters. Values are forwarded to the
// remote API exactly as given; the client does not validate bounds.
type ListOptions struct {
	Limit  string
	Offset string
}

// CollectionField is one field definition in a collection schema.
type CollectionField struct {
	ID          string `json:"id"`
	IsRequired  bool   `json:"isRequired"`
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
}

// Collection is a collection's schema: its identity plus the field
// definitions items of the collection carry in FieldData.
type Collection struct {
	ID           string            `json:"id"`
	DisplayName  string            `json:"displayName"`
	SingularName string            `json:"singularName"`
	Slug         string            `json:"slug"`
	Fields       []CollectionField `json:"fields,omitempty"`
}

// PublishResult reports which item ids were promoted to live.
type PublishResult struct {
	PublishedItemIDs []string `json:"publishedItemIds"`
	Errors           []string `json:"errors,omitempty"`
}

// Site identifies a Webflow site; asset uploads are scoped to a site.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	ShortName   string `json:"shortName,omitempty"`
}

// SiteList is the response of the sites endpoint.
type SiteList struct {
	Sites []Site `json:"sites"`
}

// AssetMetadata is the upload ticket returned by the asset-metadata
// endpoint: a delegated-upload target plus the exact form fields the
// storage service expects. Valid for a single upload attempt.
type AssetMetadata struct {
	ID            string        `json:"id"`
	UploadURL     string        `json:"uploadUrl"`
	UploadDetails UploadDetails `json:"uploadDetails"`
	ContentType   string        `json:"contentType,omitempty"`
	FileName      string        `json:"fileName,omitempty"`
	HostedURL     string        `json:"hostedUrl,omitempty"`
	AssetURL      string        `json:"assetUrl,omitempty"`
}

// FormField is one delegated-upload form parameter.
type FormField struct {
	Name  string
	Value string
}

// UploadDetails preserves the order in which the ticket lists its form
// fields. The storage target validates a signature computed over the
// field sequence, so a plain map would corrupt the upload.
type UploadDetails []FormField

// UnmarshalJSON decodes a JSON object while keeping key order.
func (d *UploadDetails) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("uploadDetails: expected JSON object, got %v", tok)
	}

	fields := UploadDetails{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("uploadDetails: unexpected key token %v", keyTok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fields = append(fields, FormField{Name: key, Value: fmt.Sprint(value)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = fields
	return nil
}

// MarshalJSON encodes the fields back into an object in their original
// order.
func (d UploadDetails) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
