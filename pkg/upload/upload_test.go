package upload

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/webflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name        string
		file        File
		maxBytes    int64
		expectedErr string
	}{
		{
			name:     "jpeg within limit",
			file:     File{ContentType: "image/jpeg", Size: 1024},
			maxBytes: 4 * 1024 * 1024,
		},
		{
			name:     "webp within limit",
			file:     File{ContentType: "image/webp", Size: 1024},
			maxBytes: 4 * 1024 * 1024,
		},
		{
			name:        "pdf rejected regardless of size",
			file:        File{ContentType: "application/pdf", Size: 10},
			maxBytes:    4 * 1024 * 1024,
			expectedErr: "Invalid file type. Please upload JPEG, PNG, GIF, or WebP.",
		},
		{
			name:        "svg rejected",
			file:        File{ContentType: "image/svg+xml", Size: 10},
			maxBytes:    4 * 1024 * 1024,
			expectedErr: "Invalid file type. Please upload JPEG, PNG, GIF, or WebP.",
		},
		{
			name:        "five megabyte png over four megabyte limit",
			file:        File{ContentType: "image/png", Size: 5 * 1024 * 1024},
			maxBytes:    4 * 1024 * 1024,
			expectedErr: "File too large. Maximum size is 4MB.",
		},
		{
			name:     "exactly at the limit",
			file:     File{ContentType: "image/png", Size: 4 * 1024 * 1024},
			maxBytes: 4 * 1024 * 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file, tt.maxBytes)
			if tt.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tt.expectedErr, vErr.Reason)
		})
	}
}

func TestNewAssetName(t *testing.T) {
	name := newAssetName("photo.PNG")
	require.True(t, strings.HasPrefix(name, "blog-"))
	require.True(t, strings.HasSuffix(name, ".png"))

	// No extension falls back to jpg
	require.True(t, strings.HasSuffix(newAssetName("raw-paste"), ".jpg"))
}

func TestNew_BackendSelection(t *testing.T) {
	log := zerolog.Nop()
	cms := webflow.NewClient("http://cms.invalid", "token", log)

	tests := []struct {
		name     string
		cfg      *config.Config
		cms      *webflow.Client
		expected interface{}
	}{
		{
			name:     "site id and client select the asset pipeline",
			cfg:      &config.Config{WebflowSiteID: "site1", ImgBBKey: "k"},
			cms:      cms,
			expected: &assetUploader{},
		},
		{
			name:     "site id without a client falls through to imgbb",
			cfg:      &config.Config{WebflowSiteID: "site1", ImgBBKey: "k"},
			expected: &imgbbUploader{},
		},
		{
			name:     "imgbb wins over cloudinary",
			cfg:      &config.Config{ImgBBKey: "k", CloudinaryCloudName: "c", CloudinaryUploadPreset: "p"},
			expected: &imgbbUploader{},
		},
		{
			name:     "cloudinary needs both cloud name and preset",
			cfg:      &config.Config{CloudinaryCloudName: "c"},
			expected: &disabledUploader{},
		},
		{
			name:     "cloudinary",
			cfg:      &config.Config{CloudinaryCloudName: "c", CloudinaryUploadPreset: "p"},
			expected: &cloudinaryUploader{},
		},
		{
			name:     "bare client discovers a site lazily",
			cfg:      &config.Config{},
			cms:      cms,
			expected: &assetUploader{},
		},
		{
			name:     "nothing configured",
			cfg:      &config.Config{},
			expected: &disabledUploader{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.IsType(t, tt.expected, New(tt.cfg, tt.cms, log))
		})
	}
}

func TestDisabledUploader(t *testing.T) {
	uploader := New(&config.Config{}, nil, zerolog.Nop())

	_, err := uploader.Upload(context.Background(), File{ContentType: "image/png"})
	require.EqualError(t, err, "image hosting not configured: set IMGBB_API_KEY or CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET")
}

func TestAssetUploader_TwoPhase(t *testing.T) {
	fileData := []byte("fake png bytes")
	sum := md5.Sum(fileData)
	expectedHash := hex.EncodeToString(sum[:])

	var storageCalled bool
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storageCalled = true

		// Walk the parts in wire order: every ticket field first, the
		// binary strictly last.
		reader, err := r.MultipartReader()
		require.NoError(t, err)

		var names []string
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			names = append(names, part.FormName())
			if part.FormName() == "file" {
				require.Equal(t, "image/png", part.Header.Get("Content-Type"))
				data, err := io.ReadAll(part)
				require.NoError(t, err)
				require.Equal(t, fileData, data)
			}
		}
		require.Equal(t, []string{"X-Amz-Signature", "acl", "key", "file"}, names)

		w.WriteHeader(http.StatusCreated)
	}))
	defer storage.Close()

	cmsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sites/site1/assets", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, expectedHash, body["fileHash"])
		require.True(t, strings.HasPrefix(body["fileName"], "blog-"))
		require.True(t, strings.HasSuffix(body["fileName"], ".png"))

		fmt.Fprintf(w, `{
			"id": "asset-1",
			"uploadUrl": %q,
			"uploadDetails": {"X-Amz-Signature": "sig", "acl": "public-read", "key": "k"},
			"hostedUrl": "https://cdn.example/blog.png"
		}`, storage.URL)
	}))
	defer cmsServer.Close()

	uploader := New(&config.Config{WebflowSiteID: "site1"},
		webflow.NewClient(cmsServer.URL, "token", zerolog.Nop()), zerolog.Nop())

	result, err := uploader.Upload(context.Background(), File{
		Name:        "photo.png",
		ContentType: "image/png",
		Size:        int64(len(fileData)),
		Data:        fileData,
	})
	require.NoError(t, err)
	require.True(t, storageCalled)
	require.Equal(t, "https://cdn.example/blog.png", result.URL)
	require.Equal(t, "asset-1", result.FileID)
}

func TestAssetUploader_DiscoversSite(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer storage.Close()

	var sitesCalls int
	cmsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sites":
			sitesCalls++
			w.Write([]byte(`{"sites":[{"id":"site-9","displayName":"Blog"}]}`))
		case "/sites/site-9/assets":
			fmt.Fprintf(w, `{"id":"asset-1","uploadUrl":%q,"uploadDetails":{"key":"k"},"hostedUrl":"https://cdn.example/a.png"}`, storage.URL)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer cmsServer.Close()

	// No WEBFLOW_SITE_ID configured
	uploader := New(&config.Config{},
		webflow.NewClient(cmsServer.URL, "token", zerolog.Nop()), zerolog.Nop())

	f := File{Name: "a.png", ContentType: "image/png", Data: []byte("x")}

	result, err := uploader.Upload(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/a.png", result.URL)

	// The discovered site id is cached across uploads
	_, err = uploader.Upload(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 1, sitesCalls)
}

func TestAssetUploader_DiscoveryFailure(t *testing.T) {
	cmsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sites", r.URL.Path)
		w.Write([]byte(`{"sites":[]}`))
	}))
	defer cmsServer.Close()

	uploader := New(&config.Config{},
		webflow.NewClient(cmsServer.URL, "token", zerolog.Nop()), zerolog.Nop())

	_, err := uploader.Upload(context.Background(), File{Name: "a.png", ContentType: "image/png", Data: []byte("x")})
	require.EqualError(t, err, "no sites available for asset uploads")
}

func TestAssetUploader_StorageFailure(t *testing.T) {
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("signature mismatch"))
	}))
	defer storage.Close()

	cmsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"asset-1","uploadUrl":%q,"uploadDetails":{"key":"k"},"hostedUrl":"u"}`, storage.URL)
	}))
	defer cmsServer.Close()

	uploader := New(&config.Config{WebflowSiteID: "site1"},
		webflow.NewClient(cmsServer.URL, "token", zerolog.Nop()), zerolog.Nop())

	_, err := uploader.Upload(context.Background(), File{Name: "a.png", ContentType: "image/png", Data: []byte("x")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage upload failed with status 403")
	require.Contains(t, err.Error(), "signature mismatch")
}

func TestAssetUploader_TicketFailure(t *testing.T) {
	cmsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Duplicate file hash"}`))
	}))
	defer cmsServer.Close()

	uploader := New(&config.Config{WebflowSiteID: "site1"},
		webflow.NewClient(cmsServer.URL, "token", zerolog.Nop()), zerolog.Nop())

	_, err := uploader.Upload(context.Background(), File{Name: "a.png", ContentType: "image/png", Data: []byte("x")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create asset metadata")
	require.Contains(t, err.Error(), "Duplicate file hash")
}

func TestImgBBUploader(t *testing.T) {
	fileData := []byte("gif bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "test-key", r.PostForm.Get("key"))

		decoded, err := base64.StdEncoding.DecodeString(r.PostForm.Get("image"))
		require.NoError(t, err)
		require.Equal(t, fileData, decoded)

		w.Write([]byte(`{"success":true,"data":{"url":"https://i.ibb.co/abc/img.gif"}}`))
	}))
	defer srv.Close()

	uploader := &imgbbUploader{
		apiKey:     "test-key",
		endpoint:   srv.URL,
		httpClient: srv.Client(),
		log:        zerolog.Nop(),
	}

	result, err := uploader.Upload(context.Background(), File{Name: "a.gif", ContentType: "image/gif", Data: fileData})
	require.NoError(t, err)
	require.Equal(t, "https://i.ibb.co/abc/img.gif", result.URL)
	require.Empty(t, result.FileID)
}

func TestImgBBUploader_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	uploader := &imgbbUploader{apiKey: "bad", endpoint: srv.URL, httpClient: srv.Client(), log: zerolog.Nop()}

	_, err := uploader.Upload(context.Background(), File{Data: []byte("x")})
	require.EqualError(t, err, "failed to upload to ImgBB: Invalid API key")
}

func TestCloudinaryUploader(t *testing.T) {
	fileData := []byte("webp bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "blog-preset", r.PostFormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "a.webp", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, fileData, data)

		w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/a.webp","public_id":"a"}`))
	}))
	defer srv.Close()

	uploader := &cloudinaryUploader{
		endpoint:   srv.URL,
		preset:     "blog-preset",
		httpClient: srv.Client(),
		log:        zerolog.Nop(),
	}

	result, err := uploader.Upload(context.Background(), File{Name: "a.webp", ContentType: "image/webp", Data: fileData})
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/a.webp", result.URL)
	require.Equal(t, "a", result.PublicID)
}

func TestCloudinaryUploader_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	uploader := &cloudinaryUploader{endpoint: srv.URL, preset: "missing", httpClient: srv.Client(), log: zerolog.Nop()}

	_, err := uploader.Upload(context.Background(), File{Name: "a.png", ContentType: "image/png", Data: []byte("x")})
	require.EqualError(t, err, "failed to upload to Cloudinary: Upload preset not found")
}
