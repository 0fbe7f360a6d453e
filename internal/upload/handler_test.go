package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileupload/service/internal/filetoken"
	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/validation"
)

type fakeProvider struct {
	mu      sync.Mutex
	err     error
	uploads []storage.UploadOptions
	data    [][]byte
	removed []string
}

func (p *fakeProvider) Upload(_ context.Context, data []byte, opts storage.UploadOptions) (*storage.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploads = append(p.uploads, opts)
	p.data = append(p.data, data)
	if p.err != nil {
		return nil, p.err
	}
	w, h := 2, 3
	format := strings.TrimPrefix(filepath.Ext(opts.Filename), ".")
	return &storage.Asset{
		PublicID:     "uploads/" + opts.PublicID + "." + format,
		SecureURL:    "https://cdn.test/uploads/" + opts.PublicID + "." + format,
		ResourceType: storage.ResourceImage,
		Format:       format,
		ContentType:  opts.ContentType,
		Bytes:        int64(len(data)),
		Width:        &w,
		Height:       &h,
		Context:      opts.Context,
	}, nil
}

func (p *fakeProvider) Remove(_ context.Context, publicID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, publicID)
	return nil
}

func (p *fakeProvider) GetMetadata(context.Context, string) (*storage.Asset, error) {
	return nil, storage.ErrNotFound
}

func (p *fakeProvider) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", storage.ErrNotFound
}

var fixedNow = time.Date(2026, 2, 27, 14, 48, 34, 0, time.UTC)

func newTestHandler(t *testing.T, p storage.Provider, opts Options) (*Handler, *filetoken.Issuer) {
	t.Helper()
	if opts.TmpDir == "" {
		opts.TmpDir = t.TempDir()
	}
	tokens := filetoken.NewIssuer("test-secret", time.Hour)
	h := NewHandler(p, tokens, logging.Discard(), opts)
	h.now = func() time.Time { return fixedNow }
	return h, tokens
}

type part struct {
	field, filename, contentType string
	body                         []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		hdr := textproto.MIMEHeader{}
		disp := fmt.Sprintf(`form-data; name=%q`, p.field)
		if p.filename != "" {
			disp += fmt.Sprintf(`; filename=%q`, p.filename)
		}
		hdr.Set("Content-Disposition", disp)
		if p.contentType != "" {
			hdr.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postUpload(t *testing.T, h *Handler, parts ...part) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 3))))
	return buf.Bytes()
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged files left behind")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUpload_Success(t *testing.T) {
	p := &fakeProvider{}
	dir := t.TempDir()
	h, tokens := newTestHandler(t, p, Options{TmpDir: dir})
	img := pngBytes(t)

	rec := postUpload(t, h,
		part{field: "file", filename: "photo.png", contentType: "image/png", body: img},
		part{field: "password", body: []byte("hunter2")},
		part{field: "expires", body: []byte("7d")},
	)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	requireEmptyDir(t, dir)

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.True(t, res.Shareable)
	assert.Len(t, res.FileID, storage.FileIDLength)
	assert.Equal(t, "photo.png", res.Filename)
	assert.Equal(t, storage.FileTypeImage, res.FileType)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, int64(len(img)), res.Size)
	assert.Equal(t, validation.FormatFileSize(int64(len(img))), res.FormattedSize)
	assert.Equal(t, res.URL, res.DirectURL)
	require.NotNil(t, res.Width)
	require.NotNil(t, res.Height)
	assert.Nil(t, res.Duration)
	assert.True(t, fixedNow.Equal(res.UploadedAt))

	require.Len(t, p.uploads, 1)
	opts := p.uploads[0]
	assert.Equal(t, storage.NewPublicID(fixedNow, res.FileID), opts.PublicID)
	assert.Equal(t, "image/png", opts.ContentType)
	assert.Equal(t, map[string]string{"filename": "photo.png", "uploader": "web"}, opts.Context)
	assert.Equal(t, img, p.data[0])
	assert.Equal(t, res.FileID, storage.FileIDFromPublicID(res.PublicID))

	u, err := url.Parse(res.DeleteURL)
	require.NoError(t, err)
	assert.Equal(t, "/api/files/"+res.FileID+"/delete", u.Path)
	claims, err := tokens.Parse(u.Query().Get("token"), res.FileID)
	require.NoError(t, err)
	assert.Equal(t, res.PublicID, claims.PublicID())
}

func TestUpload_TwoMegabyteJPEG(t *testing.T) {
	p := &fakeProvider{}
	dir := t.TempDir()
	h, _ := newTestHandler(t, p, Options{TmpDir: dir})

	rec := postUpload(t, h, part{field: "file", filename: "holiday.jpg", contentType: "image/jpeg", body: make([]byte, 2<<20)})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, storage.FileTypeImage, res.FileType)
	assert.Equal(t, "2 MB", res.FormattedSize)
	assert.Equal(t, "jpg", res.Format)
	requireEmptyDir(t, dir)
}

func TestUpload_ParameterizedContentType(t *testing.T) {
	p := &fakeProvider{}
	h, _ := newTestHandler(t, p, Options{})

	rec := postUpload(t, h, part{field: "file", filename: "notes.txt", contentType: "text/plain; charset=utf-8", body: []byte("hello")})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, p.uploads, 1)
	assert.Equal(t, "text/plain", p.uploads[0].ContentType)
}

func TestUpload_ContentTypeFromExtension(t *testing.T) {
	p := &fakeProvider{}
	h, _ := newTestHandler(t, p, Options{})

	rec := postUpload(t, h, part{field: "file", filename: "scan.pdf", body: []byte("%PDF-1.4")})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", p.uploads[0].ContentType)
}

func TestUpload_ValidationFailure(t *testing.T) {
	p := &fakeProvider{}
	dir := t.TempDir()
	h, _ := newTestHandler(t, p, Options{TmpDir: dir})

	rec := postUpload(t, h, part{field: "file", filename: "setup.exe", contentType: "application/x-msdownload", body: []byte("MZ")})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "File validation failed", body["error"])
	assert.Equal(t, []any{validation.MsgUnsupported}, body["details"])
	assert.Empty(t, p.uploads)
	requireEmptyDir(t, dir)
}

func TestUpload_NameTooLong(t *testing.T) {
	p := &fakeProvider{}
	h, _ := newTestHandler(t, p, Options{})

	name := strings.Repeat("a", validation.MaxNameLength) + ".txt"
	rec := postUpload(t, h, part{field: "file", filename: name, contentType: "text/plain", body: []byte("x")})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{validation.MsgNameTooLong}, decodeError(t, rec)["details"])
}

func TestUpload_TooLarge(t *testing.T) {
	t.Run("declared length", func(t *testing.T) {
		p := &fakeProvider{}
		h, _ := newTestHandler(t, p, Options{})

		body, ct := multipartBody(t, part{field: "file", filename: "big.mp4", contentType: "video/mp4", body: []byte("x")})
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.ContentLength = 150 << 20
		rec := httptest.NewRecorder()
		h.Upload(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, p.uploads)
	})

	t.Run("streamed part over limit", func(t *testing.T) {
		p := &fakeProvider{}
		dir := t.TempDir()
		h, _ := newTestHandler(t, p, Options{TmpDir: dir, MaxSize: 1024})

		body, ct := multipartBody(t, part{field: "file", filename: "big.txt", contentType: "text/plain", body: bytes.Repeat([]byte("x"), 4096)})
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		h.Upload(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "File size too large. Maximum: 1 KB", decodeError(t, rec)["error"])
		assert.Empty(t, p.uploads)
		requireEmptyDir(t, dir)
	})
}

func TestUpload_ProviderFailure(t *testing.T) {
	providerErr := fmt.Errorf("put object: %w", &storage.Error{StatusCode: http.StatusUnauthorized, Code: "InvalidAccessKeyId", Message: "Invalid API key"})

	t.Run("development", func(t *testing.T) {
		p := &fakeProvider{err: providerErr}
		dir := t.TempDir()
		h, _ := newTestHandler(t, p, Options{TmpDir: dir})

		rec := postUpload(t, h, part{field: "file", filename: "a.txt", contentType: "text/plain", body: []byte("a")})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "Upload failed", body["error"])
		assert.Equal(t, "Invalid API key", body["message"])
		assert.Contains(t, body["details"], "InvalidAccessKeyId")
		requireEmptyDir(t, dir)
	})

	t.Run("production hides details", func(t *testing.T) {
		p := &fakeProvider{err: providerErr}
		h, _ := newTestHandler(t, p, Options{Production: true})

		rec := postUpload(t, h, part{field: "file", filename: "a.txt", contentType: "text/plain", body: []byte("a")})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "Invalid API key", body["message"])
		assert.NotContains(t, body, "details")
	})

	t.Run("no provider status", func(t *testing.T) {
		p := &fakeProvider{err: fmt.Errorf("dial tcp: connection refused")}
		h, _ := newTestHandler(t, p, Options{})

		rec := postUpload(t, h, part{field: "file", filename: "a.txt", contentType: "text/plain", body: []byte("a")})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "dial tcp: connection refused", decodeError(t, rec)["message"])
	})
}

func TestUpload_InternalError(t *testing.T) {
	truncated := func(t *testing.T) (*bytes.Buffer, string) {
		body, ct := multipartBody(t, part{field: "file", filename: "notes.txt", contentType: "text/plain", body: bytes.Repeat([]byte("x"), 8000)})
		return bytes.NewBuffer(body.Bytes()[:3000]), ct
	}
	complete := func(t *testing.T) (*bytes.Buffer, string) {
		return multipartBody(t, part{field: "file", filename: "notes.txt", contentType: "text/plain", body: []byte("hello")})
	}

	tests := []struct {
		name    string
		body    func(t *testing.T) (*bytes.Buffer, string)
		missing bool
		details string
	}{
		{name: "staging dir missing", body: complete, missing: true, details: "create staged file"},
		{name: "body cut short", body: truncated, details: "unexpected EOF"},
	}
	for _, tt := range tests {
		for _, production := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/production=%v", tt.name, production), func(t *testing.T) {
				p := &fakeProvider{}
				dir := t.TempDir()
				tmp := dir
				if tt.missing {
					tmp = filepath.Join(dir, "missing")
				}
				h, _ := newTestHandler(t, p, Options{TmpDir: tmp, Production: production})

				body, ct := tt.body(t)
				req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
				req.Header.Set("Content-Type", ct)
				rec := httptest.NewRecorder()
				h.Upload(rec, req)

				require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
				got := decodeError(t, rec)
				assert.Equal(t, "Upload failed", got["error"])
				assert.Equal(t, "could not read upload", got["message"])
				if production {
					assert.NotContains(t, got, "details")
				} else {
					assert.Contains(t, got["details"], tt.details)
				}
				assert.Empty(t, p.uploads)
				requireEmptyDir(t, dir)
			})
		}
	}
}

func TestUpload_NoFile(t *testing.T) {
	p := &fakeProvider{}
	dir := t.TempDir()
	h, _ := newTestHandler(t, p, Options{TmpDir: dir})

	rec := postUpload(t, h, part{field: "password", body: []byte("x")})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, rec)["error"])
	assert.Empty(t, p.uploads)
	requireEmptyDir(t, dir)
}

func TestUpload_NotMultipart(t *testing.T) {
	h, _ := newTestHandler(t, &fakeProvider{}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_OnlyFirstFileIsUsed(t *testing.T) {
	p := &fakeProvider{}
	h, _ := newTestHandler(t, p, Options{})

	rec := postUpload(t, h,
		part{field: "file", filename: "one.txt", contentType: "text/plain", body: []byte("one")},
		part{field: "file", filename: "two.txt", contentType: "text/plain", body: []byte("two")},
	)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, p.uploads, 1)
	assert.Equal(t, "one.txt", p.uploads[0].Filename)
}

func TestInfo(t *testing.T) {
	h, _ := newTestHandler(t, &fakeProvider{}, Options{})

	rec := httptest.NewRecorder()
	h.Info(rec, httptest.NewRequest(http.MethodGet, "/api/upload", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var info Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "File Upload API", info.Name)
	assert.Equal(t, "100 MB", info.MaxFileSize)
	assert.Len(t, info.AllowedTypes, 5)
	assert.Contains(t, info.Endpoints, "POST")
}

func TestPreflight(t *testing.T) {
	h, _ := newTestHandler(t, &fakeProvider{}, Options{})

	rec := httptest.NewRecorder()
	h.Preflight(rec, httptest.NewRequest(http.MethodOptions, "/api/upload", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
