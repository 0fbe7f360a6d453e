package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileupload/service/internal/filetoken"
	"github.com/fileupload/service/internal/logging"
)

func TestNoCache(t *testing.T) {
	h := NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestLogger_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(logging.New(&buf, false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/api/upload"`)
}

func newTokenRouter(iss *filetoken.Issuer) http.Handler {
	r := chi.NewRouter()
	r.With(RequireFileToken(iss)).Get("/files/{fileId}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := FileClaims(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(c.PublicID()))
	})
	return r
}

func TestRequireFileToken(t *testing.T) {
	iss := filetoken.NewIssuer("secret", time.Hour)
	tok, err := iss.Issue("uploads/file_1_abcdef012345.png", "abcdef012345")
	require.NoError(t, err)
	router := newTokenRouter(iss)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"query token", "/files/abcdef012345?token=" + tok, "", http.StatusOK},
		{"bearer token", "/files/abcdef012345", "Bearer " + tok, http.StatusOK},
		{"missing", "/files/abcdef012345", "", http.StatusUnauthorized},
		{"bad scheme", "/files/abcdef012345", "Basic " + tok, http.StatusUnauthorized},
		{"other file", "/files/000000000000?token=" + tok, "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "uploads/file_1_abcdef012345.png", rec.Body.String())
			}
		})
	}
}
