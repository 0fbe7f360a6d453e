package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		errMsg string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "No file uploaded") }, http.StatusBadRequest, "No file uploaded"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "invalid token") }, http.StatusUnauthorized, "invalid token"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "file not found") }, http.StatusNotFound, "file not found"},
		{"too large", func(w http.ResponseWriter) { PayloadTooLarge(w, "too big") }, http.StatusRequestEntityTooLarge, "too big"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.errMsg, body["error"])
			assert.NotContains(t, body, "details")
		})
	}
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]bool{"success": true})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
