package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fileupload/service/internal/filetoken"
	"github.com/fileupload/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// FileClaimsKey is the context key for the verified file token claims.
const FileClaimsKey contextKey = "fileClaims"

// FileIDParam is the chi URL parameter holding the public file id.
const FileIDParam = "fileId"

// RequireFileToken returns middleware that validates the file token passed in the
// "token" query parameter or as a Bearer Authorization header, and injects the
// claims into the request context. The token must match the {fileId} URL parameter.
func RequireFileToken(issuer *filetoken.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("token")
			if raw == "" {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					response.Unauthorized(w, "file token required")
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					response.Unauthorized(w, "invalid authorization header format")
					return
				}
				raw = parts[1]
			}

			claims, err := issuer.Parse(raw, chi.URLParam(r, FileIDParam))
			if err != nil {
				response.Unauthorized(w, "invalid or expired file token")
				return
			}

			ctx := context.WithValue(r.Context(), FileClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FileClaims returns the claims stored by RequireFileToken.
func FileClaims(ctx context.Context) (*filetoken.Claims, bool) {
	c, ok := ctx.Value(FileClaimsKey).(*filetoken.Claims)
	return c, ok
}
