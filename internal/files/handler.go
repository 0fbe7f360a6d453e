// Package files serves the management endpoints reached through an upload's
// deleteUrl: metadata lookup, signed download links and removal.
package files

import (
	"errors"
	"net/http"
	"time"

	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/middleware"
	"github.com/fileupload/service/internal/response"
	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/validation"
)

// Signed URL lifetimes.
const (
	DefaultSignedTTL = 15 * time.Minute
	MaxSignedTTL     = 7 * 24 * time.Hour
)

// Handler holds HTTP handlers for file management endpoints.
// Every route must be wrapped with middleware.RequireFileToken.
type Handler struct {
	provider storage.Provider
	log      logging.Logger
}

// NewHandler creates a new files Handler.
func NewHandler(provider storage.Provider, log logging.Logger) *Handler {
	return &Handler{provider: provider, log: log}
}

type fileInfo struct {
	FileID        string            `json:"fileId"        example:"3f9c2a1b7d4e"`
	PublicID      string            `json:"publicId"      example:"uploads/file_1717171717171_3f9c2a1b7d4e.png"`
	URL           string            `json:"url"`
	FileType      storage.FileType  `json:"fileType"      example:"image"`
	Format        string            `json:"format"        example:"png"`
	ContentType   string            `json:"contentType"   example:"image/png"`
	Size          int64             `json:"size"          example:"20480"`
	FormattedSize string            `json:"formattedSize" example:"20 KB"`
	Width         *int              `json:"width,omitempty"`
	Height        *int              `json:"height,omitempty"`
	Duration      *float64          `json:"duration,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	Context       map[string]string `json:"context,omitempty"`
}

type signedURLData struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type deleteData struct {
	Success bool   `json:"success" example:"true"`
	FileID  string `json:"fileId"  example:"3f9c2a1b7d4e"`
}

// Metadata godoc
//
//	@Summary		File metadata
//	@Description	Returns provider metadata for an uploaded file.
//	@Tags			files
//	@Produce		json
//	@Param			fileId	path		string	true	"File id"
//	@Param			token	query		string	true	"File token from deleteUrl"
//	@Success		200		{object}	fileInfo
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/files/{fileId} [get]
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.FileClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "file token required")
		return
	}

	a, err := h.provider.GetMetadata(r.Context(), claims.PublicID())
	if err != nil {
		h.providerError(w, r, "get metadata", err)
		return
	}

	response.OK(w, fileInfo{
		FileID:        claims.FileID,
		PublicID:      a.PublicID,
		URL:           a.SecureURL,
		FileType:      storage.Classify(a.ResourceType, a.Format),
		Format:        a.Format,
		ContentType:   a.ContentType,
		Size:          a.Bytes,
		FormattedSize: validation.FormatFileSize(a.Bytes),
		Width:         a.Width,
		Height:        a.Height,
		Duration:      a.Duration,
		CreatedAt:     a.CreatedAt,
		Context:       a.Context,
	})
}

// Signed godoc
//
//	@Summary		Signed download URL
//	@Description	Returns a time-limited download URL. ttl is a Go duration (default 15m, max 168h).
//	@Tags			files
//	@Produce		json
//	@Param			fileId	path		string	true	"File id"
//	@Param			token	query		string	true	"File token from deleteUrl"
//	@Param			ttl		query		string	false	"Link lifetime"	default(15m)
//	@Success		200		{object}	signedURLData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/files/{fileId}/signed [get]
func (h *Handler) Signed(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.FileClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "file token required")
		return
	}

	ttl := DefaultSignedTTL
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > MaxSignedTTL {
			response.BadRequest(w, "ttl must be a duration between 1s and 168h")
			return
		}
		ttl = d
	}

	u, err := h.provider.SignedURL(r.Context(), claims.PublicID(), ttl)
	if err != nil {
		h.providerError(w, r, "sign url", err)
		return
	}
	response.OK(w, signedURLData{URL: u, ExpiresAt: time.Now().UTC().Add(ttl)})
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Removes an uploaded file from the provider.
//	@Tags			files
//	@Produce		json
//	@Param			fileId	path		string	true	"File id"
//	@Param			token	query		string	true	"File token from deleteUrl"
//	@Success		200		{object}	deleteData
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/files/{fileId}/delete [delete]
//	@Router			/files/{fileId}/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.FileClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "file token required")
		return
	}

	if err := h.provider.Remove(r.Context(), claims.PublicID()); err != nil {
		h.providerError(w, r, "remove", err)
		return
	}

	h.log.Info(r.Context(), "file removed", "publicId", claims.PublicID())
	response.OK(w, deleteData{Success: true, FileID: claims.FileID})
}

func (h *Handler) providerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, "file not found")
		return
	}

	status := storage.HTTPStatus(err)
	h.log.Error(r.Context(), "provider "+op, "status", status, "error", err)
	message := "storage request failed"
	var se *storage.Error
	if errors.As(err, &se) && se.Message != "" {
		message = se.Message
	}
	response.JSON(w, status, response.ErrorBody{Error: message})
}
