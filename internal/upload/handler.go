// Package upload implements the POST /api/upload endpoint: it stages the
// incoming multipart file, validates it, forwards it to the storage provider
// and returns a normalized description of the stored asset.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fileupload/service/internal/filetoken"
	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/response"
	"github.com/fileupload/service/internal/storage"
	"github.com/fileupload/service/internal/validation"
)

// uploader tags every asset stored through this endpoint.
const uploader = "web"

// Options configures a Handler.
type Options struct {
	// MaxSize is the largest accepted file. Non-positive means validation.DefaultMaxSize.
	MaxSize int64
	// TmpDir is where uploads are staged. Empty means os.TempDir().
	TmpDir string
	// Production hides provider error details from responses.
	Production bool
}

// Handler serves the upload endpoint.
type Handler struct {
	provider   storage.Provider
	tokens     *filetoken.Issuer
	log        logging.Logger
	maxSize    int64
	tmpDir     string
	production bool
	now        func() time.Time
}

// NewHandler creates a new upload Handler.
func NewHandler(provider storage.Provider, tokens *filetoken.Issuer, log logging.Logger, opts Options) *Handler {
	if opts.MaxSize <= 0 {
		opts.MaxSize = validation.DefaultMaxSize
	}
	return &Handler{
		provider:   provider,
		tokens:     tokens,
		log:        log,
		maxSize:    opts.MaxSize,
		tmpDir:     opts.TmpDir,
		production: opts.Production,
		now:        time.Now,
	}
}

// Result is the success payload of an upload.
type Result struct {
	Success       bool             `json:"success"       example:"true"`
	FileID        string           `json:"fileId"        example:"3f9c2a1b7d4e"`
	URL           string           `json:"url"           example:"https://cdn.example.com/media/uploads/file_1717171717171_3f9c2a1b7d4e.png"`
	DirectURL     string           `json:"directUrl"     example:"https://cdn.example.com/media/uploads/file_1717171717171_3f9c2a1b7d4e.png"`
	PublicID      string           `json:"publicId"      example:"uploads/file_1717171717171_3f9c2a1b7d4e"`
	Filename      string           `json:"filename"      example:"photo.png"`
	FileType      storage.FileType `json:"fileType"      example:"image"`
	Size          int64            `json:"size"          example:"20480"`
	FormattedSize string           `json:"formattedSize" example:"20 KB"`
	Format        string           `json:"format"        example:"png"`
	Width         *int             `json:"width,omitempty"    example:"800"`
	Height        *int             `json:"height,omitempty"   example:"600"`
	Duration      *float64         `json:"duration,omitempty"`
	UploadedAt    time.Time        `json:"uploadedAt"    example:"2026-02-27T14:48:34Z"`
	DeleteURL     string           `json:"deleteUrl"     example:"/api/files/3f9c2a1b7d4e/delete?token=eyJhbGci..."`
	Shareable     bool             `json:"shareable"     example:"true"`
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Accepts a single multipart "file" part (max 100MB by default), validates it and stores it with the configured provider. The optional "password" and "expires" fields are accepted but not enforced.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to upload"
//	@Param			password	formData	string	false	"Optional password (not enforced)"
//	@Param			expires		formData	string	false	"Optional expiry: never, 1h, 1d, 7d, 30d (not enforced)"
//	@Success		200			{object}	Result
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		413			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	setCORS(w)

	limit := h.maxSize + multipartOverhead
	if r.ContentLength > limit {
		response.PayloadTooLarge(w, tooLargeMessage(h.maxSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	staged, fields, err := receive(r, h.tmpDir, h.maxSize)
	switch {
	case errors.Is(err, errNoFile):
		response.BadRequest(w, "No file uploaded")
		return
	case isTooLarge(err):
		response.PayloadTooLarge(w, tooLargeMessage(h.maxSize))
		return
	case err != nil:
		h.log.Error(ctx, "receive upload", "error", err)
		h.failure(w, http.StatusInternalServerError, "could not read upload", err)
		return
	}
	defer h.cleanup(ctx, staged)

	h.log.Info(ctx, "upload received",
		"filename", staged.name,
		"size", staged.size,
		"type", staged.mimeType,
		"private", fields.password != "",
		"expires", fields.expires,
	)

	check := validation.ValidateFile(validation.File{
		Name: staged.name,
		Size: staged.size,
		Type: staged.mimeType,
	}, h.maxSize)
	if !check.IsValid {
		h.cleanup(ctx, staged)
		response.JSON(w, http.StatusBadRequest, response.ErrorBody{
			Error:   "File validation failed",
			Details: check.Errors,
		})
		return
	}

	data, err := os.ReadFile(staged.path)
	if err != nil {
		h.cleanup(ctx, staged)
		h.log.Error(ctx, "read staged upload", "error", err)
		h.failure(w, http.StatusInternalServerError, "could not read upload", err)
		return
	}

	fileID := storage.NewFileID()
	asset, err := h.provider.Upload(ctx, data, storage.UploadOptions{
		PublicID:    storage.NewPublicID(h.now(), fileID),
		Filename:    staged.name,
		ContentType: staged.mimeType,
		Context: map[string]string{
			"filename": staged.name,
			"uploader": uploader,
		},
	})
	h.cleanup(ctx, staged)
	if err != nil {
		h.log.Error(ctx, "provider upload", "filename", staged.name, "error", err)
		h.failure(w, storage.HTTPStatus(err), providerMessage(err), err)
		return
	}

	if id := storage.FileIDFromPublicID(asset.PublicID); id != fileID {
		h.log.Warn(ctx, "provider changed object name", "publicId", asset.PublicID, "fileId", fileID)
	}

	result, err := h.result(fileID, staged.name, asset)
	if err != nil {
		h.log.Error(ctx, "build upload result", "publicId", asset.PublicID, "error", err)
		h.discard(ctx, asset.PublicID)
		h.failure(w, http.StatusInternalServerError, "could not issue file token", err)
		return
	}

	h.log.Info(ctx, "upload stored", "publicId", asset.PublicID, "bytes", asset.Bytes, "fileType", result.FileType)
	response.OK(w, result)
}

func (h *Handler) result(fileID, filename string, asset *storage.Asset) (*Result, error) {
	token, err := h.tokens.Issue(asset.PublicID, fileID)
	if err != nil {
		return nil, err
	}

	size := asset.Bytes
	return &Result{
		Success:       true,
		FileID:        fileID,
		URL:           asset.SecureURL,
		DirectURL:     asset.SecureURL,
		PublicID:      asset.PublicID,
		Filename:      filename,
		FileType:      storage.Classify(asset.ResourceType, asset.Format),
		Size:          size,
		FormattedSize: validation.FormatFileSize(size),
		Format:        asset.Format,
		Width:         asset.Width,
		Height:        asset.Height,
		Duration:      asset.Duration,
		UploadedAt:    h.now().UTC(),
		DeleteURL:     fmt.Sprintf("/api/files/%s/delete?token=%s", fileID, token),
		Shareable:     true,
	}, nil
}

// failure writes the provider-style error body. Details are omitted in production.
func (h *Handler) failure(w http.ResponseWriter, status int, message string, err error) {
	body := response.ErrorBody{Error: "Upload failed", Message: message}
	if !h.production && err != nil {
		body.Details = err.Error()
	}
	response.JSON(w, status, body)
}

func (h *Handler) cleanup(ctx context.Context, staged *stagedFile) {
	if err := staged.Remove(); err != nil {
		h.log.Warn(ctx, "cleanup staged upload", "error", err)
	}
}

// discard removes an asset that was stored but could not be returned to the caller.
func (h *Handler) discard(ctx context.Context, publicID string) {
	if err := h.provider.Remove(ctx, publicID); err != nil {
		h.log.Warn(ctx, "remove orphaned asset", "publicId", publicID, "error", err)
	}
}

func providerMessage(err error) string {
	var se *storage.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}

func tooLargeMessage(limit int64) string {
	return "File size too large. Maximum: " + validation.FormatFileSize(limit)
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}
