package upload

import (
	"net/http"

	"github.com/fileupload/service/internal/response"
	"github.com/fileupload/service/internal/validation"
)

// Info describes the upload API.
type Info struct {
	Name         string            `json:"name"         example:"File Upload API"`
	Version      string            `json:"version"      example:"1.0.0"`
	Description  string            `json:"description"`
	MaxFileSize  string            `json:"maxFileSize"  example:"100 MB"`
	AllowedTypes []string          `json:"allowedTypes"`
	Endpoints    map[string]string `json:"endpoints"`
}

// Info godoc
//
//	@Summary		Upload API info
//	@Description	Static description of the upload API: size limit, accepted categories and endpoints.
//	@Tags			upload
//	@Produce		json
//	@Success		200	{object}	Info
//	@Router			/upload [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	response.OK(w, Info{
		Name:        "File Upload API",
		Version:     "1.0.0",
		Description: "Upload files to the configured media provider",
		MaxFileSize: validation.FormatFileSize(h.maxSize),
		AllowedTypes: []string{
			"images (jpg, png, gif, webp, svg)",
			"videos (mp4, webm, mov)",
			"audio (mp3, wav, ogg)",
			"documents (pdf, doc, docx, txt)",
			"archives (zip, rar, 7z)",
		},
		Endpoints: map[string]string{
			"POST": "/api/upload - Upload file",
			"GET":  "/api/upload - API info",
		},
	})
}

// Preflight godoc
//
//	@Summary	CORS preflight
//	@Tags		upload
//	@Success	200
//	@Router		/upload [options]
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusOK)
}
