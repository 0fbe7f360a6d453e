// Package validation checks candidate files against the upload constraints.
// The same rules run in the browser-side form and in the upload endpoint, so both
// call sites share the allow-list and the size limit defined here.
package validation

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxSize is the largest accepted upload, 100 MiB.
const DefaultMaxSize int64 = 100 * 1024 * 1024

// MaxNameLength is the longest accepted file name, in characters.
const MaxNameLength = 200

// Validation messages, in the order the checks run.
const (
	msgTooLarge    = "File size too large. Maximum: %s"
	MsgUnsupported = "File type not supported"
	MsgNameTooLong = "File name too long"
)

// allowedTypeList holds the MIME types accepted for upload, grouped by category.
var allowedTypeList = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"video/mp4",
	"video/webm",
	"video/quicktime",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/zip",
	"application/x-rar-compressed",
	"application/x-7z-compressed",
	"text/plain",
}

var allowedTypes = func() map[string]bool {
	m := make(map[string]bool, len(allowedTypeList))
	for _, t := range allowedTypeList {
		m[t] = true
	}
	return m
}()

// File describes a candidate upload.
type File struct {
	Name string
	Size int64
	Type string
}

// Result is the outcome of ValidateFile. Errors keeps the order of the checks.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateFile runs every check against f and collects one message per failure.
// A non-positive maxSize selects DefaultMaxSize.
func ValidateFile(f File, maxSize int64) Result {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	errs := []string{}
	if f.Size > maxSize {
		errs = append(errs, fmt.Sprintf(msgTooLarge, FormatFileSize(maxSize)))
	}
	if !IsAllowedType(f.Type) {
		errs = append(errs, MsgUnsupported)
	}
	if utf8.RuneCountInString(f.Name) > MaxNameLength {
		errs = append(errs, MsgNameTooLong)
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// IsAllowedType reports whether mimeType is on the allow-list.
func IsAllowedType(mimeType string) bool {
	return allowedTypes[mimeType]
}

// AllowedTypes returns a copy of the allow-list in a stable order.
func AllowedTypes() []string {
	return slices.Clone(allowedTypeList)
}

// IsImage reports whether mimeType describes an image.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize renders bytes with 1024-based units and at most two decimals,
// e.g. 0 -> "0 Bytes", 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := 0
	div := float64(1)
	for i < len(sizeUnits)-1 && float64(bytes) >= div*1024 {
		div *= 1024
		i++
	}

	v := math.Round(float64(bytes)/div*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// FileExtension returns the lower-cased text after the last dot of name,
// or the whole name lower-cased when it has no dot.
func FileExtension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return strings.ToLower(name)
}
