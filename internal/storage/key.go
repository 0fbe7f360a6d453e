package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileIDLength is the number of hex characters in a file id.
const FileIDLength = 12

// NewFileID returns a short random identifier taken from a UUID v4.
func NewFileID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:FileIDLength]
}

// NewPublicID builds the object name for an upload started at now.
func NewPublicID(now time.Time, fileID string) string {
	return fmt.Sprintf("file_%d_%s", now.UnixMilli(), fileID)
}

// objectKey builds the full key for an upload: folder, public id and the
// original file extension.
func objectKey(folder string, opts UploadOptions) string {
	name := opts.PublicID
	if f := formatOf(opts.Filename); f != "" {
		name += "." + f
	}
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// FileIDFromPublicID extracts the file id embedded by NewPublicID, or "" when
// publicID was not produced by it.
func FileIDFromPublicID(publicID string) string {
	base := path.Base(publicID)
	base = strings.TrimSuffix(base, path.Ext(base))
	parts := strings.Split(base, "_")
	if len(parts) != 3 || parts[0] != "file" || len(parts[2]) != FileIDLength {
		return ""
	}
	return parts[2]
}
