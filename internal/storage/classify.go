package storage

import "strings"

// FileType is the user-facing category of a stored asset.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeDocument FileType = "document"
	FileTypeArchive  FileType = "archive"
	FileTypeOther    FileType = "other"
)

var (
	imageFormats    = formatSet("jpg", "jpeg", "png", "gif", "webp", "svg", "bmp")
	videoFormats    = formatSet("mp4", "webm", "mov", "avi", "mkv")
	audioFormats    = formatSet("mp3", "wav", "ogg", "m4a")
	documentFormats = formatSet("pdf", "doc", "docx", "txt", "rtf")
	archiveFormats  = formatSet("zip", "rar", "7z", "tar", "gz")
)

func formatSet(formats ...string) map[string]bool {
	m := make(map[string]bool, len(formats))
	for _, f := range formats {
		m[f] = true
	}
	return m
}

// Classify maps a provider resource category and format to a FileType.
// It never fails: unknown combinations are FileTypeOther.
func Classify(resourceType, format string) FileType {
	f := strings.ToLower(format)
	switch {
	case resourceType == ResourceImage || imageFormats[f]:
		return FileTypeImage
	case resourceType == ResourceVideo || videoFormats[f]:
		return FileTypeVideo
	case resourceType == ResourceRaw && audioFormats[f]:
		return FileTypeAudio
	case resourceType == ResourceRaw && documentFormats[f]:
		return FileTypeDocument
	case resourceType == ResourceRaw && archiveFormats[f]:
		return FileTypeArchive
	default:
		return FileTypeOther
	}
}
