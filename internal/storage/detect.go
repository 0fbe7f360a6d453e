package storage

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Metadata keys written next to every object.
const (
	metaResourceType = "resource-type"
	metaFormat       = "format"
	metaWidth        = "width"
	metaHeight       = "height"
)

// resourceCategory applies the provider's auto-detection: images and videos are
// recognised by MIME type, everything else is stored as raw.
func resourceCategory(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return ResourceImage
	case strings.HasPrefix(contentType, "video/"):
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

// formatOf returns the lower-cased extension of name without the dot.
func formatOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// imageSize decodes the image header of data. ok is false for formats
// without a registered decoder.
func imageSize(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// buildAsset assembles the upload result common to all drivers.
func buildAsset(key, secureURL string, size int64, data []byte, opts UploadOptions) (*Asset, map[string]string) {
	a := &Asset{
		PublicID:     key,
		SecureURL:    secureURL,
		ResourceType: resourceCategory(opts.ContentType),
		Format:       formatOf(opts.Filename),
		ContentType:  opts.ContentType,
		Bytes:        size,
		Context:      map[string]string{},
	}
	for k, v := range opts.Context {
		a.Context[k] = v
	}

	meta := encodeMetadata(opts.Context)
	meta[metaResourceType] = a.ResourceType
	meta[metaFormat] = a.Format

	if a.ResourceType == ResourceImage {
		if w, h, ok := imageSize(data); ok {
			a.Width, a.Height = &w, &h
			meta[metaWidth] = strconv.Itoa(w)
			meta[metaHeight] = strconv.Itoa(h)
		}
	}
	return a, meta
}

// encodeMetadata escapes values so they survive as ASCII object headers.
func encodeMetadata(ctx map[string]string) map[string]string {
	meta := make(map[string]string, len(ctx)+4)
	for k, v := range ctx {
		meta[strings.ToLower(k)] = url.QueryEscape(v)
	}
	return meta
}

// applyMetadata fills a from metadata read back from the provider.
// Header keys come back in varying case depending on the driver.
func applyMetadata(a *Asset, meta map[string]string) {
	if a.Context == nil {
		a.Context = map[string]string{}
	}
	for k, v := range meta {
		key := strings.ToLower(k)
		switch key {
		case metaResourceType:
			a.ResourceType = v
		case metaFormat:
			a.Format = v
		case metaWidth:
			if n, err := strconv.Atoi(v); err == nil {
				a.Width = &n
			}
		case metaHeight:
			if n, err := strconv.Atoi(v); err == nil {
				a.Height = &n
			}
		default:
			if s, err := url.QueryUnescape(v); err == nil {
				v = s
			}
			a.Context[key] = v
		}
	}
	if a.ResourceType == "" {
		a.ResourceType = resourceCategory(a.ContentType)
	}
	if a.Format == "" {
		a.Format = formatOf(a.PublicID)
	}
}
