package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResourceCategory(t *testing.T) {
	assert.Equal(t, ResourceImage, resourceCategory("image/png"))
	assert.Equal(t, ResourceVideo, resourceCategory("video/webm"))
	assert.Equal(t, ResourceRaw, resourceCategory("audio/mpeg"))
	assert.Equal(t, ResourceRaw, resourceCategory(""))
}

func TestBuildAsset_ImageDimensions(t *testing.T) {
	data := pngBytes(t, 3, 2)
	a, meta := buildAsset("uploads/x.png", "https://cdn/x.png", int64(len(data)), data, UploadOptions{
		Filename:    "x.png",
		ContentType: "image/png",
		Context:     map[string]string{"filename": "x.png", "uploader": "web"},
	})

	require.NotNil(t, a.Width)
	require.NotNil(t, a.Height)
	assert.Equal(t, 3, *a.Width)
	assert.Equal(t, 2, *a.Height)
	assert.Equal(t, "png", a.Format)
	assert.Equal(t, ResourceImage, a.ResourceType)
	assert.Equal(t, "3", meta["width"])
	assert.Equal(t, "web", meta["uploader"])
}

func TestBuildAsset_UndecodableImage(t *testing.T) {
	a, meta := buildAsset("k.webp", "u", 4, []byte("RIFF"), UploadOptions{Filename: "k.webp", ContentType: "image/webp"})
	assert.Nil(t, a.Width)
	assert.Nil(t, a.Height)
	assert.NotContains(t, meta, "width")
}

func TestMetadata_RoundTrip(t *testing.T) {
	meta := encodeMetadata(map[string]string{"Filename": "résumé final.pdf"})
	meta[metaFormat] = "pdf"
	meta[metaResourceType] = ResourceRaw

	// drivers hand metadata back with canonicalised keys
	back := map[string]string{}
	for k, v := range meta {
		back[textproto.CanonicalMIMEHeaderKey(k)] = v
	}

	a := &Asset{PublicID: "uploads/file_1_abcdef012345.pdf", ContentType: "application/pdf"}
	applyMetadata(a, back)

	assert.Equal(t, "résumé final.pdf", a.Context["filename"])
	assert.Equal(t, "pdf", a.Format)
	assert.Equal(t, ResourceRaw, a.ResourceType)
}

func TestApplyMetadata_Fallbacks(t *testing.T) {
	a := &Asset{PublicID: "uploads/file_1_abcdef012345.mp4", ContentType: "video/mp4"}
	applyMetadata(a, nil)
	assert.Equal(t, ResourceVideo, a.ResourceType)
	assert.Equal(t, "mp4", a.Format)
}
