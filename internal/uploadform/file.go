package uploadform

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/fileupload/service/internal/validation"
)

// File is a candidate upload selected by the user.
type File struct {
	Name string
	Type string
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

// FileFromPath describes the file at path. The type is taken from the extension.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Type: typeByName(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content. An empty typ is derived from name.
func FileFromBytes(name, typ string, data []byte) File {
	if typ == "" {
		typ = typeByName(name)
	}
	return File{
		Name: name,
		Type: typ,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func typeByName(name string) string {
	mt, _, err := mime.ParseMediaType(mime.TypeByExtension("." + validation.FileExtension(name)))
	if err != nil {
		return ""
	}
	return mt
}
