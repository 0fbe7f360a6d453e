package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// multipartOverhead is the allowance for multipart boundaries and the small
// text fields that travel with the file.
const multipartOverhead = 1 << 20

// maxFieldBytes caps the optional text fields.
const maxFieldBytes = 1024

var (
	errNoFile   = errors.New("no file uploaded")
	errTooLarge = errors.New("file exceeds upload limit")
)

// stagedFile is the request-scoped temporary copy of an upload.
type stagedFile struct {
	path     string
	name     string
	mimeType string
	size     int64
	removed  bool
}

// Remove deletes the temporary file. Calling it more than once is a no-op.
func (s *stagedFile) Remove() error {
	if s == nil || s.removed {
		return nil
	}
	s.removed = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staged file %q: %w", s.path, err)
	}
	return nil
}

// formFields holds the optional, unenforced upload options.
type formFields struct {
	password string
	expires  string
}

// receive reads the multipart body, staging the first "file" part in dir.
// On any error nothing is left on disk.
func receive(r *http.Request, dir string, maxSize int64) (*stagedFile, formFields, error) {
	var fields formFields

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fields, errNoFile
	}

	var staged *stagedFile
	fail := func(err error) (*stagedFile, formFields, error) {
		_ = staged.Remove()
		return nil, fields, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Errorf("read multipart: %w", err))
		}

		switch part.FormName() {
		case "file":
			if staged != nil || part.FileName() == "" {
				continue
			}
			staged, err = stage(part, dir, maxSize)
			if err != nil {
				return fail(err)
			}
		case "password":
			fields.password, err = readField(part)
		case "expires":
			fields.expires, err = readField(part)
		}
		if err != nil {
			return fail(fmt.Errorf("read field %q: %w", part.FormName(), err))
		}
	}

	if staged == nil {
		return nil, fields, errNoFile
	}
	return staged, fields, nil
}

// stage copies part into a new temporary file, keeping the original extension.
func stage(part *multipart.Part, dir string, maxSize int64) (*stagedFile, error) {
	name := part.FileName()
	ext := filepath.Ext(filepath.Base(name))
	if strings.ContainsAny(ext, `/\`) || len(ext) > 16 {
		ext = ""
	}

	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	s := &stagedFile{path: f.Name(), name: name, mimeType: declaredType(part.Header.Get("Content-Type"), ext)}

	n, err := io.Copy(f, io.LimitReader(part, maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxSize {
		err = errTooLarge
	}
	if err != nil {
		_ = s.Remove()
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	s.size = n
	return s, nil
}

// declaredType returns the part's media type without parameters, falling back
// to the extension's registered type.
func declaredType(header, ext string) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
		return header
	}
	if mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
		return mt
	}
	return "application/octet-stream"
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// isTooLarge reports whether err comes from the transport size cap.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, errTooLarge)
}
