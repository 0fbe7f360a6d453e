// Package uploadform is the client side of the upload flow: it holds the
// selected file, validates it before sending, reports progress while the
// multipart request is streamed and keeps the last result for sharing.
package uploadform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fileupload/service/internal/upload"
	"github.com/fileupload/service/internal/validation"
)

var (
	ErrNoFile   = errors.New("no file selected")
	ErrBusy     = errors.New("upload in progress")
	ErrNoResult = errors.New("nothing uploaded yet")
)

const genericFailure = "Upload failed"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// State is the form's position in the upload flow.
type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file-selected"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ValidationError lists why a selected file was rejected.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid file"
	}
	return e.Errors[0]
}

// UploadError is a failed submission. Message is the best human-readable
// reason the server gave.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string { return e.Message }

// Option configures a Form.
type Option func(*Form)

// WithHTTPClient sets the client used for submissions.
func WithHTTPClient(c *http.Client) Option { return func(f *Form) { f.client = c } }

// WithMaxSize overrides the client-side size limit.
func WithMaxSize(n int64) Option { return func(f *Form) { f.maxSize = n } }

// WithNotifier sets where user-facing messages go.
func WithNotifier(n Notifier) Option { return func(f *Form) { f.notifier = n } }

// WithClipboard enables CopyLink.
func WithClipboard(c Clipboard) Option { return func(f *Form) { f.clipboard = c } }

// WithProgress registers a callback receiving upload progress from 0 to 100.
func WithProgress(fn func(percent int)) Option { return func(f *Form) { f.onProgress = fn } }

// WithPreviewDir sets where image previews are written. Empty means os.TempDir().
func WithPreviewDir(dir string) Option { return func(f *Form) { f.previewDir = dir } }

// Form is a single upload form. It is safe for concurrent use, but only one
// submission may be in flight at a time.
type Form struct {
	endpoint   string
	client     *http.Client
	maxSize    int64
	notifier   Notifier
	clipboard  Clipboard
	onProgress func(int)
	previewDir string

	progressMu sync.Mutex

	mu       sync.Mutex
	state    State
	file     *File
	preview  string
	options  Options
	result   *upload.Result
	progress int
	busy     bool
}

// New creates a Form posting to baseURL + "/api/upload".
func New(baseURL string, opts ...Option) *Form {
	f := &Form{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/upload",
		client:   http.DefaultClient,
		maxSize:  validation.DefaultMaxSize,
		notifier: nopNotifier{},
		options:  DefaultOptions(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Select replaces the current selection with file. An invalid file is
// discarded and its first validation error returned.
func (f *Form) Select(ctx context.Context, file File) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	f.revokePreviewLocked()
	f.file = nil

	res := validation.ValidateFile(validation.File{Name: file.Name, Size: file.Size, Type: file.Type}, f.maxSize)
	if !res.IsValid {
		f.state = StateIdle
		f.mu.Unlock()
		err := &ValidationError{Errors: res.Errors}
		f.notifier.Error(ctx, err.Error())
		return err
	}

	f.file = &file
	f.result = nil
	f.progress = 0
	f.state = StateFileSelected
	if validation.IsImage(file.Type) {
		// A preview is best effort; the selection stands without one.
		f.preview, _ = writePreview(f.previewDir, file)
	}
	f.mu.Unlock()
	return nil
}

// SetOptions replaces the sharing options sent with the next submission.
func (f *Form) SetOptions(o Options) error {
	if err := o.validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options = o
	return nil
}

// Submit uploads the selected file. On success the selection is cleared and
// the result kept; on failure the selection is kept for a retry.
func (f *Form) Submit(ctx context.Context) (*upload.Result, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	if f.file == nil {
		f.mu.Unlock()
		return nil, ErrNoFile
	}
	file, opts := *f.file, f.options
	f.busy = true
	f.state = StateUploading
	f.progress = 0
	f.mu.Unlock()

	f.report(0)
	res, err := f.send(ctx, file, opts)

	f.mu.Lock()
	f.busy = false
	if err != nil {
		f.state = StateFailed
		f.mu.Unlock()
		f.notifier.Error(ctx, err.Error())
		return nil, err
	}
	f.result = res
	f.file = nil
	f.revokePreviewLocked()
	f.state = StateSucceeded
	f.mu.Unlock()

	f.report(100)
	f.notifier.Success(ctx, "File uploaded successfully")
	return res, nil
}

// Reset clears the selection, result and progress and restores default options.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	f.revokePreviewLocked()
	f.file = nil
	f.result = nil
	f.progress = 0
	f.options = DefaultOptions()
	f.state = StateIdle
	return nil
}

// CopyLink copies the last result's URL to the clipboard.
func (f *Form) CopyLink(ctx context.Context) error {
	f.mu.Lock()
	res := f.result
	f.mu.Unlock()

	if res == nil {
		return ErrNoResult
	}
	if f.clipboard == nil {
		return errors.New("no clipboard available")
	}
	if err := f.clipboard.WriteText(ctx, res.URL); err != nil {
		f.notifier.Error(ctx, "Could not copy link")
		return fmt.Errorf("copy link: %w", err)
	}
	f.notifier.Success(ctx, "Link copied to clipboard")
	return nil
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Progress() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

func (f *Form) Options() Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options
}

// Selected returns the current selection, if any.
func (f *Form) Selected() (File, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return File{}, false
	}
	return *f.file, true
}

// Result returns the last successful upload, or nil.
func (f *Form) Result() *upload.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Preview returns the path of the local image preview, or "".
func (f *Form) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

func (f *Form) send(ctx context.Context, file File, opts Options) (*upload.Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(f.writeBody(mw, file, opts))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &UploadError{Message: genericFailure + ": " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UploadError{Status: resp.StatusCode, Message: failureMessage(resp.Body)}
	}

	var res upload.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, &UploadError{Status: resp.StatusCode, Message: genericFailure}
	}
	return &res, nil
}

func (f *Form) writeBody(mw *multipart.Writer, file File, opts Options) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	if file.Type != "" {
		hdr.Set("Content-Type", file.Type)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, &progressReader{r: rc, total: file.Size, report: f.report}); err != nil {
		return err
	}

	if !opts.Public && opts.Password != "" {
		if err := mw.WriteField("password", opts.Password); err != nil {
			return err
		}
	}
	if opts.Expires != "" && opts.Expires != ExpiryNever {
		if err := mw.WriteField("expires", string(opts.Expires)); err != nil {
			return err
		}
	}
	return mw.Close()
}

// report records percent and forwards it when it moves forward. Callbacks are
// serialized so observers see a non-decreasing sequence.
func (f *Form) report(percent int) {
	f.progressMu.Lock()
	defer f.progressMu.Unlock()

	f.mu.Lock()
	if percent < f.progress || (percent == f.progress && percent != 0) {
		f.mu.Unlock()
		return
	}
	f.progress = percent
	f.mu.Unlock()

	if f.onProgress != nil {
		f.onProgress(percent)
	}
}

func (f *Form) revokePreviewLocked() {
	if f.preview != "" {
		_ = os.Remove(f.preview)
		f.preview = ""
	}
}

// failureMessage prefers the server's message, then its error, then a generic one.
func failureMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return genericFailure
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	}
	return genericFailure
}

func writePreview(dir string, file File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(dir, "preview-*"+filepath.Ext(file.Name))
	if err != nil {
		return "", err
	}
	_, err = io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// progressReader reports how much of total has been read, holding back 100
// until the server has answered.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 && n > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			pct = 99
		}
		p.report(pct)
	}
	return n, err
}
