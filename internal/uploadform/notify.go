package uploadform

import (
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"

	"github.com/fileupload/service/internal/logging"
)

// writeAll is a test seam for clipboard.WriteAll.
var writeAll = clipboard.WriteAll

// Notifier receives user-facing messages from the form.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Clipboard stores text for the user to paste elsewhere.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// LogNotifier forwards messages to a structured logger.
type LogNotifier struct {
	Log logging.Logger
}

func (n LogNotifier) Success(ctx context.Context, msg string) { n.Log.Info(ctx, msg) }
func (n LogNotifier) Error(ctx context.Context, msg string)   { n.Log.Error(ctx, msg) }

// SystemClipboard writes to the desktop clipboard. On Linux it needs xclip,
// xsel or wl-copy; check ClipboardSupported first.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(_ context.Context, text string) error {
	if err := writeAll(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	return nil
}

// ClipboardSupported reports whether a system clipboard tool was found.
func ClipboardSupported() bool {
	return !clipboard.Unsupported
}

// WriterClipboard prints copied text to W, for terminals without clipboard access.
type WriterClipboard struct {
	W io.Writer
}

func (c WriterClipboard) WriteText(_ context.Context, text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context, string) {}
func (nopNotifier) Error(context.Context, string)   {}
