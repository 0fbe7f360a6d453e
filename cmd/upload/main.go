// Command upload sends a file to the upload API and prints the shareable link.
//
//	upload [-server URL] [-private] [-password PW | -ask-password | -generate-password] [-expires 7d] FILE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/uploadform"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// systemClipboard is a test seam returning the desktop clipboard, or false
// when none is available.
var systemClipboard = func() (uploadform.Clipboard, bool) {
	if !uploadform.ClipboardSupported() {
		return nil, false
	}
	return uploadform.SystemClipboard{}, true
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("UPLOAD_SERVER", "http://localhost:8080"), "upload API base URL")
	private := fs.Bool("private", false, "mark the link as private")
	password := fs.String("password", "", "link password (implies -private)")
	askPassword := fs.Bool("ask-password", false, "prompt for the link password")
	genPassword := fs.Bool("generate-password", false, "generate a random link password")
	expires := fs.String("expires", string(uploadform.ExpiryNever), "link lifetime: never, 1h, 1d, 7d, 30d")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall upload timeout")
	verbose := fs.Bool("v", false, "log progress details")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: upload [flags] FILE")
		fs.PrintDefaults()
		return 2
	}

	pw, err := resolvePassword(*password, *askPassword, *genPassword, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "password:", err)
		return 1
	}
	if pw != "" {
		*private = true
	}

	var notifier uploadform.Notifier = uploadform.LogNotifier{Log: logging.Discard()}
	if *verbose {
		notifier = uploadform.LogNotifier{Log: logging.New(stderr, false)}
	}

	var clip uploadform.Clipboard = uploadform.WriterClipboard{W: stdout}
	sysClip, desktop := systemClipboard()
	if desktop {
		clip = sysClip
	}

	lastPct := -1
	form := uploadform.New(*server,
		uploadform.WithHTTPClient(&http.Client{Timeout: *timeout}),
		uploadform.WithNotifier(notifier),
		uploadform.WithClipboard(clip),
		uploadform.WithProgress(func(p int) {
			if p != lastPct {
				lastPct = p
				fmt.Fprintf(stderr, "\ruploading... %3d%%", p)
			}
		}),
	)

	if err := form.SetOptions(uploadform.Options{
		Public:   !*private,
		Password: pw,
		Expires:  uploadform.Expiry(*expires),
	}); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	file, err := uploadform.FileFromPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := form.Select(ctx, file); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", file.Name, err)
		return 1
	}

	res, err := form.Submit(ctx)
	fmt.Fprintln(stderr)
	if err != nil {
		fmt.Fprintln(stderr, "upload failed:", err)
		return 1
	}

	fmt.Fprintf(stderr, "%s (%s, %s) uploaded\n", res.Filename, res.FileType, res.FormattedSize)
	if pw != "" && *genPassword {
		fmt.Fprintln(stderr, "password:", pw)
	}
	fmt.Fprintln(stderr, "delete:", res.DeleteURL)
	if err := form.CopyLink(ctx); err != nil {
		if !desktop {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stderr, "warning:", err)
	} else if desktop {
		fmt.Fprintln(stderr, "link copied to clipboard")
	}
	// WriterClipboard has already printed the link.
	if desktop {
		fmt.Fprintln(stdout, res.URL)
	}
	return 0
}

func resolvePassword(flagValue string, ask, generate bool, w io.Writer) (string, error) {
	switch {
	case generate:
		return uploadform.GeneratePassword(0)
	case ask:
		fmt.Fprint(w, "Enter password: ")
		b, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		pw := strings.TrimSpace(string(b))
		if pw == "" {
			return "", errors.New("empty password")
		}
		return pw, nil
	}
	return flagValue, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
