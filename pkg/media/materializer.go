package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
)

// TimestampLayout is the timestamp part of generated filenames.
const TimestampLayout = "20060102-150405"

// Fetcher downloads a URL payload. *minimax.Client implements it.
type Fetcher interface {
	Download(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

// Materializer writes payloads into an output directory.
type Materializer struct {
	// Store is the output directory.
	Store *storage.Local

	// Mirror, when set, receives a copy of every file under the same
	// name. A mirror failure fails the call.
	Mirror storage.FileStore

	// Fetcher resolves URL payloads.
	Fetcher Fetcher

	Now    func() time.Time
	Logger *slog.Logger
}

// Options controls naming of a materialized file.
type Options struct {
	// Prefix is sanitized; Fallback is used when nothing survives.
	Prefix   string
	Fallback string

	// Ext forces the extension. When empty the extension is sniffed from
	// the content, and DefaultExt replaces an unrecognized "bin".
	Ext        string
	DefaultExt string

	// At is the timestamp used in the name; zero means now. Callers that
	// write related files set it so the names share a timestamp.
	At time.Time
}

// File describes a materialized file.
type File struct {
	// Path is absolute.
	Path string
	// Name is relative to the output directory.
	Name string
	Ext  string
	Size int64
	// MirrorURL is set when a mirror that can address files received a copy.
	MirrorURL string
}

// Materialize writes p to a new file and returns its location.
func (m *Materializer) Materialize(ctx context.Context, p Payload, opts Options) (*File, error) {
	var (
		src    io.Reader
		source string
	)
	switch p.Encoding {
	case EncodingURL:
		if m.Fetcher == nil {
			return nil, errors.New("media: no fetcher for url payload")
		}
		rawURL := strings.TrimSpace(p.Data)
		if rawURL == "" {
			return nil, &minimax.DecodeError{Encoding: "url", Err: errEmpty}
		}
		body, _, err := m.Fetcher.Download(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		src = &downloadReader{r: body, url: rawURL}
		source = rawURL
	default:
		data, err := p.Decode()
		if err != nil {
			return nil, err
		}
		src = bytes.NewReader(data)
		source = string(p.Encoding)
	}
	return m.write(ctx, src, source, opts)
}

// MaterializeBytes writes raw bytes to a new file.
func (m *Materializer) MaterializeBytes(ctx context.Context, data []byte, opts Options) (*File, error) {
	if len(data) == 0 {
		return nil, &minimax.DecodeError{Encoding: "raw", Err: errEmpty}
	}
	return m.write(ctx, bytes.NewReader(data), "raw", opts)
}

func (m *Materializer) write(ctx context.Context, src io.Reader, source string, opts Options) (*File, error) {
	if m.Store == nil {
		return nil, errors.New("media: no output store")
	}

	br := bufio.NewReader(src)
	ext := opts.Ext
	if ext == "" {
		// Peek returns what is available on a short read.
		head, _ := br.Peek(SniffLen)
		ext = DetectFormat(head)
		if ext == "bin" && opts.DefaultExt != "" {
			ext = opts.DefaultExt
		}
	}
	ext = strings.TrimPrefix(ext, ".")

	at := opts.At
	if at.IsZero() {
		at = m.now()
	}
	name := fmt.Sprintf("%s_%s.%s", SanitizePrefix(opts.Prefix, opts.Fallback), at.Format(TimestampLayout), ext)

	w, err := m.Store.Write(ctx, name)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(w, br)
	if err == nil && n == 0 {
		err = &minimax.DecodeError{Encoding: source, Err: errEmpty}
	}
	if err != nil {
		if abortErr := w.Abort(); abortErr != nil {
			m.logger().Warn("discard partial file", "name", name, "error", abortErr)
		}
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("media: save %s: %w", name, err)
	}

	f := &File{Path: m.Store.Abs(name), Name: name, Ext: ext, Size: n}
	if m.Mirror != nil {
		if err := m.mirror(ctx, name); err != nil {
			return nil, err
		}
		if u, ok := m.Mirror.(interface{ URL(string) string }); ok {
			f.MirrorURL = u.URL(name)
		}
	}

	m.logger().Info("saved media", "path", f.Path, "ext", ext, "bytes", n, "source", logSource(source))
	return f, nil
}

func (m *Materializer) mirror(ctx context.Context, name string) error {
	r, err := m.Store.Read(ctx, name)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := m.Mirror.Write(ctx, name)
	if err != nil {
		return fmt.Errorf("media: mirror %s: %w", name, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Abort()
		return fmt.Errorf("media: mirror %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("media: mirror %s: %w", name, err)
	}
	return nil
}

func (m *Materializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// downloadReader reports body read failures as transport errors.
type downloadReader struct {
	r   io.Reader
	url string
}

func (d *downloadReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		err = &minimax.TransportError{Method: "GET", Endpoint: d.url, Err: err}
	}
	return n, err
}

// logSource strips the query string of signed URLs.
func logSource(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}

// SanitizePrefix keeps letters, digits, '-' and '_' and drops every other
// character. fallback is returned when nothing is left.
func SanitizePrefix(prefix, fallback string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, prefix)
	if s == "" {
		return fallback
	}
	return s
}

// ExtFromURL returns the extension of the URL path when it is one of
// allowed, and def otherwise.
func ExtFromURL(rawURL string, allowed []string, def string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return def
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	for _, a := range allowed {
		if ext == a {
			return ext
		}
	}
	return def
}
