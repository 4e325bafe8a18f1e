package nodes

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

// Env is what a node run needs from its host. A zero Env is not usable:
// Output must be set for nodes that write files.
type Env struct {
	// APIKey and GroupID are used when a node's parameters leave them empty.
	APIKey  string
	GroupID string

	// ClientOptions configure every client a node creates (base URL,
	// timeout, retries, HTTP client).
	ClientOptions []minimax.Option

	// Output receives generated media.
	Output *media.Materializer

	// Input is where relative input paths (audio samples, frame images)
	// are resolved. Nil means the working directory.
	Input *storage.Local

	// Journal records video tasks when set.
	Journal *taskstore.Journal

	// Clock drives poll sleeps and generated ids.
	Clock  minimax.Clock
	Logger *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Env) clock() minimax.Clock {
	if e.Clock != nil {
		return e.Clock
	}
	return minimax.SystemClock
}

func (e *Env) now() time.Time {
	return e.clock().Now()
}

// client returns a client for one node run.
func (e *Env) client(apiKey, groupID string) (*minimax.Client, error) {
	key := cmp.Or(apiKey, e.APIKey)
	if key == "" {
		return nil, &minimax.ValidationError{Field: "api_key", Reason: "is required"}
	}
	return e.newClient(key, cmp.Or(groupID, e.GroupID)), nil
}

// downloader returns a client for fetching public asset URLs, which need
// no credentials.
func (e *Env) downloader() *minimax.Client {
	return e.newClient(e.APIKey, "")
}

func (e *Env) newClient(key, groupID string) *minimax.Client {
	opts := []minimax.Option{minimax.WithLogger(e.logger())}
	opts = append(opts, slices.Clone(e.ClientOptions)...)
	if groupID != "" {
		opts = append(opts, minimax.WithGroupID(groupID))
	}
	return minimax.NewClient(key, opts...)
}

var errNoOutput = errors.New("nodes: no output directory configured")

// materializer returns the output materializer fetching URLs through f.
func (e *Env) materializer(f media.Fetcher) (*media.Materializer, error) {
	if e.Output == nil {
		return nil, errNoOutput
	}
	m := *e.Output
	m.Fetcher = f
	if m.Logger == nil {
		m.Logger = e.logger()
	}
	if m.Now == nil {
		m.Now = e.now
	}
	return &m, nil
}

// inputPath resolves a caller-supplied input path.
func (e *Env) inputPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	if e.Input != nil {
		return e.Input.Abs(p), nil
	}
	return filepath.Abs(p)
}

// record journals a task observation. Journal failures are logged and do
// not fail the node.
func (e *Env) record(ctx context.Context, rec taskstore.Record) {
	if e.Journal == nil {
		return
	}
	if _, err := e.Journal.Put(ctx, rec); err != nil {
		e.logger().Warn("journal task", "task_id", rec.ID, "status", rec.Status, "err", err)
	}
}
