package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/kv"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/nodes"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

// Runtime is a node Env opened from a context. Close it to release the
// task journal.
type Runtime struct {
	Env     *nodes.Env
	Context *Context

	journal kv.Store
}

// OpenRuntime prepares the output, input and journal directories of c
// and builds an Env on them. With ephemeral set, the journal is kept in
// memory and discarded on Close.
func OpenRuntime(c *Context, paths *Paths, logger *slog.Logger, ephemeral bool) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out, err := storage.NewLocal(paths.Resolve(c.OutputDir, paths.OutputDir()))
	if err != nil {
		return nil, fmt.Errorf("open output dir: %w", err)
	}
	in, err := storage.NewLocal(paths.Resolve(c.InputDir, paths.InputDir()))
	if err != nil {
		return nil, fmt.Errorf("open input dir: %w", err)
	}

	m := &media.Materializer{Store: out, Logger: logger}
	if c.S3.Enabled() {
		mirror, err := storage.NewS3FromConfig(*c.S3)
		if err != nil {
			return nil, err
		}
		m.Mirror = mirror
	}

	var store kv.Store
	if ephemeral {
		store = kv.NewMemory(nil)
	} else {
		dir := paths.Resolve(c.JournalDir, paths.JournalDir())
		store, err = kv.NewBadger(kv.BadgerOptions{Dir: dir, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open task journal: %w", err)
		}
	}

	apiKey, groupID := c.Credentials()
	return &Runtime{
		Env: &nodes.Env{
			APIKey:        apiKey,
			GroupID:       groupID,
			ClientOptions: c.ClientOptions(),
			Output:        m,
			Input:         in,
			Journal:       taskstore.New(store),
			Logger:        logger,
		},
		Context: c,
		journal: store,
	}, nil
}

// Close releases the journal.
func (r *Runtime) Close() error {
	return r.journal.Close()
}

// Defaults returns the parameters the context supplies for n.
func (r *Runtime) Defaults(n *nodes.Node) map[string]any {
	d := map[string]any{}
	switch n.Slug() {
	case "text-to-speech":
		if r.Context.DefaultVoice != "" {
			d["voice_id"] = r.Context.DefaultVoice
		}
	case "wait-video":
		if r.Context.PollInterval > 0 {
			d["poll_interval"] = r.Context.PollInterval
		}
		if r.Context.MaxWait > 0 {
			d["max_wait"] = r.Context.MaxWait
		}
	}
	return d
}

// Args layers context defaults, a request file and key=value overrides,
// later layers winning, into a node's JSON parameters.
func (r *Runtime) Args(n *nodes.Node, file map[string]any, sets []string) (json.RawMessage, error) {
	args := r.Defaults(n)
	for k, v := range file {
		args[k] = v
	}
	for _, s := range sets {
		k, v, err := ParseArg(s)
		if err != nil {
			return nil, err
		}
		if _, isStr := v.(string); !isStr && stringParam(n, k) {
			_, v, _ = strings.Cut(s, "=")
		}
		args[k] = v
	}
	return json.Marshal(args)
}

// stringParam reports whether n declares k as a string, so that
// task_id=106916112212032 stays a string.
func stringParam(n *nodes.Node, k string) bool {
	if n.Input == nil {
		return false
	}
	prop, ok := n.Input.Properties[k]
	return ok && prop.Type == "string"
}

// Run runs a node and wraps its result for Output.
func (r *Runtime) Run(ctx context.Context, n *nodes.Node, args json.RawMessage) (NodeOutput, error) {
	res, err := n.Run(ctx, r.Env, args)
	if err != nil {
		return NodeOutput{}, err
	}
	return NewNodeOutput(res), nil
}

// NodeOutput is the printable form of a node result.
type NodeOutput struct {
	Node    string            `json:"node" yaml:"node"`
	Outputs map[string]string `json:"outputs" yaml:"outputs"`

	order []string
}

// NewNodeOutput converts res.
func NewNodeOutput(res *nodes.Result) NodeOutput {
	return NodeOutput{Node: res.Node, Outputs: res.Map(), order: res.Names}
}

// Merge appends the outputs of a follow-up run, as in generate, wait and
// download chained together. Later values win; the node is next's.
func (o NodeOutput) Merge(next NodeOutput) NodeOutput {
	merged := NodeOutput{
		Node:    next.Node,
		Outputs: make(map[string]string, len(o.Outputs)+len(next.Outputs)),
		order:   slices.Clone(o.order),
	}
	maps.Copy(merged.Outputs, o.Outputs)
	maps.Copy(merged.Outputs, next.Outputs)
	for _, name := range next.order {
		if !slices.Contains(merged.order, name) {
			merged.order = append(merged.order, name)
		}
	}
	return merged
}

// Panel implements Paneler.
func (o NodeOutput) Panel() Panel {
	p := Panel{Title: o.Node, MaxWidth: 120}
	for _, name := range o.order {
		p.Rows = append(p.Rows, Row{name, o.Outputs[name]})
	}
	if s, ok := o.Outputs["status"]; ok {
		p.Status = s
	}
	return p
}

// ErrorPanel renders a failed run with the error kind as its status.
func ErrorPanel(node string, err error) Panel {
	return Panel{
		Title:    node,
		Status:   minimax.KindOf(err).String(),
		Rows:     []Row{{"error", err.Error()}},
		MaxWidth: 120,
	}
}
