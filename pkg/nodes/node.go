// Package nodes implements the MiniMax workflow nodes.
//
// Each Node takes a JSON object of parameters, validated against a schema
// derived from the node's input struct, and returns a fixed tuple of string
// outputs (file paths, URLs, identifiers, status strings). Nodes run
// synchronously: one API call, or one poll loop, to completion.
package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
)

// Prefix is the namespace of every node name.
const Prefix = "JM-MiniMax-API/"

// Categories.
const (
	CategorySpeech = Prefix + "Speech"
	CategoryVideo  = Prefix + "Video"
	CategoryMusic  = Prefix + "Music"
)

// Node is a single workflow node.
type Node struct {
	Name        string
	DisplayName string
	Category    string
	Description string

	// Outputs names the values returned by Run, in order.
	Outputs []string

	// Input is the JSON schema of the parameters.
	Input *jsonschema.Schema

	resolved *jsonschema.Resolved
	run      func(ctx context.Context, env *Env, args []byte) ([]string, error)
}

// Slug is the name without the namespace.
func (n *Node) Slug() string {
	return strings.TrimPrefix(n.Name, Prefix)
}

// Result is the output tuple of a node run.
type Result struct {
	Node   string   `json:"node"`
	Names  []string `json:"-"`
	Values []string `json:"-"`
}

// Get returns the named output, or "" when there is none.
func (r *Result) Get(name string) string {
	if i := slices.Index(r.Names, name); i >= 0 {
		return r.Values[i]
	}
	return ""
}

// Map returns the outputs keyed by name.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.Names))
	for i, name := range r.Names {
		m[name] = r.Values[i]
	}
	return m
}

// MarshalJSON encodes the outputs as an object.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Node    string            `json:"node"`
		Outputs map[string]string `json:"outputs"`
	}{r.Node, r.Map()})
}

// Run validates args and runs the node. Failures are logged with the node
// name before being returned.
func (n *Node) Run(ctx context.Context, env *Env, args json.RawMessage) (*Result, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	values, err := n.invoke(ctx, env, args)
	if err != nil {
		env.logger().Error("node failed",
			"node", n.Name,
			"kind", minimax.KindOf(err).String(),
			"err", err)
		return nil, err
	}
	return &Result{Node: n.Name, Names: n.Outputs, Values: values}, nil
}

func (n *Node) invoke(ctx context.Context, env *Env, args []byte) ([]string, error) {
	var instance map[string]any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, &minimax.ValidationError{Reason: fmt.Sprintf("parameters must be a JSON object: %v", err)}
	}
	if instance == nil {
		instance = map[string]any{}
	}
	if err := n.resolved.Validate(instance); err != nil {
		return nil, &minimax.ValidationError{Reason: err.Error()}
	}
	return n.run(ctx, env, args)
}

// schemaOption adjusts a property of a node's input schema.
type schemaOption func(s *jsonschema.Schema) error

func property(s *jsonschema.Schema, name string) (*jsonschema.Schema, error) {
	p, ok := s.Properties[name]
	if !ok {
		return nil, fmt.Errorf("no property %q", name)
	}
	return p, nil
}

// between bounds a numeric property.
func between(name string, lo, hi float64) schemaOption {
	return func(s *jsonschema.Schema) error {
		p, err := property(s, name)
		if err != nil {
			return err
		}
		p.Minimum, p.Maximum = &lo, &hi
		return nil
	}
}

// oneOf restricts a property to a set of values.
func oneOf[T any](name string, values ...T) schemaOption {
	return func(s *jsonschema.Schema) error {
		p, err := property(s, name)
		if err != nil {
			return err
		}
		p.Enum = make([]any, len(values))
		for i, v := range values {
			p.Enum[i] = v
		}
		return nil
	}
}

// required lists the properties a caller must supply.
func required(names ...string) schemaOption {
	return func(s *jsonschema.Schema) error {
		for _, name := range names {
			if _, err := property(s, name); err != nil {
				return err
			}
		}
		s.Required = names
		return nil
	}
}

// define builds a node whose parameters decode into In, starting from
// defaults. Unset parameters keep their default value.
func define[In any](name, display, category, desc string, outputs []string, defaults In,
	fn func(ctx context.Context, env *Env, in *In) ([]string, error), opts ...schemaOption) (*Node, error) {

	schema, err := jsonschema.For[In](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("node %s: schema: %w", name, err)
	}
	schema.Title = display
	schema.Description = desc
	schema.Required = nil
	for _, opt := range opts {
		if err := opt(schema); err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
	}
	if err := setDefaults(schema, defaults); err != nil {
		return nil, fmt.Errorf("node %s: defaults: %w", name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("node %s: resolve schema: %w", name, err)
	}

	return &Node{
		Name:        Prefix + name,
		DisplayName: display,
		Category:    category,
		Description: desc,
		Outputs:     outputs,
		Input:       schema,
		resolved:    resolved,
		run: func(ctx context.Context, env *Env, args []byte) ([]string, error) {
			in := defaults
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, &minimax.ValidationError{Reason: err.Error()}
			}
			out, err := fn(ctx, env, &in)
			if err != nil {
				return nil, err
			}
			if len(out) != len(outputs) {
				return nil, fmt.Errorf("node %s returned %d values, want %d", name, len(out), len(outputs))
			}
			return out, nil
		},
	}, nil
}

// setDefaults records the non-empty fields of defaults in the schema.
func setDefaults(s *jsonschema.Schema, defaults any) error {
	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for name, raw := range fields {
		p, ok := s.Properties[name]
		if !ok || string(raw) == `""` {
			continue
		}
		p.Default = raw
	}
	return nil
}
