package nodes

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the node set.
type Registry struct {
	nodes  []*Node
	byName map[string]*Node
}

var constructors = []func() (*Node, error){
	textToSpeechNode,
	voiceCloningNode,
	voiceDesignNode,
	loadAudioNode,
	videoGenerationNode,
	checkVideoStatusNode,
	waitVideoNode,
	downloadVideoNode,
	musicGenerationNode,
}

// NewRegistry builds every node.
func NewRegistry() (*Registry, error) {
	r := &Registry{byName: make(map[string]*Node, len(constructors))}
	for _, newNode := range constructors {
		n, err := newNode()
		if err != nil {
			return nil, err
		}
		if _, dup := r.byName[n.Name]; dup {
			return nil, fmt.Errorf("duplicate node %s", n.Name)
		}
		r.nodes = append(r.nodes, n)
		r.byName[n.Name] = n
	}
	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the shared registry. It panics if a node definition is
// invalid, which is a programming error.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = NewRegistry()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultReg
}

// All returns the nodes in registration order.
func (r *Registry) All() []*Node {
	return r.nodes
}

// Lookup finds a node by full name or by slug.
func (r *Registry) Lookup(name string) (*Node, bool) {
	if n, ok := r.byName[name]; ok {
		return n, true
	}
	n, ok := r.byName[Prefix+strings.TrimPrefix(name, "/")]
	return n, ok
}

// DisplayNames maps node names to display names.
func (r *Registry) DisplayNames() map[string]string {
	m := make(map[string]string, len(r.nodes))
	for _, n := range r.nodes {
		m[n.Name] = n.DisplayName
	}
	return m
}
