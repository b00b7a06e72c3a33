package export

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = "yaml"

// Registry holds all available encoders.
type Registry struct {
	encoders []Encoder
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewYAMLEncoder())
	r.Register(NewMsgpackEncoder())
	return r
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new encoder to the registry.
func (r *Registry) Register(e Encoder) {
	r.encoders = append(r.encoders, e)
}

// Get returns an encoder by its name. An empty name selects DefaultFormat.
func (r *Registry) Get(name string) (Encoder, error) {
	if name == "" {
		name = DefaultFormat
	}
	name = strings.ToLower(name)
	for _, e := range r.encoders {
		if strings.ToLower(e.Name()) == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unknown output format: %s", name)
}

// ForPath picks the encoder whose extension matches path.
func (r *Registry) ForPath(path string) (Encoder, bool) {
	lower := strings.ToLower(path)
	for _, e := range r.encoders {
		if strings.HasSuffix(lower, e.Extension()) {
			return e, true
		}
	}
	return nil, false
}

// Names lists the registered formats.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.encoders))
	for _, e := range r.encoders {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
