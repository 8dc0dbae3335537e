// Package mimetypes maps content types to renderer backends.
package mimetypes

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
)

//go:embed mime_types.yaml
var defaultTable []byte

// Backend is one renderer implementation and the types it serves
type Backend struct {
	Name  string   `yaml:"name"`
	Label string   `yaml:"label"`
	Types []string `yaml:"types"`
}

type document struct {
	DefaultType string    `yaml:"default_type"`
	Backends    []Backend `yaml:"backends"`
}

// Table resolves content types to backend names
type Table struct {
	defaultType string
	exact       map[string]string
	families    map[string]string
	labels      map[string]string
}

// Default returns the built-in table
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("built-in mime table: %v", err))
	}
	return t
}

// Load reads a table from a YAML file
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mime table: %w", err)
	}
	return Parse(data)
}

// Parse builds a table from YAML
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse mime table: %w", err)
	}

	t := &Table{
		defaultType: Normalize(doc.DefaultType),
		exact:       make(map[string]string),
		families:    make(map[string]string),
		labels:      make(map[string]string),
	}
	if t.defaultType == "" {
		t.defaultType = "text/html"
	}

	for _, b := range doc.Backends {
		if b.Name == "" {
			return nil, fmt.Errorf("parse mime table: backend without a name")
		}
		t.labels[b.Name] = b.Label
		for _, typ := range b.Types {
			typ = Normalize(typ)
			if family, ok := strings.CutSuffix(typ, "/*"); ok {
				t.families[family] = b.Name
				continue
			}
			t.exact[typ] = b.Name
		}
	}
	return t, nil
}

// DefaultType is the content type assumed when none can be discovered
func (t *Table) DefaultType() string {
	return t.defaultType
}

// Label returns the human readable name of a backend
func (t *Table) Label(backend string) string {
	return t.labels[backend]
}

// Backend returns the backend that renders mimeType. Unknown types are
// resolved through their parent types before falling back to the
// top-level family.
func (t *Table) Backend(mimeType string) (string, bool) {
	m := Normalize(mimeType)
	if m == "" {
		return "", false
	}
	if b, ok := t.exact[m]; ok {
		return b, true
	}

	if node := mimetype.Lookup(m); node != nil {
		for p := node.Parent(); p != nil; p = p.Parent() {
			if b, ok := t.exact[Normalize(p.String())]; ok {
				return b, true
			}
		}
	}

	if family, _, ok := strings.Cut(m, "/"); ok {
		if b, ok := t.families[family]; ok {
			return b, true
		}
	}
	return "", false
}

// Normalize lower-cases a content type and strips its parameters
func Normalize(mimeType string) string {
	m, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(m))
}
