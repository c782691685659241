package schema

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// PayloadField is the wire shape of a field in the engine exchange format and schema files.
type PayloadField struct {
	ID      string         `json:"id" yaml:"id,omitempty"`
	Name    string         `json:"name" yaml:"name"`
	Type    string         `json:"type" yaml:"type"`
	Options map[string]any `json:"options" yaml:"options,omitempty"`
}

// Payload is the engine exchange format: {fields: [...], rows: N}.
type Payload struct {
	Fields []PayloadField `json:"fields" yaml:"fields"`
	Rows   int            `json:"rows" yaml:"rows"`
}

// ToPayload converts a schema to its exchange form.
func ToPayload(s Schema) Payload {
	p := Payload{Fields: make([]PayloadField, len(s.Fields)), Rows: s.Rows}
	for i, f := range s.Fields {
		opts := f.Options
		if opts == nil {
			opts = NoOptions{}
		}
		p.Fields[i] = PayloadField{
			ID:      f.ID,
			Name:    f.Name,
			Type:    f.TypeID,
			Options: opts.Map(),
		}
	}
	return p
}

// FromPayload validates options and builds a Schema. Fields without an id get a fresh one.
func FromPayload(p Payload) (Schema, error) {
	s := Schema{Fields: make([]Field, len(p.Fields)), Rows: p.Rows}
	for i, pf := range p.Fields {
		opts, err := ParseOptions(pf.Type, pf.Options)
		if err != nil {
			return Schema{}, fmt.Errorf("field %d (%s): %w", i+1, pf.Name, err)
		}
		id := pf.ID
		if id == "" {
			id = NewID()
		}
		s.Fields[i] = Field{ID: id, Name: pf.Name, TypeID: pf.Type, Options: opts}
	}
	return s, nil
}

// DecodePayload parses a payload in "json" or "yaml" form.
func DecodePayload(data []byte, format string) (Payload, error) {
	var p Payload
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Payload{}, fmt.Errorf("schema: parse yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Payload{}, fmt.Errorf("schema: parse json: %w", err)
		}
	default:
		return Payload{}, fmt.Errorf("schema: unsupported format %q", format)
	}
	return p, nil
}

// LoadFile reads a YAML or JSON schema file, chosen by extension.
func LoadFile(fs afero.Fs, path string) (Schema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}

	p, err := DecodePayload(data, formatOf(path))
	if err != nil {
		return Schema{}, fmt.Errorf("%s: %w", path, err)
	}

	s, err := FromPayload(p)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: %s: %w", path, err)
	}
	return s, nil
}

// WriteFile stores a schema as YAML or JSON, chosen by extension.
func WriteFile(fs afero.Fs, path string, s Schema) error {
	p := ToPayload(s)

	var (
		data []byte
		err  error
	)
	if formatOf(path) == "json" {
		data, err = json.MarshalIndent(p, "", "  ")
	} else {
		data, err = yaml.Marshal(p)
	}
	if err != nil {
		return fmt.Errorf("schema: encode %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("schema: create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("schema: write %s: %w", path, err)
	}
	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
