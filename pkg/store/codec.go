package store

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec defines how a snapshot is turned into slot text and back.
type Codec interface {
	// Name identifies the codec in configuration ("json", "yaml").
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultCodecs returns the standard set of codecs keyed by name.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		"json": JSONCodec{},
		"yaml": YAMLCodec{},
	}
}

// CodecByName resolves a codec from its configuration name.
// An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	if name == "" {
		return JSONCodec{}, nil
	}
	c, ok := DefaultCodecs()[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", name)
	}
	return c, nil
}

// --- JSON Codec ---

// JSONCodec stores snapshots as compact JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// --- YAML Codec ---

// YAMLCodec stores snapshots as YAML documents.
// Types must carry yaml tags for field names to match their JSON form.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAMLCodec) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}
