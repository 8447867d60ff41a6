package world

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseSeed decodes a YAML world definition. Unknown fields are rejected so
// typos in hand-written seed files surface early.
func ParseSeed(data []byte) (*Atlas, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var a Atlas
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode world seed: %w", err)
	}
	return &a, nil
}

// LoadSeed reads and decodes a YAML world definition from disk.
func LoadSeed(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world seed: %w", err)
	}
	return ParseSeed(data)
}
