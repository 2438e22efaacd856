package strategyconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a selector configuration file. Three document shapes are
// accepted: a plain list of entries, an object with a "selectors" key, or
// a single entry object. Files ending in .yaml/.yml are parsed as YAML,
// everything else as JSON.
func Load(path string) ([]Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector config: %w", err)
	}

	unmarshal := json.Unmarshal
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	selectors, err := parse(data, unmarshal)
	if err != nil {
		return nil, fmt.Errorf("parse selector config %s: %w", path, err)
	}
	if len(selectors) == 0 {
		return nil, fmt.Errorf("selector config %s defines no selectors", path)
	}

	for i, sel := range selectors {
		if sel.Strategy == "" {
			return nil, fmt.Errorf("selector config %s: entry %d is missing the class field", path, i)
		}
	}
	return selectors, nil
}

func parse(data []byte, unmarshal func([]byte, any) error) ([]Selector, error) {
	var list []Selector
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Selectors []Selector `json:"selectors" yaml:"selectors"`
	}
	if err := unmarshal(data, &wrapped); err == nil && wrapped.Selectors != nil {
		return wrapped.Selectors, nil
	}

	var single Selector
	if err := unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []Selector{single}, nil
}

// Hash returns the SHA-256 of the canonical JSON encoding of the entries.
// Used to tag persisted pick reports with the exact configuration that
// produced them.
func Hash(selectors []Selector) (string, error) {
	raw, err := json.Marshal(selectors)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
