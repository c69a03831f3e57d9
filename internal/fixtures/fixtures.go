// Package fixtures serves canned demo payloads by key.
package fixtures

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("fixture not found")

//go:embed default.yaml
var defaultFixtures []byte

// Provider returns the canned JSON response stored under a logical key.
type Provider interface {
	Fixture(ctx context.Context, key string) (json.RawMessage, error)
	Keys() []string
}

// YAMLProvider holds fixtures decoded from a YAML document whose top-level
// keys are fixture names.
type YAMLProvider struct {
	fixtures map[string]json.RawMessage
}

// Load reads fixtures from path, or the embedded defaults when path is empty.
func Load(path string) (*YAMLProvider, error) {
	data := defaultFixtures
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*YAMLProvider, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	p := &YAMLProvider{fixtures: make(map[string]json.RawMessage, len(doc))}
	for key, value := range doc {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", key, err)
		}
		p.fixtures[key] = raw
	}
	return p, nil
}

func (p *YAMLProvider) Fixture(ctx context.Context, key string) (json.RawMessage, error) {
	raw, ok := p.fixtures[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return raw, nil
}

func (p *YAMLProvider) Keys() []string {
	keys := make([]string, 0, len(p.fixtures))
	for k := range p.fixtures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
