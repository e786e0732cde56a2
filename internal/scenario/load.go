package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lmdi-explainer/lmdi-go/internal/domain"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported scenario file extension %q", filepath.Ext(path))
}

// Parse decodes and validates a scenario.
func Parse(data []byte, format Format) (domain.Scenario, error) {
	s, err := decode(data, format)
	if err != nil {
		return domain.Scenario{}, err
	}
	if err := domain.ValidateScenario(s); err != nil {
		return domain.Scenario{}, err
	}
	return s, nil
}

// decode rejects unknown keys so typos in hand-written files surface early.
func decode(data []byte, format Format) (domain.Scenario, error) {
	var s domain.Scenario
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return domain.Scenario{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return domain.Scenario{}, fmt.Errorf("parse json: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return domain.Scenario{}, fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return domain.Scenario{}, fmt.Errorf("parse toml: unknown key %q", undecoded[0].String())
		}
	default:
		return domain.Scenario{}, fmt.Errorf("unknown format %q", format)
	}
	return s, nil
}

// LoadFile reads one scenario file. A missing name defaults to the file
// name without its extension.
func LoadFile(path string) (domain.Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Scenario{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	s, err := decode(data, format)
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := domain.ValidateScenario(s); err != nil {
		return domain.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads every .yaml, .yml, .json and .toml file in dir, sorted by
// file name. Other files and subdirectories are ignored.
func LoadDir(dir string) ([]domain.Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFromPath(e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]domain.Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadDir adds every scenario in dir to the catalog and returns how many
// were added.
func (c *Catalog) LoadDir(dir string) (int, error) {
	scenarios, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return 0, err
		}
	}
	return len(scenarios), nil
}
