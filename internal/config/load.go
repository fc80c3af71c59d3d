package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"gopkg.in/yaml.v2"
)

// Load reads a JSON or YAML file (chosen by extension) over the defaults,
// then normalizes and validates the result.
func Load(path string) (Config, error) {
	raw, errGo := os.ReadFile(path)
	if errGo != nil {
		return Config{}, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	cfg, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes raw config bytes. ext selects the format: ".yaml"/".yml"
// for YAML, anything else for JSON.
func Parse(raw []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse json: %w", err)
		}
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as indented JSON, or YAML for .yaml/.yml paths.
func Save(path string, cfg Config) error {
	var (
		b     []byte
		errGo error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, errGo = yaml.Marshal(cfg)
	default:
		b, errGo = json.MarshalIndent(cfg, "", "  ")
	}
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = os.WriteFile(path, b, 0o644); errGo != nil {
		return errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
