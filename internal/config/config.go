// Package config loads the batch render settings.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"transrender.dev/internal/render/raster"
)

//go:embed render.schema.json
var schemaText string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// ConfigurationError reports settings that make the whole run impossible.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "render config: " + e.Reason
	}
	return fmt.Sprintf("render config: %s: %s", e.Field, e.Reason)
}

type Config struct {
	Renderer      string   `yaml:"renderer"`
	Overwrite     bool     `yaml:"overwrite"`
	Workers       int      `yaml:"workers"`
	InputDir      string   `yaml:"input_dir"`
	CacheDir      string   `yaml:"cache_dir"`
	CacheCompress bool     `yaml:"cache_compress"`
	IndexDB       string   `yaml:"index_db"`
	EventLogDir   string   `yaml:"event_log_dir"`
	Fetch         string   `yaml:"fetch"`
	Targets       []Target `yaml:"targets"`
}

// Target is one output variant rendered for every input.
type Target struct {
	Folder string  `yaml:"folder"`
	Scale  float64 `yaml:"scale"`
	BPP    int     `yaml:"bpp"`
}

func Defaults() Config {
	return Config{
		Renderer: string(raster.Scan),
		InputDir: ".",
		CacheDir: "_cache",
		Targets:  []Target{{Folder: "1x", Scale: 1, BPP: 8}},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML document.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, &ConfigurationError{Reason: err.Error()}
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return cfg, err
		}
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, &ConfigurationError{Reason: err.Error()}
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateSchema(doc any) error {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("render.schema.json", schemaText)
	})
	if schemaErr != nil {
		return fmt.Errorf("compile render schema: %w", schemaErr)
	}
	// Round trip through JSON so numbers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	if err := schema.Validate(v); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := deepest(ve)
			return &ConfigurationError{Field: strings.TrimPrefix(leaf.InstanceLocation, "/"), Reason: leaf.Message}
		}
		return &ConfigurationError{Reason: err.Error()}
	}
	return nil
}

func deepest(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Renderer = strings.ToLower(strings.TrimSpace(c.Renderer))
	if c.Renderer == "" || c.Renderer == "default" {
		c.Renderer = string(raster.Scan)
	}
	if strings.TrimSpace(c.InputDir) == "" {
		c.InputDir = "."
	}
	for i := range c.Targets {
		c.Targets[i].Folder = strings.TrimSpace(c.Targets[i].Folder)
		if c.Targets[i].BPP == 0 {
			c.Targets[i].BPP = 8
		}
	}
}

func (c Config) Validate() error {
	if _, err := raster.ParseKind(c.Renderer); err != nil {
		return &ConfigurationError{Field: "renderer", Reason: err.Error()}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Field: "workers", Reason: "must be >= 0"}
	}
	if len(c.Targets) == 0 {
		return &ConfigurationError{Field: "targets", Reason: "must not be empty"}
	}
	seen := map[string]bool{}
	for i, t := range c.Targets {
		field := fmt.Sprintf("targets/%d", i)
		if t.Folder == "" {
			return &ConfigurationError{Field: field + "/folder", Reason: "must not be empty"}
		}
		if strings.ContainsAny(t.Folder, `/\`) || t.Folder == "." || t.Folder == ".." {
			return &ConfigurationError{Field: field + "/folder", Reason: fmt.Sprintf("%q must be a plain directory name", t.Folder)}
		}
		if seen[t.Folder] {
			return &ConfigurationError{Field: field + "/folder", Reason: fmt.Sprintf("duplicate folder %q", t.Folder)}
		}
		seen[t.Folder] = true
		if !(t.Scale > 0) {
			return &ConfigurationError{Field: field + "/scale", Reason: "must be > 0"}
		}
		if t.BPP != 8 && t.BPP != 32 {
			return &ConfigurationError{Field: field + "/bpp", Reason: fmt.Sprintf("%d is not 8 or 32", t.BPP)}
		}
	}
	return nil
}

// Kind is the configured raster strategy.
func (c Config) Kind() raster.Kind {
	k, _ := raster.ParseKind(c.Renderer)
	return k
}
