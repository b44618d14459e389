// Package config loads run configuration for gospec from a .gospec.hcl
// file and from GOSPEC_* environment variables. The CLI and the in-process
// RunSpecs adapter share this package: the CLI resolves the file once and
// hands settings to spawned `go test` processes through the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// FileName is the configuration file discovered in or above the working
// directory.
const FileName = ".gospec.hcl"

// Config holds every run setting. Zero/empty fields fall back to the
// defaults applied by Default.
type Config struct {
	Format       string           `hcl:"format,optional"`
	Order        string           `hcl:"order,optional"`
	Seed         int64            `hcl:"seed,optional"`
	FailFast     int              `hcl:"fail_fast,optional"`
	OnlyFailures bool             `hcl:"only_failures,optional"`
	Pattern      string           `hcl:"pattern,optional"`
	StatusDB     string           `hcl:"status_db,optional"`
	Reporters    []*ReporterBlock `hcl:"reporter,block"`
}

// ReporterBlock is an additional reporter declared in the config file, for
// example a stream reporter pointing at a collector endpoint. Its
// attributes are format-specific, so the body is decoded lazily.
type ReporterBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Options flattens the block's attributes into strings for the reporter
// factory.
func (b *ReporterBlock) Options() (map[string]string, error) {
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading reporter %q options: %s", b.Name, diags.Error())
	}
	opts := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating reporter %q option %q: %s", b.Name, name, diags.Error())
		}
		sv, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("reporter %q option %q is not a string: %w", b.Name, name, err)
		}
		opts[name] = sv.AsString()
	}
	return opts, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Format:  "progress",
		Order:   "defined",
		Pattern: "**/*_test.go",
	}
}

// Load parses a config file and layers it over the defaults.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %s", path, diags.Error())
	}

	cfg := Default()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %s", path, diags.Error())
	}
	if cfg.Format == "" {
		cfg.Format = "progress"
	}
	if cfg.Order == "" {
		cfg.Order = "defined"
	}
	return cfg, nil
}

// Discover walks from dir upward looking for a config file. When none
// exists it returns the defaults and an empty path.
func Discover(dir string) (*Config, string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), "", nil
		}
		abs = parent
	}
}

// ApplyEnv overlays GOSPEC_* variables onto the config. lookup is
// os.LookupEnv in production and a map in tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GOSPEC_FORMAT"); ok {
		c.Format = v
	}
	if v, ok := lookup("GOSPEC_ORDER"); ok {
		c.Order = v
	}
	if v, ok := lookup("GOSPEC_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GOSPEC_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}
	if v, ok := lookup("GOSPEC_FAIL_FAST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GOSPEC_FAIL_FAST %q: %w", v, err)
		}
		c.FailFast = n
	}
	if v, ok := lookup("GOSPEC_ONLY_FAILURES"); ok {
		c.OnlyFailures = v == "1" || v == "true"
	}
	if v, ok := lookup("GOSPEC_PATTERN"); ok {
		c.Pattern = v
	}
	if v, ok := lookup("GOSPEC_STATUS_DB"); ok {
		c.StatusDB = v
	}
	return nil
}

// Env serializes the scalar settings as GOSPEC_* assignments for a child
// `go test` process. Reporter blocks are not serialized; the child
// rediscovers the config file via GOSPEC_CONFIG.
func (c *Config) Env() []string {
	env := []string{
		"GOSPEC_FORMAT=" + c.Format,
		"GOSPEC_ORDER=" + c.Order,
		"GOSPEC_SEED=" + strconv.FormatInt(c.Seed, 10),
		"GOSPEC_FAIL_FAST=" + strconv.Itoa(c.FailFast),
		"GOSPEC_PATTERN=" + c.Pattern,
	}
	if c.OnlyFailures {
		env = append(env, "GOSPEC_ONLY_FAILURES=1")
	}
	if c.StatusDB != "" {
		env = append(env, "GOSPEC_STATUS_DB="+c.StatusDB)
	}
	return env
}
