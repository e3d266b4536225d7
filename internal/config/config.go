// Package config loads depparse settings from an HCL file:
//
//	database   = ".depparse/treebank.db"
//	batch_size = 64
//	workers    = 4
//	log_level  = "info"
//	log_format = "text"
//
//	oracle {
//	  script      = "oracle/baseline.risor"
//	  scripts_dir = "${env.HOME}/depparse/scripts"
//	}
//
// Every attribute is optional; missing ones keep the values from Default.
// Expressions may read environment variables through the env object.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config is the resolved configuration.
type Config struct {
	Database  string
	BatchSize int
	Workers   int
	LogLevel  string
	LogFormat string

	// Oracle source. Script and Transitions are mutually exclusive.
	Script      string
	ScriptsDir  string
	Transitions string
}

// hclFile mirrors the file layout for decoding.
type hclFile struct {
	Database  *string    `hcl:"database"`
	BatchSize *int       `hcl:"batch_size"`
	Workers   *int       `hcl:"workers"`
	LogLevel  *string    `hcl:"log_level"`
	LogFormat *string    `hcl:"log_format"`
	Oracle    *hclOracle `hcl:"oracle,block"`
}

type hclOracle struct {
	Script      *string `hcl:"script"`
	ScriptsDir  *string `hcl:"scripts_dir"`
	Transitions *string `hcl:"transitions"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BatchSize: 64,
		Workers:   1,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the HCL file at path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(f.Body, evalContext(os.Environ()), &parsed)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	setString(&cfg.Database, parsed.Database)
	setInt(&cfg.BatchSize, parsed.BatchSize)
	setInt(&cfg.Workers, parsed.Workers)
	setString(&cfg.LogLevel, parsed.LogLevel)
	setString(&cfg.LogFormat, parsed.LogFormat)
	if o := parsed.Oracle; o != nil {
		setString(&cfg.Script, o.Script)
		setString(&cfg.ScriptsDir, o.ScriptsDir)
		setString(&cfg.Transitions, o.Transitions)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// evalContext exposes environ as the env object.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

// Validate checks value ranges and exclusive settings.
func (c Config) Validate() error {
	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.Script != "" && c.Transitions != "" {
		errs = append(errs, errors.New("oracle: script and transitions are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug|info|warn|error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
