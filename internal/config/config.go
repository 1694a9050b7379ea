// Package config loads and validates the TOML configuration for mdlint.
// Flags layered on top by the CLI override file values; validation happens
// once, before any document is processed.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/OxfordRSE/lint-md-codeblocks/internal/lang"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for go-toml.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// AnalyzerConfig selects and parameterizes the analyzer collaborator.
type AnalyzerConfig struct {
	// Family is one of flake8, gcc, syntax, script. Empty selects the
	// language's default family.
	Family string `toml:"family"`
	// Command overrides the analyzer binary for exec families.
	Command string `toml:"command"`
	// Args are extra arguments placed before the input argument.
	Args []string `toml:"args"`
	// Config is the analyzer's own configuration file, passed through to
	// exec families that accept one.
	Config string `toml:"config"`
	// Script is the Risor script path for the script family.
	Script string `toml:"script"`
	// UseStdin pipes the buffer on standard input instead of staging a
	// temporary file.
	UseStdin bool `toml:"use_stdin"`
	// Timeout bounds one analyzer invocation, e.g. "30s".
	Timeout Duration `toml:"timeout"`
}

// Config is the full configuration surface.
type Config struct {
	// BaseDir is the directory scanned for markdown documents.
	BaseDir string `toml:"base_dir"`
	// Language is the target content language, one of lang.Names.
	Language string `toml:"language"`
	// Exclude holds glob patterns matched against slash-separated paths
	// relative to BaseDir; matching documents are never scanned.
	Exclude []string `toml:"exclude"`
	// HistoryDB enables run-history recording when non-empty.
	HistoryDB string `toml:"history_db"`
	// Parallel lints documents concurrently.
	Parallel bool `toml:"parallel"`

	Analyzer AnalyzerConfig `toml:"analyzer"`
}

// DefaultExcludes mirrors the conventional exclusion of slide decks: any
// path with a "slides" segment is never linted.
var DefaultExcludes = []string{"slides/**", "**/slides/**"}

// Default returns the configuration used when no file and no flags are given.
func Default() Config {
	return Config{
		BaseDir:  ".",
		Language: "python",
		Exclude:  append([]string(nil), DefaultExcludes...),
		Parallel: true,
	}
}

// Load reads a TOML config file over the defaults. A missing path returns
// the defaults; a present but unreadable or invalid file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields. Any error here is a configuration
// error: fatal before any document is processed.
func (c Config) Validate() error {
	if _, ok := lang.Lookup(c.Language); !ok {
		return fmt.Errorf("unsupported language %q (supported: %s)",
			c.Language, strings.Join(lang.Names(), ", "))
	}
	if c.Analyzer.Family != "" && !lang.KnownFamily(lang.Family(c.Analyzer.Family)) {
		return fmt.Errorf("unknown analyzer family %q", c.Analyzer.Family)
	}
	if lang.Family(c.Analyzer.Family) == lang.FamilyScript && c.Analyzer.Script == "" {
		return errors.New("analyzer family \"script\" requires analyzer.script")
	}
	if c.Analyzer.Config != "" {
		if _, err := os.Stat(c.Analyzer.Config); err != nil {
			return fmt.Errorf("analyzer config: %w", err)
		}
	}
	return nil
}
