// Package cliutil implements the ambient stack the ward CLI
// expansion reserves for cmd/ward: config-file loading (JSON/YAML),
// input/data document loading, and Result rendering. None of it is
// imported by internal/eval, internal/compiler, internal/parser, or
// internal/lexer — those packages stay a pure, host-agnostic core.
package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wardlang/ward/internal/value"
)

// Config is the decoded shape of --config FILE: a JSON or YAML document
// overriding any flags the user didn't pass explicitly on the command
// line.
type Config struct {
	Policy      string `yaml:"policy" json:"policy"`
	Input       string `yaml:"input" json:"input"`
	Data        string `yaml:"data" json:"data"`
	Query       string `yaml:"query" json:"query"`
	Format      string `yaml:"format" json:"format"`
	YAMLAliases bool   `yaml:"yaml_aliases" json:"yaml_aliases"`
	Profile     bool   `yaml:"profile" json:"profile"`
}

// LoadConfig decodes path as YAML (a JSON superset, so a .json config
// decodes through the same path) via goccy/go-yaml. allowAliases gates
// whether YAML anchors/aliases (`&name`, `*name`) are accepted: when false,
// their mere presence in the source text is treated as malformed input,
// the conservative reading of the `--yaml-aliases` flag.
func LoadConfig(path string, allowAliases bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliutil: reading config %s: %w", path, err)
	}
	if !allowAliases && containsYAMLAlias(string(data)) {
		return nil, fmt.Errorf("cliutil: config %s uses YAML anchors/aliases but --yaml-aliases was not set", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cliutil: parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// containsYAMLAlias is a conservative textual check for anchor/alias
// markers outside of comments. It is intentionally simple: a
// full YAML-aware scan belongs to the parser, not this one-line policy
// check, so a quoted "*foo" literal may produce a false positive that the
// user can clear with --yaml-aliases.
func containsYAMLAlias(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if idx := strings.IndexAny(trimmed, "#"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		for _, tok := range strings.Fields(trimmed) {
			if strings.HasPrefix(tok, "&") || strings.HasPrefix(tok, "*") {
				return true
			}
		}
	}
	return false
}

// LoadDocument reads path and decodes it into a Value for use as `input` or
// `data`, accepting either JSON or YAML (detected by trying goccy/go-yaml's
// generic decode, which accepts both). An empty path yields value.Null,
// matching "no --input/--data supplied" rather than an error.
func LoadDocument(path string) (value.Value, error) {
	if path == "" {
		return value.Null, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Undefined, fmt.Errorf("cliutil: reading %s: %w", path, err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return value.Undefined, fmt.Errorf("cliutil: parsing %s: %w", path, err)
	}
	v, err := value.FromAny(generic)
	if err != nil {
		return value.Undefined, fmt.Errorf("cliutil: converting %s: %w", path, err)
	}
	return v, nil
}
