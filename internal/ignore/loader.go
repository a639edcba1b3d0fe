// Package ignore loads a .pgschemaignore TOML file describing glob
// patterns of objects to drop from a plan before it is ordered,
// mirroring the teacher's own ignore-file concept. Patterns cover eight
// kinds (table, view, function, procedure, type, sequence, trigger,
// policy); changes of any other kind are never ignored.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the default name of the ignore file.
const FileName = ".pgschemaignore"

// Config holds one glob pattern list per object kind. Patterns support
// "*" wildcards; a leading "!" negates a pattern that would otherwise
// match, taking precedence over the positive patterns for that kind.
type Config struct {
	Patterns map[string][]string `toml:"-"`
}

type tomlConfig struct {
	Tables     patternList `toml:"tables,omitempty"`
	Views      patternList `toml:"views,omitempty"`
	Functions  patternList `toml:"functions,omitempty"`
	Procedures patternList `toml:"procedures,omitempty"`
	Types      patternList `toml:"types,omitempty"`
	Sequences  patternList `toml:"sequences,omitempty"`
	Triggers   patternList `toml:"triggers,omitempty"`
	Policies   patternList `toml:"policies,omitempty"`
}

type patternList struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// Load reads FileName from the current directory. A missing file is
// not an error: it means no filtering applies.
func Load() (*Config, error) {
	return LoadFromPath(FileName)
}

// LoadFromPath reads an ignore file from filePath.
func LoadFromPath(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var raw tomlConfig
	if _, err := toml.DecodeFile(filePath, &raw); err != nil {
		return nil, err
	}

	return &Config{
		Patterns: map[string][]string{
			"table":     raw.Tables.Patterns,
			"view":      raw.Views.Patterns,
			"function":  raw.Functions.Patterns,
			"procedure": raw.Procedures.Patterns,
			"type":      raw.Types.Patterns,
			"sequence":  raw.Sequences.Patterns,
			"trigger":   raw.Triggers.Patterns,
			"policy":    raw.Policies.Patterns,
		},
	}, nil
}

// ShouldIgnore reports whether an object of the given kind and
// qualified name should be dropped from the plan.
func (c *Config) ShouldIgnore(kind, name string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(name, c.Patterns[kind])
}

func shouldIgnore(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern, name) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern[1:], name) {
			return false
		}
	}

	return true
}

func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return matched
}
