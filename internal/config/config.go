// Package config loads the small set of knobs a Device's construction and
// run loop need beyond what a program binary itself specifies: history
// capacity, which MMIO windows to mount, and a default run timeout.
//
// Grounded on the teacher's cmd/mipsvm/main.go, which parses a single
// "-memory" flag with flag.Uint64 and falls back to a literal default
// (1<<20) — this package generalizes that one-flag shape into a typed
// struct with env-var and YAML-file overrides via koanf, since nothing in
// the retrieved pack has a bigger config surface to imitate.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// UnitConfig controls Device construction and default run behavior.
type UnitConfig struct {
	HistoryCapacity int           `koanf:"history_capacity"`
	WithDisplay     bool          `koanf:"with_display"`
	WithKeyboard    bool          `koanf:"with_keyboard"`
	DefaultTimeout  time.Duration `koanf:"default_timeout"`
}

// Default mirrors the teacher's own hardcoded defaults (e.g. mipsvm's
// 1<<20-byte memory) translated into this module's knobs.
func Default() UnitConfig {
	return UnitConfig{
		HistoryCapacity: 1000,
		WithDisplay:     false,
		WithKeyboard:    false,
		DefaultTimeout:  0,
	}
}

// Load starts from Default, then layers a YAML file (if path is non-empty;
// a path that cannot be read is an error) and MIPSUNIT_*-prefixed
// environment variables on top, the
// same precedence order koanf's own examples use (file, then env, last
// writer wins).
func Load(path string) (UnitConfig, error) {
	k := koanf.New(".")
	cfg := Default()

	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return UnitConfig{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return UnitConfig{}, err
		}
	}

	if err := k.Load(env.Provider("MIPSUNIT_", ".", envKeyMap), nil); err != nil {
		return UnitConfig{}, err
	}

	var out UnitConfig
	if err := k.Unmarshal("", &out); err != nil {
		return UnitConfig{}, err
	}
	return out, nil
}

// envKeyMap turns MIPSUNIT_HISTORY_CAPACITY into history_capacity so it
// lines up with the koanf struct tags above.
func envKeyMap(s string) string {
	s = strings.TrimPrefix(s, "MIPSUNIT_")
	return strings.ToLower(s)
}
