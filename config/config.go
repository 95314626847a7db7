// Package config loads seam.toml project configuration.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultFile is the configuration file name looked up in the working
// directory.
const DefaultFile = "seam.toml"

// Target holds the [target] section.
type Target struct {
	// WordSize is the target word size in bits (32 or 64).
	WordSize int `toml:"word-size"`
}

// Emit holds the [emit] section.
type Emit struct {
	// Dir is the directory emitted LLVM IR assembly is written to.
	Dir string `toml:"dir"`
}

// Config is the seam.toml project configuration.
type Config struct {
	Target Target `toml:"target"`
	Emit   Emit   `toml:"emit"`
}

// Default returns the configuration used when no seam.toml is present.
func Default() Config {
	return Config{
		Target: Target{WordSize: 64},
		Emit:   Emit{Dir: "build"},
	}
}

// Load parses the configuration file at path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "unable to parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid configuration %s", path)
	}
	return cfg, nil
}

// LoadIfPresent parses the configuration file at path when it exists, and
// returns the defaults otherwise.
func LoadIfPresent(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

func (cfg Config) validate() error {
	if ws := cfg.Target.WordSize; ws != 32 && ws != 64 {
		return errors.Errorf("target.word-size must be 32 or 64, got %d", ws)
	}
	if cfg.Emit.Dir == "" {
		return errors.New("emit.dir must not be empty")
	}
	return nil
}
