// Package hwpxconfig is the module's env-driven global configuration,
// shaped directly on the teacher's config.go: a Config struct, a
// sync.RWMutex-guarded global singleton initialized once from the
// environment, DefaultConfig/FromEnvironment/NewConfigWithDefaults/
// Validate, and a setter that replaces the global config. The logger reads
// Global().LogLevel itself; SetGlobal does not touch it.
package hwpxconfig

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config contains every tunable this module reads from the environment.
type Config struct {
	// UndoRingCapacity is the per-stack depth of the undo/redo ring
	// (spec §4.7: "capped (default 50)").
	UndoRingCapacity int
	// ZstdLevel names an undo snapshot compression level: "fastest",
	// "default", or "best". It is validated and carried on Config, but the
	// undo ring does not read it and always uses the fastest level.
	ZstdLevel string
	// LogLevel controls logger verbosity (debug, info, warn, error).
	LogLevel string
	// StrictXMLValidation is parsed from the environment but no package
	// reads it; CheckTagBalance/CheckStructure findings are handled the same
	// whichever value it holds.
	StrictXMLValidation bool
	// IDAlgorithm selects the hashing algorithm internal/idgen uses:
	// "xxh3", "fnv1a", or "blake2b".
	IDAlgorithm string
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = FromEnvironment()
	})
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		UndoRingCapacity:    50,
		ZstdLevel:           "fastest",
		LogLevel:            "info",
		StrictXMLValidation: false,
		IDAlgorithm:         "xxh3",
	}
}

// FromEnvironment builds a Config from HWPXSURGEON_* environment
// variables, falling back to DefaultConfig for anything unset or
// unparseable.
func FromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("HWPXSURGEON_UNDO_RING_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.UndoRingCapacity = n
		}
	}
	if val := os.Getenv("HWPXSURGEON_ZSTD_LEVEL"); val != "" {
		config.ZstdLevel = val
	}
	if val := os.Getenv("HWPXSURGEON_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}
	if val := os.Getenv("HWPXSURGEON_STRICT_XML_VALIDATION"); val != "" {
		config.StrictXMLValidation = parseBool(val)
	}
	if val := os.Getenv("HWPXSURGEON_ID_ALGORITHM"); val != "" {
		config.IDAlgorithm = val
	}

	return config
}

// NewConfigWithDefaults returns a copy of overrides with zero-valued
// fields filled in from DefaultConfig.
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()
	if overrides == nil {
		return defaults
	}

	config := *overrides
	if config.UndoRingCapacity == 0 {
		config.UndoRingCapacity = defaults.UndoRingCapacity
	}
	if config.ZstdLevel == "" {
		config.ZstdLevel = defaults.ZstdLevel
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.IDAlgorithm == "" {
		config.IDAlgorithm = defaults.IDAlgorithm
	}
	return &config
}

// Validate reports whether c's fields hold sane values.
func (c *Config) Validate() error {
	if c.UndoRingCapacity < 0 {
		return errors.New("undo ring capacity cannot be negative")
	}
	validLevels := map[string]bool{"fastest": true, "default": true, "best": true}
	if !validLevels[c.ZstdLevel] {
		return errors.New("invalid zstd level: " + c.ZstdLevel)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}
	validAlgorithms := map[string]bool{"xxh3": true, "fnv1a": true, "blake2b": true}
	if !validAlgorithms[c.IDAlgorithm] {
		return errors.New("invalid id algorithm: " + c.IDAlgorithm)
	}
	return nil
}

// Global returns a copy of the process-wide configuration.
func Global() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()
	if globalConfig == nil {
		return DefaultConfig()
	}
	copied := *globalConfig
	return &copied
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
