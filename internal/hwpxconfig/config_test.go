package hwpxconfig

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got: %v", err)
	}
}

func TestNewConfigWithDefaultsFillsZeroFields(t *testing.T) {
	c := NewConfigWithDefaults(&Config{LogLevel: "debug"})
	if c.LogLevel != "debug" {
		t.Fatalf("expected override preserved, got %q", c.LogLevel)
	}
	if c.UndoRingCapacity != DefaultConfig().UndoRingCapacity {
		t.Fatalf("expected zero field filled from defaults")
	}
}

func TestValidateRejectsNegativeCapacity(t *testing.T) {
	c := DefaultConfig()
	c.UndoRingCapacity = -1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error for negative capacity")
	}
}

func TestValidateRejectsUnknownZstdLevel(t *testing.T) {
	c := DefaultConfig()
	c.ZstdLevel = "ultra"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown zstd level")
	}
}

func TestSetGlobalThenGlobalRoundTrips(t *testing.T) {
	c := DefaultConfig()
	c.LogLevel = "warn"
	SetGlobal(c)
	if Global().LogLevel != "warn" {
		t.Fatalf("expected global config to reflect SetGlobal")
	}
	SetGlobal(DefaultConfig())
}
