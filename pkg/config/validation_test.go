package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "TRACE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected oneof validation error, got: %v", err)
	}
}

func TestValidate_MissingListenAddr(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.ListenAddr = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty listen address")
	}
}

func TestValidate_SampleRateOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 2.0

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for out-of-range sample rate")
	}
}
