package config

import "testing"

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Server.ListenAddr == "" {
		t.Error("expected a default listen addr")
	}
	if cfg.Namesrv.SupportActingMaster {
		t.Error("expected SupportActingMaster to default false")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "debug", Format: "json"},
		Server:  ServerConfig{ListenAddr: ":12345"},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level to be normalized to uppercase, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected explicit format to survive defaulting, got %q", cfg.Logging.Format)
	}
	if cfg.Server.ListenAddr != ":12345" {
		t.Errorf("expected explicit listen addr to survive defaulting, got %q", cfg.Server.ListenAddr)
	}
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected missing config file to fall back to defaults, got error: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}
