package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "bedrock" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero tool rounds", func(c *Config) { c.MaxToolRounds = 0 }},
		{"empty source url", func(c *Config) { c.Schedule.SourceURL = "" }},
		{"bad cache ttl", func(c *Config) { c.Schedule.CacheTTL = "soon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider openai, got %s", cfg.Provider)
	}
	if cfg.MaxToolRounds != 6 {
		t.Errorf("expected default max_tool_rounds=6, got %d", cfg.MaxToolRounds)
	}
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".confchat.yml")
	content := "provider: openai\nmodel: gpt-4o-mini\nport: 9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFCHAT_MODEL", "gpt-4o")
	t.Setenv("CONFCHAT_SCHEDULE__SOURCE_URL", "https://example.com/events")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("expected port 9000 from file, got %d", cfg.Port)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("expected env to override model, got %s", cfg.Model)
	}
	if cfg.Schedule.SourceURL != "https://example.com/events" {
		t.Errorf("expected nested env override, got %s", cfg.Schedule.SourceURL)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yml")

	cfg := DefaultConfig()
	cfg.Model = "gpt-4o-mini"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Model != "gpt-4o-mini" {
		t.Errorf("expected saved model, got %s", loaded.Model)
	}
}

func TestScheduleCacheTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule.CacheTTL = "30s"
	d, err := cfg.ScheduleCacheTTL()
	if err != nil {
		t.Fatalf("ScheduleCacheTTL: %v", err)
	}
	if d != 30*time.Second {
		t.Errorf("expected 30s, got %v", d)
	}

	cfg.Schedule.CacheTTL = ""
	d, _ = cfg.ScheduleCacheTTL()
	if d != 10*time.Minute {
		t.Errorf("expected 10m fallback, got %v", d)
	}
}
