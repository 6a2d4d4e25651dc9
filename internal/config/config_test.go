package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
version: 1
global:
  db_path: offers.db
feeds:
  - id: xrpl_main
    url: ${FEED_URL}
    streams: ["transactions"]
    sinks: ["book"]
sinks:
  - id: book
    type: webhook
    url: ${HOOK_URL}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadInterpolatesEnvAndValidates(t *testing.T) {
	cfgPath := writeConfig(t, validYAML)

	t.Setenv("FEED_URL", "wss://example-feed")
	t.Setenv("HOOK_URL", "https://hooks.example.test")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if got := cfg.Feeds[0].URL; got != "wss://example-feed" {
		t.Fatalf("feed url not interpolated, got %q", got)
	}
	if got := cfg.Sinks[0].URL; got != "https://hooks.example.test" {
		t.Fatalf("sink url not interpolated, got %q", got)
	}
}

func TestLoadFailsOnMissingEnv(t *testing.T) {
	cfgPath := writeConfig(t, validYAML)

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected missing env to fail")
	}
}

func TestValidateRejectsBadFeedURL(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Global:  GlobalConfig{DBPath: "x.db"},
		Feeds:   []Feed{{ID: "f", URL: "http://not-ws", Sinks: []string{"s"}}},
		Sinks:   []Sink{{ID: "s", Type: "log"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation failure for non-websocket url")
	}
}

func TestValidateDefaultsStreamsAndMethod(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Global:  GlobalConfig{DBPath: "x.db"},
		Feeds:   []Feed{{ID: "f", URL: "wss://node", Sinks: []string{"s"}}},
		Sinks:   []Sink{{ID: "s", Type: "webhook", URL: "https://hook"}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(cfg.Feeds[0].Streams) != 1 || cfg.Feeds[0].Streams[0] != "transactions" {
		t.Fatalf("streams not defaulted: %+v", cfg.Feeds[0].Streams)
	}
	if cfg.Sinks[0].Method != "POST" {
		t.Fatalf("method not defaulted: %q", cfg.Sinks[0].Method)
	}
}

func TestValidateRejectsUnknownSinkRef(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Global:  GlobalConfig{DBPath: "x.db"},
		Feeds:   []Feed{{ID: "f", URL: "wss://node", Sinks: []string{"nope"}}},
		Sinks:   []Sink{{ID: "s", Type: "log"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown sink reference to fail")
	}
}
