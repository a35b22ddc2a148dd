package bridge

import (
	"path/filepath"
	"testing"

	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
)

func TestLoadConfigMissingFileReturnsZeroValue(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if cfg.MQTT.Broker != "" || cfg.Discovery.PollRetries != 0 {
		t.Fatalf("expected zero-value Config for a missing file, got %+v", cfg)
	}
}

func TestSaveConfigThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	// SaveConfig writes wherever LoadConfig last pointed it at, so establish
	// the path first the way a real process does at startup.
	LoadConfig(path)

	want := Config{
		MQTT:      MQTTConfig{Broker: "tcp://localhost:1883", User: "u", Pass: "p", Prefix: "cecd"},
		Discovery: DiscoveryConfig{PollRetries: 5, QueryRetries: 2, TimeoutMS: 1000},
	}
	if err := SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got := LoadConfig(path)
	if got != want {
		t.Fatalf("LoadConfig after SaveConfig = %+v, want %+v", got, want)
	}

	if cur := CurrentConfig(); cur != want {
		t.Fatalf("CurrentConfig() = %+v, want %+v", cur, want)
	}
}

func TestDiscoveryConfigToActionConfigAppliesOverridesOnly(t *testing.T) {
	def := discovery.DefaultConfig()

	zero := DiscoveryConfig{}
	if got := zero.ToActionConfig(); got != def {
		t.Fatalf("zero-value DiscoveryConfig should fall back to defaults, got %+v want %+v", got, def)
	}

	partial := DiscoveryConfig{PollRetries: 7}
	got := partial.ToActionConfig()
	if got.PollRetries != 7 {
		t.Errorf("PollRetries = %d, want 7", got.PollRetries)
	}
	if got.QueryRetries != def.QueryRetries || got.Timeout != def.Timeout {
		t.Errorf("unset fields should keep defaults, got %+v", got)
	}
}
