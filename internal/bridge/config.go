package bridge

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/cecdiscoveryd/cecdiscoveryd/internal/discovery"
)

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// MQTTConfig holds the broker settings, unchanged from the teacher's bridge.
type MQTTConfig struct {
	Broker string `json:"broker"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Prefix string `json:"prefix"`
}

// DiscoveryConfig controls the retry/timeout policy of every discovery run
// this daemon starts (spec §3, constants TIMEOUT_RETRY / ActionTimer).
type DiscoveryConfig struct {
	PollRetries  int `json:"poll_retries"`
	QueryRetries int `json:"query_retries"`
	TimeoutMS    int `json:"timeout_ms"`
}

// ToActionConfig converts the on-disk tunables to discovery.Config,
// falling back to discovery.DefaultConfig() for anything left at zero.
func (d DiscoveryConfig) ToActionConfig() discovery.Config {
	cfg := discovery.DefaultConfig()
	if d.PollRetries > 0 {
		cfg.PollRetries = d.PollRetries
	}
	if d.QueryRetries > 0 {
		cfg.QueryRetries = d.QueryRetries
	}
	if d.TimeoutMS > 0 {
		cfg.Timeout = msToDuration(d.TimeoutMS)
	}
	return cfg
}

// Config is the on-disk configuration file format.
type Config struct {
	MQTT      MQTTConfig      `json:"mqtt"`
	Discovery DiscoveryConfig `json:"discovery"`
}

var (
	currentConfig  Config
	configMu       sync.RWMutex
	configFilePath string
)

// LoadConfig reads and parses the config file, remembering its path for
// later SaveConfig calls. Returns a zero Config if the file doesn't exist.
func LoadConfig(path string) Config {
	configMu.Lock()
	configFilePath = path
	configMu.Unlock()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = json.Unmarshal(data, &cfg)

	configMu.Lock()
	currentConfig = cfg
	configMu.Unlock()
	return cfg
}

// SaveConfig atomically writes the config file.
func SaveConfig(cfg Config) error {
	configMu.Lock()
	path := configFilePath
	currentConfig = cfg
	configMu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// CurrentConfig returns the last loaded/saved configuration.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}
