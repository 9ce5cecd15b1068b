package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Backend.Type != "sqlite" || c.Collector.Mode != "live" {
		t.Fatalf("defaults not applied: backend=%q mode=%q", c.Backend.Type, c.Collector.Mode)
	}
	if len(c.Collector.Currencies) != 8 {
		t.Fatalf("currencies = %v", c.Collector.Currencies)
	}
	if c.Collector.Window != 90*24*time.Hour {
		t.Fatalf("window = %s", c.Collector.Window)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
collector:
  mode: demo
  currencies: [USD, JPY]
cache:
  ttl: 1h
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Collector.Mode != "demo" || len(c.Collector.Currencies) != 2 || c.Cache.TTL != time.Hour {
		t.Fatalf("yaml not applied: %+v", c.Collector)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("port default lost: %d", c.Server.Port)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("CURRENCIES", "usd,eur")
	t.Setenv("REQUEST_TIMEOUT_MS", "1500")
	t.Setenv("FRED_API_KEY", "k")
	t.Setenv("REDIS_HOST", "cache.local")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if got := c.Collector.Currencies; len(got) != 2 || got[0] != "USD" || got[1] != "EUR" {
		t.Fatalf("currencies = %v", got)
	}
	if c.Collector.RequestTimeout != 1500*time.Millisecond {
		t.Fatalf("timeout = %s", c.Collector.RequestTimeout)
	}
	if c.Sources.FRED.APIKey != "k" {
		t.Fatal("api key not read from env")
	}
	if !c.Cache.Redis.Enabled || c.Cache.Redis.Host != "cache.local" {
		t.Fatalf("redis = %+v", c.Cache.Redis)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad mode", func(c *Config) { c.Collector.Mode = "paper" }, true},
		{"lowercase currency", func(c *Config) { c.Collector.Currencies = []string{"usd"} }, true},
		{"delay range inverted", func(c *Config) { c.Collector.DelayMin = 10 * time.Second }, true},
		{"kafka without brokers", func(c *Config) {
			c.Backend.Type = "kafka"
			c.ClickHouse.Host = "ch"
		}, true},
		{"kafka without clickhouse", func(c *Config) {
			c.Backend.Type = "kafka"
			c.Kafka.Brokers = []string{"b:9092"}
		}, true},
		{"kafka complete", func(c *Config) {
			c.Backend.Type = "kafka"
			c.Kafka.Brokers = []string{"b:9092"}
			c.ClickHouse.Host = "ch"
		}, false},
		{"clickhouse without host", func(c *Config) { c.Backend.Type = "clickhouse" }, true},
		{"unknown backend", func(c *Config) { c.Backend.Type = "postgres" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
