package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
server:
  port: 8080
clickhouse:
  host: localhost
  database: poppredict
scorer:
  url: http://localhost:8501
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Training.ShuffleSeed != 42 {
		t.Fatalf("shuffle seed default = %d", cfg.Training.ShuffleSeed)
	}
	if cfg.Training.TrainFraction != 0.7 || cfg.Training.ValFraction != 0.2 {
		t.Fatalf("split defaults = %v/%v", cfg.Training.TrainFraction, cfg.Training.ValFraction)
	}
	if cfg.Scorer.ModelVersion != "1.0.0" {
		t.Fatalf("model version default = %q", cfg.Scorer.ModelVersion)
	}
	if cfg.Cache.PredictionTTL != 5*time.Minute || cfg.Cache.HistoryTTL != 15*time.Minute {
		t.Fatalf("ttl defaults = %v/%v", cfg.Cache.PredictionTTL, cfg.Cache.HistoryTTL)
	}
}

func TestLoadMissingScorerURL(t *testing.T) {
	body := `
environment: test
clickhouse:
  host: localhost
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadInvalidSplit(t *testing.T) {
	body := minimalYAML + `
training:
  train_fraction: 0.8
  val_fraction: 0.3
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("fractions summing past 1 should fail validation")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SCORER_URL", "http://scorer:9000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scorer.URL != "http://scorer:9000" {
		t.Fatalf("scorer url = %q", cfg.Scorer.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
}
