package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ucmigrate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
databricks:
  host: https://example.cloud.databricks.com
  token: env://DATABRICKS_TOKEN
aws:
  profile: dev
  region: us-east-1
store:
  path: /tmp/ucmigrate-test.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Databricks.Host != "https://example.cloud.databricks.com" {
		t.Errorf("Host = %q", cfg.Databricks.Host)
	}
	if cfg.Databricks.Token != "env://DATABRICKS_TOKEN" {
		t.Errorf("Token = %q", cfg.Databricks.Token)
	}
	if cfg.AWS.Profile != "dev" || cfg.AWS.Region != "us-east-1" {
		t.Errorf("AWS = %+v", cfg.AWS)
	}
	if cfg.StorePath() != "/tmp/ucmigrate-test.db" {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing path should error")
	}
}

func TestLoadMissingDefaultIsZeroConfig(t *testing.T) {
	dir := t.TempDir()
	orig, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Databricks.Host != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "databricks: [not: a: map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateTokenWithoutHost(t *testing.T) {
	path := writeConfig(t, `
databricks:
  token: dapi123
`)
	if _, err := Load(path); err == nil {
		t.Error("token without host should be rejected")
	}
}

func TestStorePathDefault(t *testing.T) {
	cfg := &Config{}
	if cfg.StorePath() == "" {
		t.Error("default store path should not be empty")
	}
}
