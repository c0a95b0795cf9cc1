package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if info.Found || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Roster.DefaultQuery != "Magda" || cfg.Roster.PreferredSheet != "Směny" {
		t.Fatalf("unexpected roster defaults: %+v", cfg.Roster)
	}
	if cfg.Source.Timeout.Duration != 30*time.Second {
		t.Fatalf("timeout=%v", cfg.Source.Timeout)
	}
}

func TestLoadFile_OverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `
[server]
port = 8080

[roster]
default_query = "Bára"
order = "desc"

[source]
timeout = "5s"
attempts = 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TIMESHEET_PASSWORD", "secret")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !info.Found || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port=%d", cfg.Server.Port)
	}
	if cfg.Roster.DefaultQuery != "Bára" || cfg.Roster.Order != "desc" {
		t.Fatalf("roster=%+v", cfg.Roster)
	}
	// 未出现在文件中的键保持默认值
	if cfg.Roster.Mode != "latest" || cfg.Roster.MissingLabel != "nan" {
		t.Fatalf("defaults lost: %+v", cfg.Roster)
	}
	if cfg.Source.Timeout.Duration != 5*time.Second || cfg.Source.Attempts != 5 {
		t.Fatalf("source=%+v", cfg.Source)
	}
	if cfg.Auth.Password != "secret" {
		t.Fatalf("password env override not applied")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Server.Port != 9999 || loaded.Source.Timeout.Duration != 30*time.Second {
		t.Fatalf("loaded=%+v", loaded)
	}
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "exports")); err != nil {
		t.Fatalf("exports dir missing: %v", err)
	}
}
