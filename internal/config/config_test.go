package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := []byte(`packs:
  dir: ./mypacks
render:
  strict: true
  model: some-model
server:
  addr: ":9999"
storage:
  type: sqlite
  path: ./data/history.db
`)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Packs.Dir != "./mypacks" {
		t.Fatalf("Packs.Dir: got %q", cfg.Packs.Dir)
	}
	if !cfg.Render.Strict || cfg.Render.Model != "some-model" {
		t.Fatalf("Render: got %+v", cfg.Render)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("Server.Addr: got %q", cfg.Server.Addr)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Fatalf("Storage.Type: got %q", cfg.Storage.Type)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("render:\n  strict: false\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Packs.Dir != "packs" {
		t.Fatalf("Packs.Dir: got %q want default", cfg.Packs.Dir)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr: got %q want default", cfg.Server.Addr)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Packs.Dir != "packs" || cfg.Server.Addr != ":8080" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestPacksDirEnvOverride(t *testing.T) {
	t.Setenv("PROMPTPACK_PACKS_DIR", "/tmp/override-packs")

	cfg := Default()
	if cfg.Packs.Dir != "/tmp/override-packs" {
		t.Fatalf("Packs.Dir: got %q", cfg.Packs.Dir)
	}
}
