package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("unable to write configuration; %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[target]
word-size = 32

[emit]
dir = "out"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unable to load configuration; %v", err)
	}
	if cfg.Target.WordSize != 32 {
		t.Errorf("word size mismatch; expected 32, got %d", cfg.Target.WordSize)
	}
	if cfg.Emit.Dir != "out" {
		t.Errorf("emit dir mismatch; expected %q, got %q", "out", cfg.Emit.Dir)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[target]
word-size = 32
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unable to load configuration; %v", err)
	}
	if cfg.Target.WordSize != 32 {
		t.Errorf("word size mismatch; expected 32, got %d", cfg.Target.WordSize)
	}
	if want := Default().Emit.Dir; cfg.Emit.Dir != want {
		t.Errorf("emit dir mismatch; expected default %q, got %q", want, cfg.Emit.Dir)
	}
}

func TestLoadRejectsBadWordSize(t *testing.T) {
	path := writeConfig(t, `
[target]
word-size = 16
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for 16-bit word size")
	}
}

func TestLoadRejectsEmptyEmitDir(t *testing.T) {
	path := writeConfig(t, `
[emit]
dir = ""
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty emit directory")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, `[target`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadIfPresentMissingFile(t *testing.T) {
	cfg, err := LoadIfPresent(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("missing file must yield defaults; %v", err)
	}
	if cfg != Default() {
		t.Errorf("configuration mismatch; expected defaults %+v, got %+v", Default(), cfg)
	}
}
