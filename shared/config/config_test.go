package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"seed": 7, "archives": {"fallback": "packs/base", "overlays": ["packs/hd.zip"]}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	if cfg.Archives.Fallback != "packs/base" || len(cfg.Archives.Overlays) != 1 {
		t.Errorf("Archives = %+v", cfg.Archives)
	}
	// Campos ausentes ficam com o padrão
	if cfg.WindowWidth != 1280 || !cfg.ShowGrid || cfg.Background != [4]uint8{30, 30, 35, 255} {
		t.Errorf("padrões perdidos: %dx, grid %v, bg %v", cfg.WindowWidth, cfg.ShowGrid, cfg.Background)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Archives.PrimaryByVersion["1.20"] = "packs/1.20.zip"
	cfg.AutoOrbit = true
	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Archives.PrimaryByVersion["1.20"] != "packs/1.20.zip" || !got.AutoOrbit {
		t.Errorf("config relida = %+v", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "nada.json")); err == nil {
		t.Error("arquivo ausente deveria falhar")
	}
	bad := filepath.Join(dir, "ruim.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := LoadFile(bad); err == nil {
		t.Error("JSON inválido deveria falhar")
	}
}
