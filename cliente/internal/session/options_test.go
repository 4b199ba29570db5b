package session

import (
	"runtime"
	"testing"

	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Background = [4]uint8{1, 2, 3, 4}
	cfg.TransparentBg = true
	cfg.AutoOrbit = true
	cfg.OrbitSpeed = 25
	cfg.ShowGrid = false
	cfg.InstancingSort = true
	cfg.Seed = 99
	cfg.WindowWidth, cfg.WindowHeight = 800, 600

	opts := FromConfig(cfg)
	want := scene.Background{R: 1, G: 2, B: 3, A: 4, Transparent: true}
	if opts.Background != want {
		t.Errorf("Background = %+v, want %+v", opts.Background, want)
	}
	if !opts.AutoOrbit || opts.OrbitSpeed != 25 {
		t.Errorf("órbita = %v/%v, want true/25", opts.AutoOrbit, opts.OrbitSpeed)
	}
	if opts.ShowGrid || !opts.ShowOrientation {
		t.Errorf("decorações = grid %v orientation %v", opts.ShowGrid, opts.ShowOrientation)
	}
	if !opts.InstancingSort || opts.Seed != 99 {
		t.Errorf("InstancingSort/Seed = %v/%v", opts.InstancingSort, opts.Seed)
	}
	if opts.Width != 800 || opts.Height != 600 {
		t.Errorf("tamanho = %dx%d, want 800x600", opts.Width, opts.Height)
	}
	if opts.ResolveWorkers != runtime.NumCPU() {
		t.Errorf("ResolveWorkers = %d, want %d", opts.ResolveWorkers, runtime.NumCPU())
	}

	cfg.ResolveWorkers = 3
	if got := FromConfig(cfg).workers(); got != 3 {
		t.Errorf("workers() = %d, want 3", got)
	}
	if got := (Options{}).workers(); got != 1 {
		t.Errorf("workers() sem configuração = %d, want 1", got)
	}
}
