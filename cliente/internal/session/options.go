package session

import (
	"cmp"
	"runtime"

	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/config"
)

// Options são fixadas na criação da sessão.
type Options struct {
	Background scene.Background

	// Câmera
	AutoOrbit  bool
	OrbitSpeed float32 // graus por segundo

	// Decorações
	ShowGrid        bool
	ShowOrientation bool

	Antialias         bool
	Debug             bool
	DisableAutoRender bool

	// Tamanho da superfície; zero mantém o tamanho atual da cena
	Width  int
	Height int

	// InstancingSort ordena as instâncias por distância à câmera antes do desenho
	InstancingSort bool

	// Seed do sorteio de variantes
	Seed uint64
	// ResolveWorkers limita a resolução paralela de tipos no Load
	ResolveWorkers int
}

// DefaultOptions retorna as opções padrão do visualizador.
func DefaultOptions() Options {
	return Options{
		Background:      scene.DefaultBackground,
		AutoOrbit:       false,
		OrbitSpeed:      10,
		ShowGrid:        true,
		ShowOrientation: true,
		Antialias:       true,
		Seed:            1,
		ResolveWorkers:  runtime.NumCPU(),
	}
}

func (o Options) workers() int {
	if o.ResolveWorkers <= 0 {
		return 1
	}
	return o.ResolveWorkers
}

// FromConfig converte a configuração do visualizador em opções de sessão.
func FromConfig(cfg *config.Config) Options {
	bg := cfg.Background
	return Options{
		Background:        scene.Background{R: bg[0], G: bg[1], B: bg[2], A: bg[3], Transparent: cfg.TransparentBg},
		AutoOrbit:         cfg.AutoOrbit,
		OrbitSpeed:        cfg.OrbitSpeed,
		ShowGrid:          cfg.ShowGrid,
		ShowOrientation:   cfg.ShowOrientation,
		Antialias:         cfg.Antialias,
		Debug:             cfg.ShowDebugInfo,
		DisableAutoRender: cfg.DisableAutoRender,
		Width:             int(cfg.WindowWidth),
		Height:            int(cfg.WindowHeight),
		InstancingSort:    cfg.InstancingSort,
		Seed:              cfg.Seed,
		ResolveWorkers:    cmp.Or(cfg.ResolveWorkers, runtime.NumCPU()),
	}
}
