package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config armazena as configurações do StructureVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Cena
	Background        [4]uint8 `json:"background"` // RGBA
	TransparentBg     bool     `json:"transparent_background"`
	Antialias         bool     `json:"antialias"`
	DisableAutoRender bool     `json:"disable_auto_render"`
	ShowGrid          bool     `json:"show_grid"`
	ShowOrientation   bool     `json:"show_orientation"`
	Instancing        bool     `json:"instancing"`
	InstancingSort    bool     `json:"instancing_sort"`
	FOV               float32  `json:"fov"`

	// Câmera
	AutoOrbit         bool    `json:"auto_orbit"`
	OrbitSpeed        float32 `json:"orbit_speed"` // graus por segundo
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Arquivos de assets
	Archives ArchiveConfig `json:"archives"`

	// Servidor de assets (usado pelo cliente quando Archives.Remote está ligado)
	ServerURL  string `json:"server_url"`
	ServerAddr string `json:"server_addr"` // endereço de escuta do servidor

	// Sessão
	Seed           uint64 `json:"seed"`
	ResolveWorkers int    `json:"resolve_workers"` // 0 = número de CPUs
	CatalogPath    string `json:"catalog_path"`    // YAML de oclusão; vazio usa o embutido

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	WatchArchives bool `json:"watch_archives"` // limpa o cache quando pacotes em diretório mudam
}

// ArchiveConfig descreve os arquivos de assets em ordem de precedência.
type ArchiveConfig struct {
	// PrimaryByVersion mapeia o marcador de versão da estrutura ao arquivo primário
	PrimaryByVersion map[string]string `json:"primary_by_version"`
	// Fallback é usado para versões desconhecidas
	Fallback string `json:"fallback"`
	// Overlays entram depois do primário, em ordem
	Overlays []string `json:"overlays"`
	// Remote usa o servidor de assets como overlay final
	Remote bool `json:"remote"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "StructureVision",
		Fullscreen:   false,
		TargetFPS:    60,

		Background:      [4]uint8{30, 30, 35, 255},
		Antialias:       true,
		ShowGrid:        true,
		ShowOrientation: true,
		Instancing:      true,
		FOV:             45.0,

		OrbitSpeed:        10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		Archives: ArchiveConfig{
			PrimaryByVersion: map[string]string{},
			Fallback:         "assets",
		},

		ServerURL:  "ws://127.0.0.1:8080/ws",
		ServerAddr: ":8080",

		Seed: 1,

		ShowDebugInfo: true,
	}
}

// Path retorna o caminho do arquivo de configuração, ao lado do executável.
func Path() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do arquivo ao lado do executável.
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFile(Path())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile carrega as configurações de um arquivo JSON. Campos ausentes ficam com o padrão.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler configuração %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("falha ao decodificar configuração %s: %w", path, err)
	}

	return cfg, nil
}

// Save salva as configurações ao lado do executável.
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile salva as configurações em um arquivo JSON.
func (c *Config) SaveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
