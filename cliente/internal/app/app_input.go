package app

import (
	"log"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera() {
	if a.Cam == nil {
		return
	}
	dt := rl.GetFrameTime()

	// Input manual interrompe a auto-órbita
	if a.Cam.HandleInput(dt) && a.Cam.Orbit.AutoOrbit && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		a.Cam.Orbit.SetAutoOrbit(false, 0)
	}

	// Reenquadrar com F
	if rl.IsKeyPressed(rl.KeyF) && a.scene != nil {
		a.scene.FitCamera(a.lastSize)
	}

	// Auto-órbita com O
	if rl.IsKeyPressed(rl.KeyO) {
		enabled := !a.Cam.Orbit.AutoOrbit
		a.Cam.Orbit.SetAutoOrbit(enabled, a.Config.OrbitSpeed)
		a.Config.AutoOrbit = enabled
		log.Printf("[Camera] Auto-órbita: %v", enabled)
	}
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	// Drag-and-drop de estruturas
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		for _, f := range files {
			switch strings.ToLower(filepath.Ext(f)) {
			case ".json", ".svz":
				a.Request(f)
			default:
				log.Printf("[App] Arquivo ignorado (formato não suportado): %s", f)
			}
		}
		rl.UnloadDroppedFiles()
	}

	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// Recarregar assets e estrutura
	if rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyF5) {
		a.reload()
	}

	// Salvar snapshot comprimido
	if rl.IsKeyPressed(rl.KeyF6) {
		a.saveSnapshot()
	}

	// Toggle grid e seta de orientação
	if a.scene != nil {
		deco := a.scene.Decorations()
		if rl.IsKeyPressed(rl.KeyG) {
			a.Config.ShowGrid = !a.Config.ShowGrid
			deco.Enable(a.Config.ShowGrid, a.Config.ShowOrientation)
		}
		if rl.IsKeyPressed(rl.KeyH) {
			a.Config.ShowOrientation = !a.Config.ShowOrientation
			deco.Enable(a.Config.ShowGrid, a.Config.ShowOrientation)
		}
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// ESC: Alternar Pausa/Menu
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StatePaused {
			a.resume()
			log.Println("[App] Retomando")
		} else {
			a.State = StatePaused
			log.Println("[App] Pausado")
		}
	}
}

func (a *App) resume() {
	if a.path == "" {
		a.State = StateLoading
		return
	}
	a.State = StateViewing
}
