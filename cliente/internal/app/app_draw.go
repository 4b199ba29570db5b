package app

import (
	"fmt"

	"StructureVision/cliente/internal/session"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza o frame. A sessão desenha a cena 3D; o app desenha o HUD por cima.
func (a *App) draw() {
	rl.BeginDrawing()

	sess := a.current()
	drawn := false
	if sess != nil {
		drawn = sess.Tick(rl.GetFrameTime())
	}
	if !drawn {
		rl.ClearBackground(rl.NewColor(30, 30, 40, 255))
	}

	if a.State == StateLoading {
		a.drawLoadingScreen()
	}
	a.drawHUD(sess)
	if a.State == StatePaused {
		a.drawPauseMenu()
	}

	rl.EndDrawing()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD(sess *session.Session) {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(340)
	height := int32(250)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)
	if a.swapping {
		rl.DrawText("CARREGANDO", x+200, y+10, 20, rl.Orange)
	}

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	// Estrutura
	rl.DrawText("ESTRUTURA", x+10, y+45, 12, rl.Gray)
	rl.DrawText(a.status, x+10, y+60, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Tamanho: %dx%dx%d  Versão: %q", a.lastSize.Width, a.lastSize.Height, a.lastSize.Length, a.version),
		x+10, y+80, 14, rl.LightGray)

	rl.DrawLine(x+10, y+100, x+width-10, y+100, rl.NewColor(100, 100, 100, 100))

	// Sessão e caches
	if sess != nil {
		st := sess.Stats()
		rl.DrawText(fmt.Sprintf("SESSÃO %s [%s]", sess.ID()[:8], sess.State()), x+10, y+110, 12, rl.Gray)
		rl.DrawText(fmt.Sprintf("Fragments: %d  Visíveis: %d  Ocultos: %d", st.Fragments, st.Visible, st.Culled), x+10, y+125, 14, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Tipos: %d  Templates: %d  Builds: %d", st.Lookup, st.Templates, st.Builds), x+10, y+142, 14, rl.LightGray)
		rl.DrawText(fmt.Sprintf("Store: %d lookups, %d fetches, %d degradados", st.Store.Lookups, st.Store.Fetches, st.Store.Degraded),
			x+10, y+159, 14, rl.LightGray)
		if a.scene != nil {
			rl.DrawText(fmt.Sprintf("Draw calls: %d  Faces: %d", a.scene.DrawCalls(), st.Faces), x+10, y+176, 14, rl.LightGray)
		}
	}
	if a.lastErr != nil {
		rl.DrawText("Erro: veja o log", x+200, y+176, 14, rl.Red)
	}

	rl.DrawLine(x+10, y+195, x+width-10, y+195, rl.NewColor(100, 100, 100, 100))

	// Atalhos Rápidos
	rl.DrawText("CONTROLES", x+10, y+203, 12, rl.Gray)
	rl.DrawText("Mouse: Girar | Scroll: Zoom | WASD/QE: Mover", x+10, y+216, 14, rl.LightGray)
	rl.DrawText("R: Recarregar | G/H: Grade/Eixo | O: Órbita | F: Enquadrar", x+10, y+232, 12, rl.SkyBlue)

	// Título no canto inferior direito
	title := "StructureVision v0.1.0"
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(250)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "PAUSA"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	buttonX := panelX + 50
	buttonWidth := panelWidth - 100
	buttonHeight := int32(40)

	if a.drawButton(buttonX, panelY+90, buttonWidth, buttonHeight, "RETOMAR (ESC)", rl.Green) {
		a.resume()
	}
	if a.drawButton(buttonX, panelY+145, buttonWidth, buttonHeight, "RECARREGAR (R)", rl.Gray) {
		a.reload()
		a.resume()
	}
}

// drawButton desenha um botão genérico com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R += 30
		drawColor.G += 30
		drawColor.B += 30
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}

func (a *App) drawLoadingScreen() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	title := "STRUCTUREVISION"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-60, 40, rl.Gold)

	statusWidth := rl.MeasureText(a.status, 18)
	rl.DrawText(a.status, (screenWidth-statusWidth)/2, screenHeight/2+10, 18, rl.LightGray)

	tip := "Arraste um arquivo .json ou .svz para a janela."
	tipWidth := rl.MeasureText(tip, 16)
	rl.DrawText(tip, (screenWidth-tipWidth)/2, screenHeight-50, 16, rl.Gray)
}
