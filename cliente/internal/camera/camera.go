package camera

import (
	"StructureVision/cliente/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Controller traduz mouse e teclado em comandos para a câmera orbital da cena.
type Controller struct {
	Orbit       *scene.Orbit
	MoveSpeed   float32
	RotateSpeed float32
	ZoomSpeed   float32
}

// New cria um controlador sobre a órbita dada.
func New(orbit *scene.Orbit, zoomSpeed, sensitivity float32) *Controller {
	return &Controller{
		Orbit:       orbit,
		MoveSpeed:   20.0,
		RotateSpeed: sensitivity * 6.0,
		ZoomSpeed:   zoomSpeed,
	}
}

// HandleInput processa entrada do usuário. Retorna true se houve input de movimento.
func (c *Controller) HandleInput(dt float32) bool {
	moved := false

	// Zoom com Scroll
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Orbit.Zoom(-wheel * c.ZoomSpeed)
		moved = true
	}

	// Rotação com botão esquerdo (Orbit)
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			c.Orbit.Rotate(-delta.X*c.RotateSpeed*0.005, -delta.Y*c.RotateSpeed*0.005)
			moved = true
		}
	}

	// Movimento WASD relativo à câmera, projetado no plano XZ
	forward := c.Orbit.LookAt().Sub(c.Orbit.Position())
	forward[1] = 0
	if forward.Len() == 0 {
		return moved
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	// Quanto mais longe, mais rápido
	speed := c.MoveSpeed * (c.Orbit.Distance() / 50.0) * dt

	move := mgl32.Vec3{}
	if rl.IsKeyDown(rl.KeyW) {
		move = move.Add(forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = move.Sub(forward)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = move.Add(right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = move.Sub(right)
	}
	if rl.IsKeyDown(rl.KeyE) {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if rl.IsKeyDown(rl.KeyQ) {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}

	if move.Len() > 0 {
		c.Orbit.Pan(move.Normalize().Mul(speed))
		moved = true
	}
	return moved
}
