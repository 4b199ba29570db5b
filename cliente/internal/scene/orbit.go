package scene

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/shared/util"
)

// Orbit é a câmera orbital em torno do centro da estrutura.
// Sem dependência de janela: o controlador de entrada do app só altera os alvos.
type Orbit struct {
	mu sync.Mutex

	// Configurações
	MinZoom      float32
	MaxZoom      float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)

	// Auto-órbita: graus por segundo em torno do eixo Y
	AutoOrbit bool
	Speed     float32

	// Estado alvo (para interpolação suave)
	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	TargetAngleY float32 // Azimute (radianos)
	TargetAngleX float32 // Elevação (radianos, negativo olha de cima)

	// Estado atual (interpolado)
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32
	CurrentAngleY float32
}

const (
	minElevation = -89.0 * math.Pi / 180
	maxElevation = -5.0 * math.Pi / 180
)

// NewOrbit cria uma câmera no ângulo isométrico padrão.
func NewOrbit() *Orbit {
	o := &Orbit{
		MinZoom:      2.0,
		MaxZoom:      400.0,
		SmoothFactor: 0.1,
		Speed:        10.0,
		TargetZoom:   20.0,
		TargetAngleY: 45.0 * math.Pi / 180,  // 45 graus (padrão isométrico)
		TargetAngleX: -30.0 * math.Pi / 180, // -30 graus (olhando de cima)
	}
	o.snap()
	return o
}

func (o *Orbit) snap() {
	o.CurrentLookAt = o.TargetLookAt
	o.CurrentZoom = o.TargetZoom
	o.CurrentAngleY = o.TargetAngleY
}

// Fit enquadra uma estrutura de tamanho size, centralizada na origem, sem suavização.
func (o *Orbit) Fit(size util.Size) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TargetLookAt = mgl32.Vec3{}
	o.TargetZoom = util.Clamp(float32(size.MaxDim())*1.5+2, o.MinZoom, o.MaxZoom)
	o.snap()
}

// Rotate soma deltas (radianos) aos ângulos alvo, limitando a elevação.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TargetAngleY += dYaw
	o.TargetAngleX = util.Clamp(o.TargetAngleX+dPitch, minElevation, maxElevation)
}

// Zoom altera a distância alvo, limitada a [MinZoom, MaxZoom].
func (o *Orbit) Zoom(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TargetZoom = util.Clamp(o.TargetZoom+delta, o.MinZoom, o.MaxZoom)
}

// Pan desloca o ponto observado.
func (o *Orbit) Pan(delta mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.TargetLookAt = o.TargetLookAt.Add(delta)
}

// Distance retorna o zoom atual.
func (o *Orbit) Distance() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.CurrentZoom
}

// SetAutoOrbit liga a rotação contínua com a velocidade dada (graus/s).
func (o *Orbit) SetAutoOrbit(enabled bool, speed float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.AutoOrbit = enabled
	if speed != 0 {
		o.Speed = speed
	}
}

// Update avança a auto-órbita e interpola o estado atual em direção aos alvos.
// Deve ser chamado a cada frame.
func (o *Orbit) Update(dt float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.AutoOrbit {
		o.TargetAngleY += o.Speed * dt * math.Pi / 180
	}

	factor := min(o.SmoothFactor*60.0*dt, 1.0) // Normaliza para 60 FPS
	o.CurrentLookAt = o.CurrentLookAt.Add(o.TargetLookAt.Sub(o.CurrentLookAt).Mul(factor))
	o.CurrentZoom = util.Lerp(o.CurrentZoom, o.TargetZoom, factor)
	o.CurrentAngleY = util.Lerp(o.CurrentAngleY, o.TargetAngleY, factor)
}

// Position retorna a posição da câmera a partir dos ângulos e zoom atuais.
func (o *Orbit) Position() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position()
}

func (o *Orbit) position() mgl32.Vec3 {
	// Conversão esférica -> cartesiana; Y é UP
	cosX := float32(math.Cos(float64(o.TargetAngleX)))
	sinX := float32(math.Sin(float64(o.TargetAngleX)))
	cosY := float32(math.Cos(float64(o.CurrentAngleY)))
	sinY := float32(math.Sin(float64(o.CurrentAngleY)))

	offset := mgl32.Vec3{
		o.CurrentZoom * cosX * sinY,
		o.CurrentZoom * -sinX,
		o.CurrentZoom * cosX * cosY,
	}
	return o.CurrentLookAt.Add(offset)
}

// LookAt retorna o ponto observado.
func (o *Orbit) LookAt() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.CurrentLookAt
}

// View retorna a matriz de visão.
func (o *Orbit) View() mgl32.Mat4 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return mgl32.LookAtV(o.position(), o.CurrentLookAt, mgl32.Vec3{0, 1, 0})
}
