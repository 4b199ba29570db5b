package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/shared/util"
)

// Grid é o plano de chão desenhado logo abaixo da estrutura.
type Grid struct {
	Enabled bool
	// Extent é o lado do quadrado, em blocos (maior dimensão horizontal + margem).
	Extent int
	// Y é a altura do plano no espaço do mundo (base da estrutura centralizada).
	Y float32
	// Height é a altura da estrutura para a qual o plano foi dimensionado.
	Height int
}

// Orientation é o marcador de direção (eixo norte) posicionado na borda da estrutura.
type Orientation struct {
	Enabled  bool
	Position mgl32.Vec3
	Length   float32
}

// Decorations agrupa os elementos que dependem do tamanho da estrutura.
type Decorations struct {
	mu          sync.RWMutex
	grid        Grid
	orientation Orientation
}

const gridMargin = 2

// NewDecorations cria decorações desabilitadas para uma estrutura vazia.
func NewDecorations() *Decorations {
	return &Decorations{}
}

// Enable liga ou desliga cada decoração.
func (d *Decorations) Enable(grid, orientation bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grid.Enabled = grid
	d.orientation.Enabled = orientation
}

// Resize redimensiona as decorações para a estrutura de tamanho size.
func (d *Decorations) Resize(size util.Size) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.grid.Height = size.Height
	d.grid.Y = -float32(size.Height) / 2
	d.grid.Extent = max(size.Width, size.Length) + gridMargin

	// Norte = -Z: o marcador fica além da face norte
	d.orientation.Position = mgl32.Vec3{0, d.grid.Y, -float32(size.Length)/2 - 1}
	d.orientation.Length = max(1, float32(size.MaxDim())/4)
}

// Grid retorna uma cópia do estado do plano.
func (d *Decorations) Grid() Grid {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.grid
}

// Orientation retorna uma cópia do estado do marcador.
func (d *Decorations) Orientation() Orientation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.orientation
}
