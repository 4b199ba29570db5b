// Package scene define a superfície de exibição usada pela sessão e uma
// implementação headless, sem GPU, usada por testes e pelo builder.
package scene

import (
	"sync"

	"StructureVision/cliente/internal/meshing"
)

// Background é a cor de fundo da cena. Transparent ignora a cor.
type Background struct {
	R, G, B, A  uint8
	Transparent bool
}

// DefaultBackground é o cinza escuro do visualizador.
var DefaultBackground = Background{R: 30, G: 30, B: 35, A: 255}

// Scene é a superfície onde os fragmentos posicionados são exibidos.
// Add/Remove/Render depois de Dispose são no-ops e retornam false.
type Scene interface {
	Add(f *meshing.Fragment) bool
	Remove(f *meshing.Fragment) bool
	Len() int
	Render() bool
	Resize(width, height int)
	Bounds() (width, height int)
	SetBackground(bg Background)
	Decorations() *Decorations
	Camera() *Orbit
	Dispose()
	Disposed() bool
}

// HeadlessScene guarda o conjunto de fragmentos sem desenhar nada.
// Conta frames para que o ciclo de render possa ser verificado.
type HeadlessScene struct {
	mu          sync.Mutex
	fragments   map[*meshing.Fragment]struct{}
	frames      int
	width       int
	height      int
	background  Background
	decorations *Decorations
	camera      *Orbit
	disposed    bool
}

// NewHeadlessScene cria uma cena vazia com as dimensões dadas.
func NewHeadlessScene(width, height int) *HeadlessScene {
	return &HeadlessScene{
		fragments:   make(map[*meshing.Fragment]struct{}),
		width:       width,
		height:      height,
		background:  DefaultBackground,
		decorations: NewDecorations(),
		camera:      NewOrbit(),
	}
}

func (s *HeadlessScene) Add(f *meshing.Fragment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || f == nil || f.Disposed() {
		return false
	}
	s.fragments[f] = struct{}{}
	return true
}

func (s *HeadlessScene) Remove(f *meshing.Fragment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	if _, ok := s.fragments[f]; !ok {
		return false
	}
	delete(s.fragments, f)
	return true
}

func (s *HeadlessScene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fragments)
}

// Contains indica se o fragmento está na cena.
func (s *HeadlessScene) Contains(f *meshing.Fragment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fragments[f]
	return ok
}

// Render conta um frame.
func (s *HeadlessScene) Render() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.frames++
	return true
}

// Frames retorna quantos frames foram renderizados.
func (s *HeadlessScene) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *HeadlessScene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
}

func (s *HeadlessScene) Bounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *HeadlessScene) SetBackground(bg Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
}

// Background retorna o fundo atual.
func (s *HeadlessScene) Background() Background {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

func (s *HeadlessScene) Decorations() *Decorations { return s.decorations }

func (s *HeadlessScene) Camera() *Orbit { return s.camera }

// Dispose esvazia a cena. Chamadas seguintes são ignoradas.
func (s *HeadlessScene) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	clear(s.fragments)
}

func (s *HeadlessScene) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
