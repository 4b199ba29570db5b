// Package render exibe a cena com raylib: upload de templates, desenho
// instanciado e decorações. Todas as chamadas de GPU acontecem em Render,
// no thread da janela; Add/Remove só registram o pedido.
package render

import (
	"log"
	"sync"
	"unsafe"

	"StructureVision/cliente/internal/meshing"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Options são fixadas na criação da cena.
type Options struct {
	// Instancing usa DrawMeshInstanced (1 draw call por malha)
	Instancing bool
	// InstancingSort ordena as instâncias por distância à câmera a cada frame
	InstancingSort bool
	Fovy           float32
}

// Scene implementa scene.Scene sobre raylib.
type Scene struct {
	mu   sync.Mutex
	opts Options

	batches  map[*meshing.Template]*InstanceBatch
	index    map[*meshing.Fragment]*InstanceBatch
	pending  []*TemplateModel // aguardando upload
	unloads  []*TemplateModel // aguardando liberação
	textures map[*meshing.Texture]*TextureRef

	width, height int
	resize        bool
	background    scene.Background
	decorations   *scene.Decorations
	camera        *scene.Orbit
	disposed      bool

	blockShader          rl.Shader
	blockInstancedShader rl.Shader

	drawCalls int
}

var _ scene.Scene = (*Scene)(nil)

// NewScene cria a cena. A janela raylib já deve estar aberta.
func NewScene(width, height int, opts Options) *Scene {
	if opts.Fovy == 0 {
		opts.Fovy = 45
	}
	s := &Scene{
		opts:        opts,
		batches:     make(map[*meshing.Template]*InstanceBatch),
		index:       make(map[*meshing.Fragment]*InstanceBatch),
		textures:    make(map[*meshing.Texture]*TextureRef),
		width:       width,
		height:      height,
		background:  scene.DefaultBackground,
		decorations: scene.NewDecorations(),
		camera:      scene.NewOrbit(),
	}

	if rl.IsWindowReady() {
		s.blockShader = rl.LoadShaderFromMemory(blockVertexShader, blockFragmentShader)
		s.blockInstancedShader = rl.LoadShaderFromMemory(blockInstancedVertexShader, blockFragmentShader)

		// Locs aponta para um array em C (32 int32)
		locs := unsafe.Slice(s.blockShader.Locs, 32)
		locs[rl.ShaderLocMatrixModel] = rl.GetShaderLocation(s.blockShader, "matModel")
		locsI := unsafe.Slice(s.blockInstancedShader.Locs, 32)
		locsI[rl.ShaderLocMatrixMvp] = rl.GetShaderLocation(s.blockInstancedShader, "mvp")
		locsI[rl.ShaderLocMatrixModel] = rl.GetShaderLocationAttrib(s.blockInstancedShader, "instanceTransform")
	}

	log.Printf("[Renderer] Cena criada %dx%d (instancing=%v, sort=%v)", width, height, opts.Instancing, opts.InstancingSort)
	return s
}

// Add registra o fragment; o template é enviado à GPU no próximo Render.
func (s *Scene) Add(f *meshing.Fragment) bool {
	if f == nil || f.Template == nil || f.Disposed() {
		return false
	}
	t := f.Template

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return false
	}
	batch, ok := s.batches[t]
	if !ok {
		tm := &TemplateModel{Template: t}
		batch = newInstanceBatch(tm)
		s.batches[t] = batch
		s.pending = append(s.pending, tm)
	}
	batch.add(f)
	s.index[f] = batch
	s.mu.Unlock()

	if !ok {
		// Fora do lock: o callback roda na hora se o template já foi descartado
		t.OnDispose(func() { s.templateDisposed(t) })
	}
	return true
}

// Remove tira o fragment da cena. A malha só é liberada quando o template for descartado.
func (s *Scene) Remove(f *meshing.Fragment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	batch, ok := s.index[f]
	if !ok {
		return false
	}
	delete(s.index, f)
	return batch.remove(f)
}

func (s *Scene) templateDisposed(t *meshing.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[t]
	if !ok {
		return
	}
	for f := range batch.Fragments {
		delete(s.index, f)
	}
	delete(s.batches, t)
	s.unloads = append(s.unloads, batch.Model)
}

func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Render processa uploads e liberações pendentes e desenha a passada 3D.
// Deve ser chamado entre BeginDrawing e EndDrawing, no thread da janela.
func (s *Scene) Render() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.processUnloads()
	if s.disposed {
		return false
	}
	if s.resize {
		rl.SetWindowSize(s.width, s.height)
		s.resize = false
	}
	for _, tm := range s.pending {
		if !tm.Uploaded {
			s.uploadTemplate(tm)
		}
	}
	s.pending = s.pending[:0]

	if s.background.Transparent {
		rl.ClearBackground(rl.Blank)
	} else {
		bg := s.background
		rl.ClearBackground(rl.NewColor(bg.R, bg.G, bg.B, bg.A))
	}

	cam := s.camera3D()
	camPos := s.camera.Position()
	rl.BeginMode3D(cam)
	s.drawDecorations()

	instanced := s.opts.Instancing && s.blockInstancedShader.ID != 0
	s.drawCalls = 0
	for _, b := range s.batches {
		if !b.Model.Uploaded {
			continue
		}
		b.rebuild(camPos, false)
		b.Draw(false, instanced)
		s.drawCalls += len(b.Model.Parts)
	}

	// Transparentes depois dos opacos, de trás para frente se pedido
	rl.BeginBlendMode(rl.BlendAlpha)
	for _, b := range s.batches {
		if !b.Model.Uploaded {
			continue
		}
		if s.opts.InstancingSort {
			b.rebuild(camPos, true)
		}
		b.Draw(true, instanced)
	}
	rl.EndBlendMode()

	rl.EndMode3D()
	return true
}

func (s *Scene) processUnloads() {
	for _, tm := range s.unloads {
		s.unloadTemplate(tm)
	}
	s.unloads = s.unloads[:0]
}

func (s *Scene) camera3D() rl.Camera3D {
	pos := s.camera.Position()
	target := s.camera.LookAt()
	return rl.Camera3D{
		Position:   vec3(pos),
		Target:     vec3(target),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       s.opts.Fovy,
		Projection: rl.CameraPerspective,
	}
}

// Camera3D retorna a câmera raylib atual (usada pelo app para picking).
func (s *Scene) Camera3D() rl.Camera3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera3D()
}

func (s *Scene) drawDecorations() {
	if g := s.decorations.Grid(); g.Enabled && g.Extent > 0 {
		rl.PushMatrix()
		rl.Translatef(0, g.Y, 0)
		rl.DrawGrid(int32(g.Extent), 1.0)
		rl.PopMatrix()
	}
	if o := s.decorations.Orientation(); o.Enabled {
		tip := o.Position.Add(mgl32.Vec3{0, 0, -o.Length})
		rl.DrawLine3D(vec3(o.Position), vec3(tip), rl.Red)
		rl.DrawSphere(vec3(tip), 0.1*o.Length, rl.Red)
	}
}

func vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Resize guarda o novo tamanho; a janela é ajustada no próximo Render.
func (s *Scene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || width <= 0 || height <= 0 {
		return
	}
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.resize = true
}

// WindowResized atualiza o tamanho quando a janela foi redimensionada pelo usuário.
func (s *Scene) WindowResized(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

func (s *Scene) Bounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Scene) SetBackground(bg scene.Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
}

func (s *Scene) Decorations() *scene.Decorations { return s.decorations }

func (s *Scene) Camera() *scene.Orbit { return s.camera }

// DrawCalls retorna o número de malhas desenhadas no último frame.
func (s *Scene) DrawCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawCalls
}

// Dispose marca a cena como descartada; a GPU é liberada no próximo Render ou em Unload.
func (s *Scene) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	for t, b := range s.batches {
		s.unloads = append(s.unloads, b.Model)
		delete(s.batches, t)
	}
	clear(s.index)
	s.pending = nil
}

func (s *Scene) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Unload libera tudo na GPU, inclusive shaders. Chamar antes de fechar a janela.
func (s *Scene) Unload() {
	s.Dispose()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processUnloads()
	for _, ref := range s.textures {
		rl.UnloadTexture(ref.Texture)
	}
	clear(s.textures)
	if s.blockShader.ID != 0 {
		rl.UnloadShader(s.blockShader)
		s.blockShader = rl.Shader{}
	}
	if s.blockInstancedShader.ID != 0 {
		rl.UnloadShader(s.blockInstancedShader)
		s.blockInstancedShader = rl.Shader{}
	}
	log.Printf("[Renderer] Recursos de GPU liberados")
}

// FitCamera enquadra a estrutura de tamanho size.
func (s *Scene) FitCamera(size util.Size) {
	s.camera.Fit(size)
}
