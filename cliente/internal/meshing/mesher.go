package meshing

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/shared/util"
)

// GeometryData contém os buffers de vértices para uma malha.
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
	UVs      []float32
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{}
	if len(g.Vertices) > 0 {
		clone.Vertices = make([]float32, len(g.Vertices))
		copy(clone.Vertices, g.Vertices)
	}
	if len(g.Normals) > 0 {
		clone.Normals = make([]float32, len(g.Normals))
		copy(clone.Normals, g.Normals)
	}
	if len(g.Colors) > 0 {
		clone.Colors = make([]uint8, len(g.Colors))
		copy(clone.Colors, g.Colors)
	}
	if len(g.UVs) > 0 {
		clone.UVs = make([]float32, len(g.UVs))
		copy(clone.UVs, g.UVs)
	}
	return clone
}

// VertexCount retorna o número de vértices.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// Global Poll para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure)
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{
			Geometry: GeometryData{
				Vertices: make([]float32, 0, 1024),
				Normals:  make([]float32, 0, 1024),
				Colors:   make([]uint8, 0, 1024),
				UVs:      make([]float32, 0, 1024),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio para meshing.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera os ponteiros e devolve a memória para o Pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Geometry.Vertices = b.Geometry.Vertices[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.Colors = b.Geometry.Colors[:0]
	b.Geometry.UVs = b.Geometry.UVs[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer auxilia na construção de malhas dinâmicas.
type MeshBuffer struct {
	Geometry GeometryData
}

// AddFaceUV adiciona uma face (quad) ao buffer com coordenadas UV.
// Os cantos devem vir em ordem anti-horária vista de fora.
func (b *MeshBuffer) AddFaceUV(v1, v2, v3, v4 [3]float32, uv1, uv2, uv3, uv4 [2]float32, n [3]float32, c [4]uint8) {
	// Triângulo 1 (v1, v2, v3)
	b.addVertexUV(v1, uv1, n, c)
	b.addVertexUV(v2, uv2, n, c)
	b.addVertexUV(v3, uv3, n, c)

	// Triângulo 2 (v1, v3, v4)
	b.addVertexUV(v1, uv1, n, c)
	b.addVertexUV(v3, uv3, n, c)
	b.addVertexUV(v4, uv4, n, c)
}

func (b *MeshBuffer) addVertexUV(v [3]float32, uv [2]float32, n [3]float32, c [4]uint8) {
	b.Geometry.Vertices = append(b.Geometry.Vertices, v[0], v[1], v[2])
	b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
	b.Geometry.UVs = append(b.Geometry.UVs, uv[0], uv[1])
}

// --- Texturas e templates ---

// Texture é a imagem de uma textura como veio do arquivo (PNG).
// Data nil indica textura ausente; o renderer usa um padrão de fallback.
type Texture struct {
	Name     string
	Data     []byte
	Width    int
	Height   int
	Animated bool
}

// FrameScale é a fração vertical ocupada pelo primeiro quadro de uma tira animada.
func (t *Texture) FrameScale() float32 {
	if t == nil || t.Width <= 0 || t.Height <= t.Width {
		return 1
	}
	return float32(t.Width) / float32(t.Height)
}

// Template é a geometria compartilhada de um modelo (por textura). Fragments apenas
// referenciam o template; o descarte é feito uma vez, pelo Resolver.
type Template struct {
	Key                templateKey
	MaterialGeometries map[string]GeometryData // geometria separada por nome de textura
	Textures           map[string]*Texture

	mu        sync.Mutex
	disposed  bool
	onDispose []func()
}

// OnDispose registra um callback (ex.: liberar recursos de GPU) executado no descarte.
// Se o template já foi descartado, o callback roda imediatamente.
func (t *Template) OnDispose(fn func()) {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		fn()
		return
	}
	t.onDispose = append(t.onDispose, fn)
	t.mu.Unlock()
}

// Dispose libera o template. Chamadas repetidas são ignoradas.
func (t *Template) Dispose() {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	t.disposed = true
	hooks := t.onDispose
	t.onDispose = nil
	t.MaterialGeometries = nil
	t.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Disposed indica se o template já foi liberado.
func (t *Template) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

// Geometries retorna a geometria por textura, ou nil se o template já foi descartado.
func (t *Template) Geometries() map[string]GeometryData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.MaterialGeometries
}

// ModelName retorna o nome do modelo que originou o template.
func (t *Template) ModelName() string {
	return t.Key.Model
}

// --- Fragments ---

// Fragment é uma instância leve de um template: referência + transformação.
// A transformação de mundo é definida uma única vez, em Place.
type Fragment struct {
	Template *Template
	Local    mgl32.Mat4 // rotação do variant em torno do centro do bloco
	Pos      util.Pos

	world     mgl32.Mat4
	finalized bool
	disposed  atomic.Bool
}

// Place posiciona o fragmento no mundo e congela a transformação.
// Retorna false se o fragmento já havia sido posicionado.
func (f *Fragment) Place(pos util.Pos, offset mgl32.Vec3) bool {
	if f.finalized {
		return false
	}
	f.Pos = pos
	f.world = mgl32.Translate3D(offset.X(), offset.Y(), offset.Z()).Mul4(f.Local)
	f.finalized = true
	return true
}

// Transform retorna a matriz de mundo congelada.
func (f *Fragment) Transform() mgl32.Mat4 {
	return f.world
}

// Translation retorna a posição de mundo do centro do fragmento.
func (f *Fragment) Translation() mgl32.Vec3 {
	return f.world.Col(3).Vec3()
}

// Finalized indica se Place já foi chamado.
func (f *Fragment) Finalized() bool {
	return f.finalized
}

// Dispose marca o fragmento como descartado. O template é liberado pelo Resolver.
func (f *Fragment) Dispose() {
	f.disposed.Store(true)
}

// Disposed indica se o fragmento foi descartado.
func (f *Fragment) Disposed() bool {
	return f.disposed.Load()
}
