// Package session coordena a exibição de estruturas: popula o cache de modelos,
// monta os fragmentos visíveis na cena e troca de estrutura sem perder o que
// já foi resolvido.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"StructureVision/cliente/internal/assets"
	"StructureVision/cliente/internal/meshing"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/mapdata"
	"StructureVision/shared/util"
)

var (
	// ErrDisposed é retornado por operações em uma sessão já descartada.
	ErrDisposed = errors.New("sessão descartada")
	// ErrBusy é retornado por TrySwap quando outra troca está em andamento.
	ErrBusy = errors.New("troca de estrutura em andamento")
)

// State é a fase do ciclo de vida da sessão.
type State int32

const (
	StateIdle State = iota
	StatePopulating
	StateAssembling
	StateRendering
	StateSwapping
	StateDisposed
)

var stateNames = [...]string{"idle", "populating", "assembling", "rendering", "swapping", "disposed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats resume a última montagem e os caches (HUD de debug).
type Stats struct {
	Fragments int
	Lookup    int
	Templates int
	Builds    int64
	Resolves  int64
	Visible   int
	Culled    int
	Faces     int // faces expostas; só contadas com Options.Debug
	Store     assets.StoreStats
}

// Session é dona da store, do cache de lookup e do conjunto de fragmentos ativos.
type Session struct {
	id       string
	opts     Options
	store    *assets.Store
	states   *assets.StateSource
	resolver *meshing.Resolver
	culler   *meshing.Culler
	surface  scene.Scene

	state      atomic.Int32
	disposed   atomic.Bool
	autoRender atomic.Bool

	// swapMu serializa Load/Assemble/Swap: um único escritor nos caches
	swapMu sync.Mutex

	lookupMu sync.RWMutex
	lookup   map[meshing.BlockVisualKey]*meshing.BlockModelData

	meshMu    sync.Mutex
	fragments []*meshing.Fragment
	visible   int
	culled    int
	faces     int
}

// New cria uma sessão sobre a store e a superfície dadas. surface nil usa uma
// cena headless; catalog nil usa o catálogo de oclusão embutido.
func New(store *assets.Store, surface scene.Scene, catalog *assets.Catalog, opts Options) *Session {
	if surface == nil {
		surface = scene.NewHeadlessScene(max(opts.Width, 1), max(opts.Height, 1))
	}
	s := &Session{
		id:       uuid.NewString(),
		opts:     opts,
		store:    store,
		states:   assets.NewStateSource(store),
		resolver: meshing.NewResolver(store, opts.Seed),
		culler:   meshing.NewCuller(catalog),
		surface:  surface,
		lookup:   make(map[meshing.BlockVisualKey]*meshing.BlockModelData),
	}

	surface.SetBackground(opts.Background)
	surface.Decorations().Enable(opts.ShowGrid, opts.ShowOrientation)
	surface.Camera().SetAutoOrbit(opts.AutoOrbit, opts.OrbitSpeed)
	if opts.Width > 0 && opts.Height > 0 {
		surface.Resize(opts.Width, opts.Height)
	}
	s.autoRender.Store(!opts.DisableAutoRender)

	log.Printf("[Session] %s criada (%d arquivos, seed %d)", s.tag(), len(store.Archives()), opts.Seed)
	return s
}

func (s *Session) tag() string {
	return s.id[:8]
}

// ID retorna o identificador da sessão.
func (s *Session) ID() string { return s.id }

// State retorna a fase atual.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	if s.disposed.Load() {
		return
	}
	s.state.Store(int32(st))
}

// Surface retorna a cena subjacente, para integração avançada.
func (s *Session) Surface() scene.Scene { return s.surface }

// Store retorna a store de assets da sessão.
func (s *Session) Store() *assets.Store { return s.store }

// Resolver retorna o resolver da sessão.
func (s *Session) Resolver() *meshing.Resolver { return s.resolver }

// Options retorna as opções da sessão.
func (s *Session) Options() Options { return s.opts }

// Load popula o cache de lookup para todos os tipos da estrutura ainda ausentes.
func (s *Session) Load(ctx context.Context, st *mapdata.Structure) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if err := st.Validate(); err != nil {
		return err
	}
	s.swapMu.Lock()
	defer s.swapMu.Unlock()
	return s.load(ctx, st)
}

// Assemble monta os fragmentos visíveis da estrutura na cena.
// Load deve ter rodado antes para a mesma estrutura.
func (s *Session) Assemble(ctx context.Context, st *mapdata.Structure) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if err := st.Validate(); err != nil {
		return err
	}
	s.swapMu.Lock()
	defer s.swapMu.Unlock()
	return s.assemble(ctx, st)
}

func (s *Session) load(ctx context.Context, st *mapdata.Structure) error {
	s.setState(StatePopulating)

	pending := s.missingTypes(st)
	if len(pending) == 0 {
		return nil
	}
	log.Printf("[Session] %s resolvendo %d tipos de bloco", s.tag(), len(pending))

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(s.opts.workers())
	for _, b := range pending {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] Erro ao resolver %s: %v", b, r)
					mu.Lock()
					errs = append(errs, fmt.Errorf("panic ao resolver %s: %v", b, r))
					mu.Unlock()
				}
			}()
			if err := s.resolveType(ctx, b); err != nil {
				log.Printf("[Session] %s %v", s.tag(), err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if s.disposed.Load() {
		return ErrDisposed
	}
	return errors.Join(errs...)
}

// missingTypes retorna um bloco por chave ainda não resolvida, na ordem da paleta.
func (s *Session) missingTypes(st *mapdata.Structure) []mapdata.Block {
	s.lookupMu.RLock()
	defer s.lookupMu.RUnlock()

	seen := make(map[meshing.BlockVisualKey]bool)
	var out []mapdata.Block
	for _, b := range st.BlockTypes() {
		key := meshing.KeyOf(b)
		if _, ok := s.lookup[key]; ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

func (s *Session) resolveType(ctx context.Context, b mapdata.Block) error {
	def, err := s.states.Get(ctx, b.Name)
	if err != nil {
		return fmt.Errorf("falha ao carregar blockstate de %s: %w", b.Name, err)
	}
	data, err := s.resolver.Resolve(ctx, b, def)
	if err != nil {
		return fmt.Errorf("falha ao resolver %s: %w", b, err)
	}
	if s.disposed.Load() {
		return nil
	}

	s.lookupMu.Lock()
	s.lookup[data.Key] = data
	s.lookupMu.Unlock()
	return nil
}

func (s *Session) lookupData(key meshing.BlockVisualKey) (*meshing.BlockModelData, bool) {
	s.lookupMu.RLock()
	defer s.lookupMu.RUnlock()
	data, ok := s.lookup[key]
	return data, ok
}

func (s *Session) assemble(ctx context.Context, st *mapdata.Structure) error {
	s.setState(StateAssembling)
	s.resolver.Reseed()

	size := st.Size()
	center := size.Center()
	var errs []error
	visible, culled, unresolved, faces := 0, 0, 0, 0

	for y := 0; y < size.Height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for z := 0; z < size.Length; z++ {
			for x := 0; x < size.Width; x++ {
				pos := util.NewPos(x, y, z)
				b, ok := st.Block(pos)
				if !ok {
					continue
				}
				if s.opts.Debug {
					n := s.culler.ExposedFaces(st, pos, b)
					if n == 0 {
						culled++
						continue
					}
					faces += n
				} else if !s.culler.NeedsGeometry(st, pos, b) {
					culled++
					continue
				}
				data, ok := s.lookupData(meshing.KeyOf(b))
				if !ok {
					unresolved++
					continue
				}
				if data.Empty() {
					continue
				}

				frags, err := s.resolver.Materialize(ctx, s.resolver.SelectVariant(data), b)
				if err != nil {
					errs = append(errs, fmt.Errorf("falha ao materializar %s em %v: %w", b, pos, err))
					continue
				}
				offset := mgl32.Vec3{center[0] + float32(x), center[1] + float32(y), center[2] + float32(z)}
				for _, f := range frags {
					f.Place(pos, offset)
				}
				if !s.addFragments(frags) {
					return s.abandon()
				}
				visible++
			}
		}
	}

	if s.disposed.Load() {
		return s.abandon()
	}

	s.meshMu.Lock()
	s.visible, s.culled, s.faces = visible, culled, faces
	total := len(s.fragments)
	s.meshMu.Unlock()

	if unresolved > 0 {
		log.Printf("[Session] %s %d voxels sem modelo resolvido foram ignorados", s.tag(), unresolved)
	}
	log.Printf("[Session] %s montagem concluída: %d voxels visíveis, %d ocultos, %d fragments",
		s.tag(), visible, culled, total)

	s.setState(StateRendering)
	return errors.Join(errs...)
}

// abandon descarta templates construídos depois que Dispose já limpou o resolver.
// Roda no escritor, após o último Materialize.
func (s *Session) abandon() error {
	s.resolver.Clear()
	return ErrDisposed
}

// addFragments adiciona à cena e ao conjunto ativo. Retorna false se a sessão foi descartada.
func (s *Session) addFragments(frags []*meshing.Fragment) bool {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	if s.disposed.Load() {
		for _, f := range frags {
			f.Dispose()
		}
		return false
	}
	for _, f := range frags {
		if s.surface.Add(f) {
			s.fragments = append(s.fragments, f)
		}
	}
	return true
}

func (s *Session) clearFragments() int {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	n := len(s.fragments)
	for _, f := range s.fragments {
		s.surface.Remove(f)
		f.Dispose()
	}
	s.fragments = nil
	s.visible, s.culled, s.faces = 0, 0, 0
	return n
}

// Swap substitui a estrutura exibida. Bloqueia enquanto outra troca estiver em andamento.
func (s *Session) Swap(ctx context.Context, st *mapdata.Structure) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if err := st.Validate(); err != nil {
		return err
	}
	s.swapMu.Lock()
	defer s.swapMu.Unlock()
	return s.swap(ctx, st)
}

// TrySwap é como Swap, mas retorna ErrBusy em vez de esperar outra troca.
func (s *Session) TrySwap(ctx context.Context, st *mapdata.Structure) error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	if err := st.Validate(); err != nil {
		return err
	}
	if !s.swapMu.TryLock() {
		return ErrBusy
	}
	defer s.swapMu.Unlock()
	return s.swap(ctx, st)
}

func (s *Session) swap(ctx context.Context, st *mapdata.Structure) error {
	s.autoRender.Store(false)
	s.setState(StateSwapping)

	removed := s.clearFragments()
	s.resolver.Clear()

	size := st.Size()
	s.surface.Decorations().Resize(size)
	s.surface.Camera().Fit(size)
	log.Printf("[Session] %s troca: %d fragments removidos, nova estrutura %dx%dx%d",
		s.tag(), removed, size.Width, size.Height, size.Length)

	loadErr := s.load(ctx, st)
	if s.disposed.Load() {
		return s.abandon()
	}
	asmErr := s.assemble(ctx, st)
	if s.disposed.Load() {
		return s.abandon()
	}

	s.autoRender.Store(!s.opts.DisableAutoRender)
	return errors.Join(loadErr, asmErr)
}

// Render desenha um frame. No-op após Dispose.
func (s *Session) Render() bool {
	if s.disposed.Load() {
		return false
	}
	return s.surface.Render()
}

// Tick avança a câmera e, com auto render ligado, desenha um frame.
// Chamado uma vez por atualização de tela; nunca espera por carregamento.
func (s *Session) Tick(dt float32) bool {
	if s.disposed.Load() {
		return false
	}
	s.surface.Camera().Update(dt)
	if !s.autoRender.Load() {
		return false
	}
	return s.surface.Render()
}

// AutoRender indica se Tick está desenhando frames.
func (s *Session) AutoRender() bool {
	return s.autoRender.Load()
}

// Resize ajusta a superfície para um quadrado dim x dim.
func (s *Session) Resize(dim int) {
	s.SetSize(dim, dim)
}

// SetSize ajusta a superfície.
func (s *Session) SetSize(width, height int) {
	if s.disposed.Load() {
		return
	}
	s.surface.Resize(width, height)
}

// Fragments retorna uma cópia do conjunto ativo.
func (s *Session) Fragments() []*meshing.Fragment {
	s.meshMu.Lock()
	defer s.meshMu.Unlock()
	out := make([]*meshing.Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// LookupLen retorna o número de entradas do cache de lookup.
func (s *Session) LookupLen() int {
	s.lookupMu.RLock()
	defer s.lookupMu.RUnlock()
	return len(s.lookup)
}

// Lookup retorna a entrada do cache para o bloco, se já resolvida.
func (s *Session) Lookup(b mapdata.Block) (*meshing.BlockModelData, bool) {
	return s.lookupData(meshing.KeyOf(b))
}

// Stats retorna contadores para o HUD.
func (s *Session) Stats() Stats {
	s.meshMu.Lock()
	st := Stats{Fragments: len(s.fragments), Visible: s.visible, Culled: s.culled, Faces: s.faces}
	s.meshMu.Unlock()

	st.Lookup = s.LookupLen()
	st.Templates = s.resolver.TemplateCount()
	st.Builds = s.resolver.Builds()
	st.Resolves = s.resolver.Resolves()
	st.Store = s.store.Stats()
	return st
}

// Dispose libera tudo o que a sessão possui. Chamadas seguintes são no-ops.
func (s *Session) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.state.Store(int32(StateDisposed))
	s.autoRender.Store(false)

	n := s.clearFragments()
	s.resolver.Clear()
	s.surface.Dispose()
	if err := s.store.Close(); err != nil {
		log.Printf("[Session] %s falha ao fechar arquivos: %v", s.tag(), err)
	}
	log.Printf("[Session] %s descartada (%d fragments liberados)", s.tag(), n)
}

// Disposed indica se Dispose já foi chamado.
func (s *Session) Disposed() bool {
	return s.disposed.Load()
}
