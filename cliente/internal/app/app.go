package app

import (
	"context"
	"log"
	"sync"
	"time"

	"StructureVision/cliente/internal/camera"
	"StructureVision/cliente/internal/client"
	"StructureVision/cliente/internal/render"
	"StructureVision/cliente/internal/session"
	"StructureVision/shared/config"
	"StructureVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Aguardando a primeira estrutura
	StateViewing                 // Visualizando
	StatePaused                  // Menu de pausa
)

// loadRequest é um pedido de troca de estrutura.
type loadRequest struct {
	path   string
	queued time.Time
}

// App é a aplicação principal do StructureVision.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.Controller

	// Sessão atual e a cena raylib que ela desenha
	mu       sync.Mutex
	session  *session.Session
	scene    *render.Scene
	version  string    // versão da estrutura usada para montar a store
	path     string    // arquivo da estrutura exibida
	lastSize util.Size // dimensões da estrutura exibida

	remote *client.RemoteArchive

	// Pedidos de troca vindos de drag-and-drop/teclas, deduplicados por caminho
	requests *util.UniqueQueue[string, loadRequest]
	// Tarefas que precisam do thread da janela (liberação de GPU de sessões antigas)
	mainThread *util.ThreadSafeQueue[func()]
	swapping   bool

	ctx       context.Context
	cancel    context.CancelFunc
	stopWatch context.CancelFunc

	// Informações de debug
	frameCount int
	status     string
	lastErr    error
}

// New cria uma nova instância da aplicação. initial pode ser vazio.
func New(cfg *config.Config, initial string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:     cfg,
		State:      StateLoading,
		requests:   util.NewUniqueQueue[string, loadRequest](),
		mainThread: util.NewThreadSafeQueue[func()](),
		ctx:        ctx,
		cancel:     cancel,
		status:     "Arraste uma estrutura (.json/.svz) para a janela",
	}
	if initial != "" {
		a.Request(initial)
	}
	return a
}

// Request enfileira a troca para a estrutura do arquivo path.
func (a *App) Request(path string) {
	if a.requests.Enqueue(path, loadRequest{path: path, queued: time.Now()}) {
		log.Printf("[App] Troca solicitada: %s", path)
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	// Inicializar janela raylib
	flags := uint32(rl.FlagWindowResizable)
	if a.Config.Antialias {
		flags |= rl.FlagMsaa4xHint
	}
	if a.Config.TransparentBg {
		flags |= rl.FlagWindowTransparent
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	log.Println("[StructureVision] Janela inicializada com sucesso")
	log.Printf("[StructureVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	if a.Config.Archives.Remote {
		a.remote = client.NewRemoteArchive(a.Config.ServerURL)
		go a.pingServer()
	}

	// Sessão inicial vazia, com a versão padrão
	if err := a.replaceSession(""); err != nil {
		log.Printf("[App] ERRO ao montar a sessão inicial: %v", err)
		a.lastErr = err
	}

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	for _, task := range a.mainThread.Drain() {
		task()
	}

	if rl.IsWindowResized() && a.scene != nil {
		a.scene.WindowResized(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	switch a.State {
	case StateLoading, StateViewing:
		a.updateCamera()
		a.updateInput()
		a.processRequests()
	case StatePaused:
		a.updateInput()
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")
	a.cancel()

	a.mu.Lock()
	sess, sc := a.session, a.scene
	a.session, a.scene = nil, nil
	a.mu.Unlock()
	if sess != nil {
		sess.Dispose()
	}
	if sc != nil {
		sc.Unload()
	}
	if a.remote != nil {
		a.remote.Close()
	}

	if err := a.Config.Save(); err != nil {
		log.Printf("[StructureVision] Erro ao salvar configurações: %v", err)
	}
}

func (a *App) current() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}
