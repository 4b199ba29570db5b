package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"StructureVision/cliente/internal/assets"
	"StructureVision/cliente/internal/camera"
	"StructureVision/cliente/internal/client"
	"StructureVision/cliente/internal/render"
	"StructureVision/cliente/internal/session"
	"StructureVision/shared/mapdata"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// processRequests inicia a próxima troca pendente. Uma troca por vez; os pedidos
// que chegarem no meio esperam na fila.
func (a *App) processRequests() {
	if a.swapping {
		return
	}
	_, req, ok := a.requests.Dequeue()
	if !ok {
		return
	}
	a.swapping = true
	a.status = "Carregando " + filepath.Base(req.path) + "..."

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] Erro ao carregar %s: %v", req.path, r)
				a.mainThread.Push(func() { a.finishSwap(req.path, nil, fmt.Errorf("pânico: %v", r)) })
			}
		}()

		st, err := mapdata.Load(req.path)
		if err != nil {
			a.mainThread.Push(func() { a.finishSwap(req.path, nil, err) })
			return
		}
		log.Printf("[App] %s lido em %v após o pedido (%d blocos)", filepath.Base(req.path), time.Since(req.queued), st.Count())
		a.mainThread.Push(func() { a.applyStructure(req.path, st) })
	}()
}

// applyStructure roda no thread da janela: troca a sessão se a versão pede outro
// arquivo primário e dispara o Swap em segundo plano.
func (a *App) applyStructure(path string, st *mapdata.Structure) {
	if a.current() == nil || st.Version != a.version {
		if err := a.replaceSession(st.Version); err != nil {
			a.finishSwap(path, nil, err)
			return
		}
	}
	sess := a.current()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] Erro na troca de %s: %v", path, r)
				a.mainThread.Push(func() { a.finishSwap(path, nil, fmt.Errorf("pânico: %v", r)) })
			}
		}()
		start := time.Now()
		err := sess.Swap(a.ctx, st)
		log.Printf("[App] Troca para %s em %v (%d fragments)", filepath.Base(path), time.Since(start), sess.Stats().Fragments)
		a.mainThread.Push(func() { a.finishSwap(path, st, err) })
	}()
}

func (a *App) finishSwap(path string, st *mapdata.Structure, err error) {
	a.swapping = false
	a.lastErr = err
	switch {
	case errors.Is(err, session.ErrDisposed):
		return
	case err != nil && st == nil:
		log.Printf("[App] ERRO ao carregar %s: %v", path, err)
		a.status = "Falha: " + filepath.Base(path)
		return
	case err != nil:
		// Troca parcial: os tipos que falharam ficam de fora e serão tentados de novo
		log.Printf("[App] AVISO: troca para %s incompleta: %v", path, err)
		a.status = filepath.Base(path) + " (incompleto)"
	default:
		a.status = filepath.Base(path)
	}
	a.path = path
	a.lastSize = st.Size()
	if a.State == StateLoading {
		a.State = StateViewing
	}
}

// replaceSession monta uma sessão nova para a versão dada, com store e cena próprias.
// Deve rodar no thread da janela.
func (a *App) replaceSession(version string) error {
	var extra []assets.Archive
	if a.Config.Archives.Remote {
		extra = append(extra, client.NewRemoteArchive(a.Config.ServerURL))
	}
	store, err := assets.NewStoreFromConfig(a.ctx, a.Config.Archives, version, extra...)
	if err != nil {
		return fmt.Errorf("falha ao montar arquivos para a versão %q: %w", version, err)
	}

	var catalog *assets.Catalog
	if a.Config.CatalogPath != "" {
		catalog, err = assets.LoadCatalog(a.Config.CatalogPath)
		if err != nil {
			log.Printf("[App] AVISO: catálogo %s inválido, usando o embutido: %v", a.Config.CatalogPath, err)
			catalog = nil
		}
	}

	sc := render.NewScene(rl.GetScreenWidth(), rl.GetScreenHeight(), render.Options{
		Instancing:     a.Config.Instancing,
		InstancingSort: a.Config.InstancingSort,
		Fovy:           a.Config.FOV,
	})
	opts := session.FromConfig(a.Config)
	// A janela pode ter sido redimensionada pelo usuário
	opts.Width, opts.Height = 0, 0
	sess := session.New(store, sc, catalog, opts)

	a.mu.Lock()
	oldSess, oldScene := a.session, a.scene
	a.session, a.scene = sess, sc
	a.version = version
	a.mu.Unlock()

	if oldSess != nil {
		oldSess.Dispose()
	}
	if oldScene != nil {
		oldScene.Unload()
	}

	a.Cam = camera.New(sc.Camera(), a.Config.ZoomSpeed, a.Config.CameraSensitivity)

	if a.stopWatch != nil {
		a.stopWatch()
		a.stopWatch = nil
	}
	if a.Config.WatchArchives {
		ctx, cancel := context.WithCancel(a.ctx)
		a.stopWatch = cancel
		go a.watch(ctx, sess)
	}
	log.Printf("[App] Sessão %s pronta para a versão %q", sess.ID()[:8], version)
	return nil
}

// watch limpa a store e recarrega a estrutura atual quando um pacote em diretório muda.
// Termina quando ctx é cancelado (troca de sessão ou fim do app).
func (a *App) watch(ctx context.Context, sess *session.Session) {
	err := assets.Watch(ctx, sess.Store(), func() {
		a.mainThread.Push(func() {
			if a.path != "" && a.current() == sess {
				log.Printf("[App] Assets alterados, recarregando %s", filepath.Base(a.path))
				a.Request(a.path)
			}
		})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[App] ERRO no watcher de assets: %v", err)
	}
}

// reload descarta os caches e refaz a estrutura atual.
func (a *App) reload() {
	sess := a.current()
	if sess == nil || a.path == "" {
		return
	}
	sess.Store().Clear()
	a.Request(a.path)
}

// saveSnapshot grava a estrutura atual como snapshot comprimido ao lado do original.
func (a *App) saveSnapshot() {
	if a.path == "" || strings.HasSuffix(a.path, ".svz") {
		return
	}
	path := a.path
	go func() {
		st, err := mapdata.Load(path)
		if err != nil {
			log.Printf("[App] ERRO ao reler %s: %v", path, err)
			return
		}
		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".svz"
		if err := mapdata.SaveSnapshot(out, st); err != nil {
			log.Printf("[App] ERRO ao salvar snapshot: %v", err)
			return
		}
		log.Printf("[App] Snapshot salvo em %s", out)
	}()
}
