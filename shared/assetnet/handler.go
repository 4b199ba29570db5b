package assetnet

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Source é um arquivo de assets servido pela rede.
// Caminhos inexistentes devem retornar um erro que satisfaça errors.Is(err, fs.ErrNotExist).
type Source interface {
	Name() string
	Open(ctx context.Context, path string) ([]byte, error)
}

// Lister é implementado por fontes que sabem enumerar seus caminhos.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Handler serve uma Source por websocket. Cada requisição roda em sua própria
// goroutine; as respostas podem chegar fora de ordem e são casadas pelo ID.
type Handler struct {
	source   Source
	upgrader websocket.Upgrader

	conns    atomic.Int64
	requests atomic.Int64
}

// NewHandler cria o handler para source.
func NewHandler(source Source) *Handler {
	return &Handler{
		source: source,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Conns retorna o número de conexões abertas.
func (h *Handler) Conns() int64 { return h.conns.Load() }

// Requests retorna o total de requisições atendidas.
func (h *Handler) Requests() int64 { return h.requests.Load() }

// conn serializa as escritas de uma conexão.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(env *Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, env.Marshal())
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Network] Erro no upgrade: %v", err)
		return
	}
	h.conns.Add(1)
	log.Printf("[Network] Cliente conectado: %s", ws.RemoteAddr())

	// Requisições em andamento são canceladas quando a conexão cai
	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws}
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		ws.Close()
		h.conns.Add(-1)
		log.Printf("[Network] Cliente desconectado: %s", ws.RemoteAddr())
	}()

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Network] Conexão perdida: %v", err)
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		var req Envelope
		if err := req.Unmarshal(data); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] Requisição %d (%s) falhou: %v", req.ID, req.Type, r)
					_ = c.send(&Envelope{Type: TypeError, ID: req.ID, Message: "erro interno"})
				}
			}()
			resp := h.handle(ctx, &req)
			if resp == nil {
				return
			}
			if err := c.send(resp); err != nil {
				log.Printf("[Network] Erro ao enviar resposta %d: %v", req.ID, err)
			}
		}()
	}
}

func (h *Handler) handle(ctx context.Context, req *Envelope) *Envelope {
	h.requests.Add(1)
	switch req.Type {
	case TypeOpen:
		data, err := h.source.Open(ctx, req.Path)
		switch {
		case err == nil:
			return &Envelope{Type: TypeData, ID: req.ID, Path: req.Path, Payload: data}
		case errors.Is(err, fs.ErrNotExist):
			return &Envelope{Type: TypeNotFound, ID: req.ID, Path: req.Path}
		default:
			return &Envelope{Type: TypeError, ID: req.ID, Path: req.Path, Message: err.Error()}
		}
	case TypeList:
		lister, ok := h.source.(Lister)
		if !ok {
			return &Envelope{Type: TypeError, ID: req.ID, Message: "listagem não suportada"}
		}
		paths, err := lister.List(ctx)
		if err != nil {
			return &Envelope{Type: TypeError, ID: req.ID, Message: err.Error()}
		}
		return &Envelope{Type: TypeData, ID: req.ID, Payload: []byte(strings.Join(paths, "\n"))}
	case TypePing:
		return &Envelope{Type: TypePong, ID: req.ID}
	default:
		return &Envelope{Type: TypeError, ID: req.ID, Message: "tipo de requisição desconhecido: " + req.Type.String()}
	}
}
