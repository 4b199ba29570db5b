// Package client implementa um assets.Archive servido remotamente pelo servidor de assets.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"StructureVision/cliente/internal/assets"
	"StructureVision/shared/assetnet"

	"github.com/gorilla/websocket"
)

// ErrClosed é retornado após Close.
var ErrClosed = errors.New("arquivo remoto fechado")

// RemoteArchive lê recursos de um servidor de assets por websocket.
// A conexão é aberta na primeira leitura e refeita na seguinte se cair;
// requisições concorrentes compartilham a mesma conexão.
type RemoteArchive struct {
	url    string
	dialer websocket.Dialer

	// Tentativas de conexão e intervalo entre elas
	Retries    int
	RetryDelay time.Duration

	mu     sync.Mutex
	cur    *remoteConn
	closed bool

	nextID atomic.Uint64
}

var (
	_ assets.Archive = (*RemoteArchive)(nil)
	_ assets.Lister  = (*RemoteArchive)(nil)
)

// remoteConn é uma conexão viva e as requisições aguardando resposta nela.
type remoteConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan assetnet.Envelope
	done    chan struct{}
	err     error
}

// NewRemoteArchive cria o arquivo remoto. Nenhuma conexão é aberta aqui.
func NewRemoteArchive(url string) *RemoteArchive {
	return &RemoteArchive{
		url: url,
		dialer: websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		Retries:    3,
		RetryDelay: 500 * time.Millisecond,
	}
}

func (r *RemoteArchive) Name() string { return r.url }

// Open busca o caminho no servidor. Caminhos ausentes retornam assets.ErrNotExist;
// falhas de rede retornam outros erros, tratados pela store como arquivo indisponível.
func (r *RemoteArchive) Open(ctx context.Context, path string) ([]byte, error) {
	resp, err := r.request(ctx, &assetnet.Envelope{Type: assetnet.TypeOpen, Path: path})
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar %s em %s: %w", path, r.url, err)
	}
	switch resp.Type {
	case assetnet.TypeData:
		return resp.Payload, nil
	case assetnet.TypeNotFound:
		return nil, fmt.Errorf("%s: %w", path, assets.ErrNotExist)
	case assetnet.TypeError:
		return nil, fmt.Errorf("servidor falhou ao ler %s: %s", path, resp.Message)
	default:
		return nil, fmt.Errorf("resposta inesperada para %s: %s", path, resp.Type)
	}
}

// List pede ao servidor a lista de caminhos da fonte.
func (r *RemoteArchive) List(ctx context.Context) ([]string, error) {
	resp, err := r.request(ctx, &assetnet.Envelope{Type: assetnet.TypeList})
	if err != nil {
		return nil, fmt.Errorf("falha ao listar %s: %w", r.url, err)
	}
	if resp.Type != assetnet.TypeData {
		return nil, fmt.Errorf("servidor recusou a listagem: %s", resp.Message)
	}
	if len(resp.Payload) == 0 {
		return nil, nil
	}
	return strings.Split(string(resp.Payload), "\n"), nil
}

// Ping mede a ida e volta até o servidor.
func (r *RemoteArchive) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	resp, err := r.request(ctx, &assetnet.Envelope{Type: assetnet.TypePing})
	if err != nil {
		return 0, err
	}
	if resp.Type != assetnet.TypePong {
		return 0, fmt.Errorf("resposta inesperada ao ping: %s", resp.Type)
	}
	return time.Since(start), nil
}

func (r *RemoteArchive) request(ctx context.Context, req *assetnet.Envelope) (assetnet.Envelope, error) {
	c, err := r.connect(ctx)
	if err != nil {
		return assetnet.Envelope{}, err
	}

	req.ID = r.nextID.Add(1)
	ch := make(chan assetnet.Envelope, 1)
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return assetnet.Envelope{}, fmt.Errorf("conexão perdida: %w", c.err)
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer c.forget(req.ID)

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.BinaryMessage, req.Marshal())
	c.writeMu.Unlock()
	if err != nil {
		c.fail(err)
		return assetnet.Envelope{}, fmt.Errorf("falha ao enviar requisição: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-c.done:
		// A resposta pode ter chegado junto com o fechamento
		select {
		case resp := <-ch:
			return resp, nil
		default:
		}
		return assetnet.Envelope{}, fmt.Errorf("conexão perdida: %w", c.err)
	case <-ctx.Done():
		return assetnet.Envelope{}, ctx.Err()
	}
}

// connect retorna a conexão atual ou abre uma nova.
func (r *RemoteArchive) connect(ctx context.Context) (*remoteConn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if r.cur != nil {
		select {
		case <-r.cur.done:
			r.cur = nil
		default:
			return r.cur, nil
		}
	}

	var ws *websocket.Conn
	var err error
	retries := max(r.Retries, 1)
	for i := 0; i < retries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, retries, r.url)
		ws, _, err = r.dialer.DialContext(ctx, r.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v", err)
		if i == retries-1 {
			break
		}
		select {
		case <-time.After(r.RetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar em %s após %d tentativas: %w", r.url, retries, err)
	}

	c := &remoteConn{
		ws:      ws,
		pending: make(map[uint64]chan assetnet.Envelope),
		done:    make(chan struct{}),
	}
	r.cur = c
	go c.readLoop()
	log.Printf("[Network] Conectado a %s", r.url)
	return c, nil
}

func (c *remoteConn) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Loop de leitura: %v", r)
			c.fail(fmt.Errorf("pânico no loop de leitura: %v", r))
		}
	}()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		var env assetnet.Envelope
		if err := env.Unmarshal(data); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		if ok {
			delete(c.pending, env.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- env
		}
	}
}

func (c *remoteConn) forget(id uint64) {
	c.mu.Lock()
	if c.pending != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

// fail encerra a conexão uma única vez e acorda todos os pendentes.
func (c *remoteConn) fail(err error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.err = err
	c.mu.Unlock()

	c.ws.Close()
	close(c.done)
	log.Printf("[Network] Conexão perdida: %v", err)
}

// Close fecha a conexão atual; leituras posteriores retornam ErrClosed.
func (r *RemoteArchive) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.cur != nil {
		r.cur.fail(ErrClosed)
		r.cur = nil
	}
	return nil
}
