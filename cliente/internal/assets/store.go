package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Blob é um recurso binário resolvido, com o nome do arquivo que o forneceu.
type Blob struct {
	Path    string
	Archive string
	Data    []byte
}

type textEntry struct {
	text  string
	found bool
}

// StoreStats contabiliza o tráfego da store (diagnóstico e testes).
type StoreStats struct {
	Lookups  int64 // chamadas a GetBlob/GetText
	Fetches  int64 // resoluções que chegaram aos arquivos
	Degraded int64 // resultados entregues apesar de falha em algum arquivo
}

// Store resolve recursos por caminho em uma lista ordenada de arquivos.
// O primeiro arquivo que define o caminho vence. Resultados (inclusive ausências)
// são memorizados até Clear; chamadas concorrentes para o mesmo caminho compartilham
// uma única resolução.
type Store struct {
	archives []Archive

	mu    sync.RWMutex
	gen   uint64
	blobs map[string]*Blob
	texts map[string]textEntry

	group singleflight.Group

	lookups  atomic.Int64
	fetches  atomic.Int64
	degraded atomic.Int64
}

// NewStore cria uma store sobre os arquivos em ordem de precedência.
func NewStore(archives ...Archive) *Store {
	return &Store{
		archives: archives,
		blobs:    make(map[string]*Blob),
		texts:    make(map[string]textEntry),
	}
}

// NewStoreForVersion escolhe o arquivo primário pela versão da estrutura.
// Os overlays entram depois dele, com precedência menor.
func NewStoreForVersion(ctx context.Context, version string, resolve PrimaryResolver, overlays ...Archive) (*Store, error) {
	primary, err := resolve(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("falha ao resolver arquivo primário para %q: %w", version, err)
	}
	archives := make([]Archive, 0, len(overlays)+1)
	archives = append(archives, primary)
	archives = append(archives, overlays...)
	log.Printf("[Store] versão %q -> primário %s (%d overlays)", version, primary.Name(), len(overlays))
	return NewStore(archives...), nil
}

// Archives retorna a lista de arquivos em ordem de precedência.
func (s *Store) Archives() []Archive {
	return s.archives
}

// GetBlob retorna o recurso binário do caminho, ou nil se nenhum arquivo o define.
func (s *Store) GetBlob(ctx context.Context, path string) (*Blob, error) {
	s.lookups.Add(1)

	s.mu.RLock()
	b, ok := s.blobs[path]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}

	v, err := s.flight(ctx, "blob:"+path, func(ctx context.Context) (any, error) {
		s.mu.RLock()
		b, ok := s.blobs[path]
		gen := s.gen
		s.mu.RUnlock()
		if ok {
			return b, nil
		}

		data, archive, degraded, err := s.fetch(ctx, path)
		if err != nil {
			return (*Blob)(nil), err
		}
		if data != nil {
			b = &Blob{Path: path, Archive: archive, Data: data}
		}
		if !degraded {
			s.mu.Lock()
			if s.gen == gen {
				s.blobs[path] = b
			}
			s.mu.Unlock()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Blob), nil
}

// GetText retorna o recurso decodificado como texto UTF-8. found=false se ausente.
// Textos têm tabela de memo própria, independente dos blobs.
func (s *Store) GetText(ctx context.Context, path string) (string, bool, error) {
	s.lookups.Add(1)

	s.mu.RLock()
	e, ok := s.texts[path]
	s.mu.RUnlock()
	if ok {
		return e.text, e.found, nil
	}

	v, err := s.flight(ctx, "text:"+path, func(ctx context.Context) (any, error) {
		s.mu.RLock()
		e, ok := s.texts[path]
		gen := s.gen
		s.mu.RUnlock()
		if ok {
			return e, nil
		}

		data, _, degraded, err := s.fetch(ctx, path)
		if err != nil {
			return textEntry{}, err
		}
		if data != nil {
			e = textEntry{text: strings.TrimPrefix(string(data), "\uFEFF"), found: true}
		}
		if !degraded {
			s.mu.Lock()
			if s.gen == gen {
				s.texts[path] = e
			}
			s.mu.Unlock()
		}
		return e, nil
	})
	if err != nil {
		return "", false, err
	}
	e = v.(textEntry)
	return e.text, e.found, nil
}

// flight junta chamadas concorrentes para a mesma chave numa única busca. A busca
// roda desacoplada do cancelamento de quem a iniciou; cada chamador espera só
// enquanto o próprio ctx estiver vivo.
func (s *Store) flight(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch percorre os arquivos em ordem. Arquivos que falham são pulados; se o recurso
// for encontrado depois de uma falha o resultado é marcado como degradado. Se nenhum
// arquivo tiver o recurso e algum falhou, retorna ErrArchiveUnavailable.
func (s *Store) fetch(ctx context.Context, path string) (data []byte, archive string, degraded bool, err error) {
	s.fetches.Add(1)

	var failures []error
	for _, a := range s.archives {
		data, err := a.Open(ctx, path)
		if err == nil {
			if len(failures) > 0 {
				s.degraded.Add(1)
				log.Printf("[Store] %s resolvido por %s com falhas anteriores (não memorizado)", path, a.Name())
			}
			if data == nil {
				data = []byte{}
			}
			return data, a.Name(), len(failures) > 0, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", false, ctxErr
		}
		log.Printf("[Store] AVISO: arquivo %s falhou em %s: %v", a.Name(), path, err)
		failures = append(failures, fmt.Errorf("%s: %w", a.Name(), err))
	}

	if len(failures) > 0 {
		return nil, "", true, fmt.Errorf("%w: %s: %w", ErrArchiveUnavailable, path, errors.Join(failures...))
	}
	return nil, "", false, nil
}

// Clear descarta todas as entradas memorizadas. Resoluções em andamento não
// repovoam as tabelas novas.
func (s *Store) Clear() {
	s.mu.Lock()
	s.gen++
	s.blobs = make(map[string]*Blob)
	s.texts = make(map[string]textEntry)
	s.mu.Unlock()
	log.Printf("[Store] cache limpo")
}

// Len retorna quantas entradas estão memorizadas (blobs + textos).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs) + len(s.texts)
}

// Stats retorna os contadores acumulados.
func (s *Store) Stats() StoreStats {
	return StoreStats{
		Lookups:  s.lookups.Load(),
		Fetches:  s.fetches.Load(),
		Degraded: s.degraded.Load(),
	}
}

// Close fecha todos os arquivos que possuem recursos associados.
func (s *Store) Close() error {
	var errs []error
	for _, a := range s.archives {
		if err := CloseArchive(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
