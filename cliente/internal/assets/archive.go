package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotExist é retornado por um Archive quando o caminho não está definido nele.
	// Encapsula fs.ErrNotExist.
	ErrNotExist = fmt.Errorf("recurso não encontrado no arquivo: %w", fs.ErrNotExist)

	// ErrArchiveUnavailable indica que um ou mais arquivos falharam e nenhum outro tinha o recurso.
	ErrArchiveUnavailable = errors.New("arquivo de assets indisponível")
)

// Archive é um pacote endereçável de recursos nomeados (modelos, texturas, blockstates).
// Open retorna ErrNotExist (possivelmente encapsulado) quando o caminho não existe.
type Archive interface {
	Name() string
	Open(ctx context.Context, path string) ([]byte, error)
}

// Lister é implementado por arquivos capazes de enumerar suas entradas.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// PrimaryResolver escolhe o arquivo primário a partir do marcador de versão da estrutura.
type PrimaryResolver func(ctx context.Context, version string) (Archive, error)

// cleanPath normaliza caminhos de recurso e rejeita tentativas de sair da raiz.
func cleanPath(p string) (string, bool) {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", false
	}
	return p, true
}

// --- DirArchive ---

// DirArchive expõe um resource pack descompactado em disco.
type DirArchive struct {
	root string
}

// NewDirArchive cria um arquivo a partir de um diretório.
func NewDirArchive(root string) *DirArchive {
	return &DirArchive{root: root}
}

func (a *DirArchive) Name() string { return a.root }

// Root retorna o diretório raiz (usado pelo watcher).
func (a *DirArchive) Root() string { return a.root }

func (a *DirArchive) Open(ctx context.Context, p string) ([]byte, error) {
	clean, ok := cleanPath(p)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
		}
		return nil, err
	}
	return data, nil
}

func (a *DirArchive) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// --- MemArchive ---

// MemArchive mantém as entradas em memória. Conta as aberturas para diagnóstico.
type MemArchive struct {
	name  string
	mu    sync.RWMutex
	files map[string][]byte
	opens atomic.Int64
}

// NewMemArchive cria um arquivo em memória. O mapa é copiado.
func NewMemArchive(name string, files map[string][]byte) *MemArchive {
	a := &MemArchive{name: name, files: make(map[string][]byte, len(files))}
	for p, data := range files {
		if clean, ok := cleanPath(p); ok {
			a.files[clean] = data
		}
	}
	return a
}

func (a *MemArchive) Name() string { return a.name }

func (a *MemArchive) Open(ctx context.Context, p string) ([]byte, error) {
	a.opens.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, ok := cleanPath(p)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	a.mu.RLock()
	data, found := a.files[clean]
	a.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	return data, nil
}

// Put adiciona ou substitui uma entrada.
func (a *MemArchive) Put(p string, data []byte) {
	clean, ok := cleanPath(p)
	if !ok {
		return
	}
	a.mu.Lock()
	a.files[clean] = data
	a.mu.Unlock()
}

// Opens retorna quantas vezes Open foi chamado.
func (a *MemArchive) Opens() int64 {
	return a.opens.Load()
}

func (a *MemArchive) List(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	paths := make([]string, 0, len(a.files))
	for p := range a.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// --- Abertura por caminho ---

// OpenArchive abre um arquivo local escolhendo a implementação pela extensão:
// .zip/.jar -> ZipArchive, .fvpack/.db -> SQLiteArchive, diretório -> DirArchive.
func OpenArchive(p string) (Archive, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip", ".jar":
		return OpenZipArchive(p)
	case ".fvpack", ".db", ".sqlite":
		return OpenSQLiteArchive(p)
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir arquivo de assets %s: %w", p, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("formato de arquivo de assets não suportado: %s", p)
	}
	return NewDirArchive(p), nil
}

// VersionResolver cria um PrimaryResolver a partir de uma tabela versão -> caminho.
// Versões desconhecidas (ou vazias) usam o fallback. Arquivos já abertos são reaproveitados.
func VersionResolver(table map[string]string, fallback string) PrimaryResolver {
	var mu sync.Mutex
	opened := make(map[string]Archive)
	return func(ctx context.Context, version string) (Archive, error) {
		p, ok := table[version]
		if !ok || p == "" {
			p = fallback
		}
		if p == "" {
			return nil, fmt.Errorf("nenhum arquivo primário configurado para a versão %q", version)
		}
		mu.Lock()
		defer mu.Unlock()
		if a, ok := opened[p]; ok {
			return a, nil
		}
		a, err := OpenArchive(p)
		if err != nil {
			return nil, err
		}
		opened[p] = a
		return a, nil
	}
}

// CloseArchive fecha o arquivo se ele tiver recursos associados.
func CloseArchive(a Archive) error {
	if c, ok := a.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
