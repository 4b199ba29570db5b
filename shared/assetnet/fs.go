package assetnet

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// FSSource adapta um fs.FS (diretório ou zip) para Source.
type FSSource struct {
	name   string
	fsys   fs.FS
	closer func() error
}

// NewFSSource cria uma fonte sobre fsys.
func NewFSSource(name string, fsys fs.FS) *FSSource {
	return &FSSource{name: name, fsys: fsys}
}

// OpenFSSource abre um diretório ou um .zip/.jar do disco.
func OpenFSSource(p string) (*FSSource, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir fonte de assets %s: %w", p, err)
	}
	if info.IsDir() {
		return NewFSSource(p, os.DirFS(p)), nil
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler zip %s: %w", p, err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	s := NewFSSource(p, &zr.Reader)
	s.closer = zr.Close
	return s, nil
}

func (s *FSSource) Name() string { return s.name }

// Open lê um caminho relativo à raiz. Caminhos fora da raiz são tratados como inexistentes.
func (s *FSSource) Open(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !fs.ValidPath(p) || p == "." {
		return nil, fmt.Errorf("caminho inválido %q: %w", p, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s de %s: %w", p, s.name, err)
	}
	return data, nil
}

// List enumera todos os arquivos em ordem.
func (s *FSSource) List(ctx context.Context) ([]string, error) {
	var paths []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao listar %s: %w", s.name, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FSSource) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
