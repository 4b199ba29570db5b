package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ZipArchive lê entradas de um resource pack (.zip) ou jar do cliente.
// Entradas comprimidas com zstd (método 93) também são suportadas.
type ZipArchive struct {
	name    string
	file    *os.File
	reader  *zip.Reader
	entries map[string]*zip.File
}

// OpenZipArchive abre um .zip/.jar do disco.
func OpenZipArchive(path string) (*ZipArchive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := newZipArchive(path, f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	a.file = f
	return a, nil
}

// NewZipArchiveFromBytes cria um arquivo a partir de um zip em memória.
func NewZipArchiveFromBytes(name string, data []byte) (*ZipArchive, error) {
	return newZipArchive(name, bytes.NewReader(data), int64(len(data)))
}

func newZipArchive(name string, r io.ReaderAt, size int64) (*ZipArchive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler zip %s: %w", name, err)
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	a := &ZipArchive{
		name:    name,
		reader:  zr,
		entries: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if clean, ok := cleanPath(f.Name); ok {
			a.entries[clean] = f
		}
	}
	return a, nil
}

func (a *ZipArchive) Name() string { return a.name }

func (a *ZipArchive) Open(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, ok := cleanPath(p)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	f, ok := a.entries[clean]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir %s em %s: %w", p, a.name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (a *ZipArchive) List(ctx context.Context) ([]string, error) {
	paths := make([]string, 0, len(a.entries))
	for p := range a.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Close libera o arquivo em disco, se houver.
func (a *ZipArchive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}
