package assets

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"StructureVision/shared/config"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string, method uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	for name, content := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestZipArchive(t *testing.T) {
	ctx := context.Background()
	for _, method := range []uint16{zip.Deflate, zstd.ZipMethodWinZip} {
		data := buildZip(t, map[string]string{
			"assets/minecraft/models/block/stone.json": `{"parent":"block/cube_all"}`,
			"pack.mcmeta": `{}`,
		}, method)

		a, err := NewZipArchiveFromBytes("pack.zip", data)
		require.NoError(t, err)

		got, err := a.Open(ctx, "assets/minecraft/models/block/stone.json")
		require.NoError(t, err)
		assert.Equal(t, `{"parent":"block/cube_all"}`, string(got))

		_, err = a.Open(ctx, "assets/minecraft/models/block/dirt.json")
		assert.ErrorIs(t, err, ErrNotExist)

		paths, err := a.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"assets/minecraft/models/block/stone.json", "pack.mcmeta"}, paths)
	}
}

func TestDirArchive(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "minecraft"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "minecraft", "x.json"), []byte("x"), 0o644))

	a := NewDirArchive(root)
	got, err := a.Open(ctx, "assets/minecraft/x.json")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	_, err = a.Open(ctx, "assets/minecraft/y.json")
	assert.ErrorIs(t, err, ErrNotExist)

	// Caminhos não saem da raiz
	_, err = a.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestSQLiteArchiveImport(t *testing.T) {
	ctx := context.Background()
	pack, err := OpenSQLiteArchive(filepath.Join(t.TempDir(), "pack.fvpack"))
	require.NoError(t, err)
	defer pack.Close()

	src := NewMemArchive("mem", map[string][]byte{
		"assets/minecraft/blockstates/stone.json":   []byte(`{"variants":{"":{"model":"block/stone"}}}`),
		"assets/minecraft/textures/block/stone.png": {0x89, 'P', 'N', 'G'},
	})
	n, err := pack.Import(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := pack.Open(ctx, "assets/minecraft/textures/block/stone.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)

	_, err = pack.Open(ctx, "assets/minecraft/textures/block/dirt.png")
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, pack.Put(ctx, "assets/minecraft/textures/block/stone.png", []byte("v2")))
	got, err = pack.Open(ctx, "assets/minecraft/textures/block/stone.png")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	paths, err := pack.List(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestVersionResolver(t *testing.T) {
	dir := t.TempDir()
	resolve := VersionResolver(map[string]string{"1.20": dir}, "")

	a, err := resolve(context.Background(), "1.20")
	require.NoError(t, err)
	assert.Equal(t, dir, a.Name())

	again, err := resolve(context.Background(), "1.20")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = resolve(context.Background(), "1.8")
	assert.Error(t, err)
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	write := func(root, rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	modern, legacy, overlay := t.TempDir(), t.TempDir(), t.TempDir()
	write(modern, "a.json", "moderno")
	write(legacy, "a.json", "antigo")
	write(overlay, "a.json", "overlay")
	write(overlay, "b.json", "overlay")

	ac := config.ArchiveConfig{
		PrimaryByVersion: map[string]string{"1.20": modern},
		Fallback:         legacy,
		Overlays:         []string{overlay},
	}
	extra := NewMemArchive("extra", map[string][]byte{"c.json": []byte("extra")})

	tests := []struct {
		version string
		path    string
		want    string
	}{
		{"1.20", "a.json", "moderno"},
		{"", "a.json", "antigo"},
		{"1.8", "a.json", "antigo"},
		{"1.20", "b.json", "overlay"},
		{"1.20", "c.json", "extra"},
	}
	for _, tt := range tests {
		store, err := NewStoreFromConfig(ctx, ac, tt.version, extra)
		require.NoError(t, err)
		b, err := store.GetBlob(ctx, tt.path)
		require.NoError(t, err)
		require.NotNil(t, b, "%s em %q", tt.path, tt.version)
		assert.Equal(t, tt.want, string(b.Data), "%s em %q", tt.path, tt.version)
		assert.Len(t, store.Archives(), 3)
	}

	_, err := NewStoreFromConfig(ctx, config.ArchiveConfig{Overlays: []string{filepath.Join(modern, "nada")}}, "")
	assert.Error(t, err)
	_, err = NewStoreFromConfig(ctx, config.ArchiveConfig{}, "1.20")
	assert.Error(t, err)
}
