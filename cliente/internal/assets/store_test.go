package assets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyArchive falha enquanto broken estiver ligado.
type flakyArchive struct {
	inner  Archive
	broken atomic.Bool
	opens  atomic.Int64
}

func (a *flakyArchive) Name() string { return "flaky" }

func (a *flakyArchive) Open(ctx context.Context, p string) ([]byte, error) {
	a.opens.Add(1)
	if a.broken.Load() {
		return nil, errors.New("conexão recusada")
	}
	return a.inner.Open(ctx, p)
}

// gateArchive segura todas as leituras até o gate ser fechado.
type gateArchive struct {
	gate  chan struct{}
	opens atomic.Int64
}

func (a *gateArchive) Name() string { return "gate" }

func (a *gateArchive) Open(ctx context.Context, p string) ([]byte, error) {
	a.opens.Add(1)
	<-a.gate
	return []byte("ok"), nil
}

func TestStoreFirstHitWins(t *testing.T) {
	primary := NewMemArchive("primary", map[string][]byte{"a.json": []byte("primary")})
	overlay1 := NewMemArchive("overlay1", map[string][]byte{"a.json": []byte("o1"), "b.json": []byte("o1")})
	overlay2 := NewMemArchive("overlay2", map[string][]byte{"a.json": []byte("o2"), "b.json": []byte("o2")})

	for _, order := range [][]Archive{{primary, overlay1, overlay2}, {primary, overlay2, overlay1}} {
		s := NewStore(order...)
		b, err := s.GetBlob(context.Background(), "a.json")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, "primary", string(b.Data))
		assert.Equal(t, "primary", b.Archive)

		b, err = s.GetBlob(context.Background(), "b.json")
		require.NoError(t, err)
		assert.Equal(t, order[1].Name(), b.Archive)
	}
}

func TestStoreMemoizesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	a := NewMemArchive("a", map[string][]byte{"x.png": {1, 2, 3}})
	s := NewStore(a)

	for i := 0; i < 3; i++ {
		b, err := s.GetBlob(ctx, "x.png")
		require.NoError(t, err)
		require.NotNil(t, b)

		missing, err := s.GetBlob(ctx, "missing.png")
		require.NoError(t, err)
		assert.Nil(t, missing)
	}
	assert.EqualValues(t, 2, a.Opens(), "cada caminho deve ser buscado uma vez")
	assert.EqualValues(t, 2, s.Stats().Fetches)
	assert.EqualValues(t, 6, s.Stats().Lookups)
}

func TestStoreTextTableIsIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewMemArchive("a", map[string][]byte{"m.json": []byte("\uFEFF{}")})
	s := NewStore(a)

	_, err := s.GetBlob(ctx, "m.json")
	require.NoError(t, err)
	text, found, err := s.GetText(ctx, "m.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "{}", text)

	_, _, err = s.GetText(ctx, "m.json")
	require.NoError(t, err)
	assert.EqualValues(t, 2, a.Opens())
	assert.Equal(t, 2, s.Len())
}

func TestStoreDeduplicatesConcurrentFetches(t *testing.T) {
	a := &gateArchive{gate: make(chan struct{})}
	s := NewStore(a)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := s.GetBlob(context.Background(), "shared.png")
			assert.NoError(t, err)
			assert.Equal(t, "ok", string(b.Data))
		}()
	}
	close(a.gate)
	wg.Wait()

	assert.EqualValues(t, 1, a.opens.Load())
}

// ctxGateArchive segura as leituras até o gate fechar, mas desiste se o ctx terminar.
type ctxGateArchive struct {
	gate  chan struct{}
	opens atomic.Int64
}

func (a *ctxGateArchive) Name() string { return "ctx-gate" }

func (a *ctxGateArchive) Open(ctx context.Context, p string) ([]byte, error) {
	a.opens.Add(1)
	select {
	case <-a.gate:
		return []byte("ok"), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestStoreJoinedFetchSurvivesFirstCallerCancel(t *testing.T) {
	a := &ctxGateArchive{gate: make(chan struct{})}
	s := NewStore(a)

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.GetBlob(ctx1, "x.png")
		first <- err
	}()
	require.Eventually(t, func() bool { return a.opens.Load() == 1 }, 2*time.Second, time.Millisecond)

	type result struct {
		blob *Blob
		err  error
	}
	second := make(chan result, 1)
	go func() {
		b, err := s.GetBlob(context.Background(), "x.png")
		second <- result{b, err}
	}()
	// Dá tempo à segunda chamada de entrar na busca em andamento
	time.Sleep(50 * time.Millisecond)

	cancel1()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(a.gate)
	res := <-second
	require.NoError(t, res.err)
	require.NotNil(t, res.blob)
	assert.Equal(t, "ok", string(res.blob.Data))
	opens := a.opens.Load()

	// Chamada já cancelada não dispara busca nova
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	_, err := s.GetBlob(ctx2, "y.png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, opens, a.opens.Load())
}

func TestStoreSkipsFailingArchive(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyArchive{inner: NewMemArchive("inner", map[string][]byte{"only-flaky.json": []byte("f")})}
	fallback := NewMemArchive("fallback", map[string][]byte{"both.json": []byte("fallback")})
	flaky.broken.Store(true)
	s := NewStore(flaky, fallback)

	// Encontrado depois de uma falha: entregue, mas não memorizado
	b, err := s.GetBlob(ctx, "both.json")
	require.NoError(t, err)
	assert.Equal(t, "fallback", string(b.Data))
	_, err = s.GetBlob(ctx, "both.json")
	require.NoError(t, err)
	assert.EqualValues(t, 2, flaky.opens.Load())
	assert.EqualValues(t, 2, s.Stats().Degraded)

	// Ninguém tem o recurso e alguém falhou: erro, nada memorizado
	_, err = s.GetBlob(ctx, "only-flaky.json")
	require.ErrorIs(t, err, ErrArchiveUnavailable)
	assert.Equal(t, 0, s.Len())

	flaky.broken.Store(false)
	b, err = s.GetBlob(ctx, "only-flaky.json")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "f", string(b.Data))
	assert.Equal(t, 1, s.Len())
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	a := NewMemArchive("a", nil)
	s := NewStore(a)

	b, err := s.GetBlob(ctx, "late.json")
	require.NoError(t, err)
	assert.Nil(t, b)

	a.Put("late.json", []byte("agora existe"))
	b, _ = s.GetBlob(ctx, "late.json")
	assert.Nil(t, b, "ausência memorizada até Clear")

	s.Clear()
	b, err = s.GetBlob(ctx, "late.json")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "agora existe", string(b.Data))
}

func TestNewStoreForVersion(t *testing.T) {
	v119 := NewMemArchive("1.19", map[string][]byte{"a": []byte("1.19")})
	v120 := NewMemArchive("1.20", map[string][]byte{"a": []byte("1.20")})
	overlay := NewMemArchive("overlay", map[string][]byte{"a": []byte("overlay"), "b": []byte("overlay")})

	resolve := func(ctx context.Context, version string) (Archive, error) {
		if version == "1.19" {
			return v119, nil
		}
		return v120, nil
	}

	s, err := NewStoreForVersion(context.Background(), "1.19", resolve, overlay)
	require.NoError(t, err)
	require.Len(t, s.Archives(), 2)

	b, err := s.GetBlob(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1.19", string(b.Data))
	b, err = s.GetBlob(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "overlay", string(b.Data))

	failing := func(ctx context.Context, version string) (Archive, error) {
		return nil, errors.New("sem pack")
	}
	_, err = NewStoreForVersion(context.Background(), "x", failing)
	assert.Error(t, err)
}
