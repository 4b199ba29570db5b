package meshing

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructureVision/cliente/internal/assets"
	"StructureVision/cliente/internal/assets/assettest"
	"StructureVision/shared/mapdata"
	"StructureVision/shared/util"
)

type fixture struct {
	pack     *assets.MemArchive
	store    *assets.Store
	states   *assets.StateSource
	resolver *Resolver
}

func newFixture(seed uint64) *fixture {
	pack := assettest.NewPack("pack")
	store := assets.NewStore(pack)
	return &fixture{
		pack:     pack,
		store:    store,
		states:   assets.NewStateSource(store),
		resolver: NewResolver(store, seed),
	}
}

func (f *fixture) resolve(t *testing.T, b mapdata.Block) *BlockModelData {
	t.Helper()
	def, err := f.states.Get(context.Background(), b.Name)
	require.NoError(t, err)
	data, err := f.resolver.Resolve(context.Background(), b, def)
	require.NoError(t, err)
	return data
}

func TestResolveSingleVariant(t *testing.T) {
	f := newFixture(1)
	stone := mapdata.NewBlock("stone", nil)

	data := f.resolve(t, stone)
	require.False(t, data.Empty())
	assert.Equal(t, StrategyWeighted, data.Strategy.Kind())
	assert.Equal(t, KeyOf(stone), data.Key)

	opt := f.resolver.SelectVariant(data)
	require.Len(t, opt.Parts, 1)
	assert.Equal(t, "minecraft:block/stone", opt.Parts[0].Model.Name)

	frags, err := f.resolver.Materialize(context.Background(), opt, stone)
	require.NoError(t, err)
	require.Len(t, frags, 1)

	tpl := frags[0].Template
	geom, ok := tpl.MaterialGeometries["minecraft:block/stone"]
	require.True(t, ok)
	assert.Equal(t, 36, geom.VertexCount(), "6 faces x 2 triângulos")
	for _, v := range geom.Vertices {
		assert.InDelta(t, 0, v, 0.5001)
	}
	assert.Equal(t, 16, tpl.Textures["minecraft:block/stone"].Width)
}

func TestResolveMissingDefinition(t *testing.T) {
	f := newFixture(1)

	data, err := f.resolver.Resolve(context.Background(), mapdata.NewBlock("air", nil), nil)
	require.NoError(t, err)
	assert.True(t, data.Empty())
	assert.Empty(t, f.resolver.SelectVariant(data).Parts)

	// Variante sem correspondência também é vazia
	data = f.resolve(t, mapdata.NewBlock("oak_log", map[string]string{"axis": "w"}))
	assert.True(t, data.Empty())
}

func TestResolveDoesNotRefetch(t *testing.T) {
	f := newFixture(1)
	log := mapdata.NewBlock("oak_log", map[string]string{"axis": "z"})

	f.resolve(t, log)
	opens := f.pack.Opens()
	f.resolve(t, log)
	assert.Equal(t, opens, f.pack.Opens(), "segunda resolução deve vir inteira dos memos")
}

func TestSelectVariantDeterministic(t *testing.T) {
	draw := func(seed uint64) []int {
		f := newFixture(seed)
		data := f.resolve(t, mapdata.NewBlock("dirt", nil))
		out := make([]int, 32)
		for i := range out {
			out[i] = f.resolver.SelectVariant(data).Parts[0].Y
		}
		return out
	}

	a := draw(42)
	assert.Equal(t, a, draw(42))

	seen := map[int]bool{}
	for _, y := range a {
		seen[y] = true
	}
	assert.Greater(t, len(seen), 1, "32 sorteios deveriam cobrir mais de uma variante")
}

func TestResolverReseed(t *testing.T) {
	f := newFixture(7)
	data := f.resolve(t, mapdata.NewBlock("dirt", nil))

	first := make([]int, 8)
	for i := range first {
		first[i] = f.resolver.SelectVariant(data).Parts[0].Y
	}
	f.resolver.Reseed()
	for i := range first {
		assert.Equal(t, first[i], f.resolver.SelectVariant(data).Parts[0].Y)
	}
}

func TestResolveMultipart(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	tests := []struct {
		props map[string]string
		parts int
	}{
		{map[string]string{"north": "false", "east": "false"}, 1},
		{map[string]string{"north": "true"}, 2},
		{map[string]string{"north": "true", "east": "true", "south": "true", "west": "true"}, 5},
	}
	for _, tt := range tests {
		b := mapdata.NewBlock("oak_fence", tt.props)
		data := f.resolve(t, b)
		require.Equal(t, StrategyMultipart, data.Strategy.Kind())

		opt := f.resolver.SelectVariant(data)
		assert.Len(t, opt.Parts, tt.parts, "props %v", tt.props)

		frags, err := f.resolver.Materialize(ctx, opt, b)
		require.NoError(t, err)
		assert.Len(t, frags, tt.parts)
	}
	// post + lados com uvlock em quatro rotações
	assert.Equal(t, 5, f.resolver.TemplateCount())
}

func TestMaterializeReusesTemplates(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()
	stone := mapdata.NewBlock("stone", nil)
	data := f.resolve(t, stone)

	var first *Template
	for i := 0; i < 10; i++ {
		frags, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(data), stone)
		require.NoError(t, err)
		if first == nil {
			first = frags[0].Template
		}
		assert.Same(t, first, frags[0].Template)
	}
	assert.EqualValues(t, 1, f.resolver.Builds())
	assert.Equal(t, 1, f.resolver.TemplateCount())
	assert.Equal(t, "minecraft:block/stone", first.ModelName())

	released := false
	first.OnDispose(func() { released = true })

	f.resolver.Clear()
	assert.True(t, first.Disposed())
	assert.True(t, released)
	assert.Equal(t, 0, f.resolver.TemplateCount())

	frags, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(data), stone)
	require.NoError(t, err)
	assert.NotSame(t, first, frags[0].Template)
	assert.EqualValues(t, 2, f.resolver.Builds())
}

func TestMaterializeRotationAndTint(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	// axis=z: rotação x=90 vai para a transformação local, template compartilhado
	logZ := mapdata.NewBlock("oak_log", map[string]string{"axis": "z"})
	logY := mapdata.NewBlock("oak_log", map[string]string{"axis": "y"})
	fz, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(f.resolve(t, logZ)), logZ)
	require.NoError(t, err)
	fy, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(f.resolve(t, logY)), logY)
	require.NoError(t, err)
	assert.Same(t, fz[0].Template, fy[0].Template)
	assert.False(t, fz[0].Local.ApproxEqual(mgl32.Ident4()))

	// axis=x tem uvlock: rotação embutida, template próprio
	logX := mapdata.NewBlock("oak_log", map[string]string{"axis": "x"})
	fx, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(f.resolve(t, logX)), logX)
	require.NoError(t, err)
	assert.NotSame(t, fy[0].Template, fx[0].Template)
	assert.True(t, fx[0].Local.ApproxEqual(mgl32.Ident4()))

	grass := mapdata.NewBlock("grass_block", map[string]string{"snowy": "false"})
	fg, err := f.resolver.Materialize(ctx, f.resolver.SelectVariant(f.resolve(t, grass)), grass)
	require.NoError(t, err)
	top := fg[0].Template.MaterialGeometries["minecraft:block/grass_block_top"]
	require.NotEmpty(t, top.Colors)
	assert.Equal(t, []uint8{124, 189, 107, 255}, top.Colors[:4])
	side := fg[0].Template.MaterialGeometries["minecraft:block/grass_block_side"]
	assert.Equal(t, []uint8{255, 255, 255, 255}, side.Colors[:4])
}

func TestMaterializeAnimatedTexture(t *testing.T) {
	f := newFixture(1)
	magma := mapdata.NewBlock("magma_block", nil)

	frags, err := f.resolver.Materialize(context.Background(), f.resolver.SelectVariant(f.resolve(t, magma)), magma)
	require.NoError(t, err)
	tex := frags[0].Template.Textures["minecraft:block/magma"]
	require.NotNil(t, tex)
	assert.True(t, tex.Animated)
	assert.InDelta(t, 1.0/3, tex.FrameScale(), 1e-6)

	geom := frags[0].Template.MaterialGeometries["minecraft:block/magma"]
	for i := 1; i < len(geom.UVs); i += 2 {
		assert.LessOrEqual(t, geom.UVs[i], float32(1.0/3)+1e-6)
	}
}

func TestMaterializeMissingTexture(t *testing.T) {
	pack := assets.NewMemArchive("pack", map[string][]byte{
		"assets/minecraft/models/block/cube.json":     assettest.Files()["assets/minecraft/models/block/cube.json"],
		"assets/minecraft/models/block/cube_all.json": assettest.Files()["assets/minecraft/models/block/cube_all.json"],
		"assets/minecraft/models/block/odd.json":      []byte(`{"parent": "block/cube_all", "textures": {"all": "block/odd"}}`),
		"assets/minecraft/blockstates/odd.json":       []byte(`{"variants": {"": {"model": "block/odd"}}}`),
	})
	store := assets.NewStore(pack)
	r := NewResolver(store, 1)
	odd := mapdata.NewBlock("odd", nil)

	def, err := assets.NewStateSource(store).Get(context.Background(), odd.Name)
	require.NoError(t, err)
	data, err := r.Resolve(context.Background(), odd, def)
	require.NoError(t, err)
	frags, err := r.Materialize(context.Background(), r.SelectVariant(data), odd)
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Nil(t, frags[0].Template.Textures["minecraft:block/odd"].Data)
}

func TestVariantRotation(t *testing.T) {
	north := mgl32.Vec3{0, 0, -1}
	tests := []struct {
		x, y int
		want mgl32.Vec3
	}{
		{0, 0, north},
		{0, 90, mgl32.Vec3{1, 0, 0}},
		{0, 180, mgl32.Vec3{0, 0, 1}},
		{0, 270, mgl32.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		got := mgl32.TransformNormal(north, VariantRotation(tt.x, tt.y))
		if !got.ApproxEqualThreshold(tt.want, 1e-5) {
			t.Errorf("VariantRotation(%d, %d) * norte = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFragmentPlaceOnce(t *testing.T) {
	f := &Fragment{Local: mgl32.Ident4()}
	assert.True(t, f.Place(util.NewPos(1, 0, 0), mgl32.Vec3{0.5, 0.5, 0.5}))
	assert.False(t, f.Place(util.NewPos(0, 0, 0), mgl32.Vec3{9, 9, 9}))
	assert.True(t, f.Translation().ApproxEqual(mgl32.Vec3{0.5, 0.5, 0.5}))
	assert.True(t, f.Finalized())
}
