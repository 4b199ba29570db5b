package meshing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"maps"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/cliente/internal/assets"
	"StructureVision/shared/mapdata"
)

// Resolver converte blocos em dados de modelo e dados de modelo em fragments.
// Não guarda o cache de lookup (que pertence à sessão); guarda apenas os
// templates de geometria do cenário atual.
type Resolver struct {
	store     *assets.Store
	models    *assets.ModelSource
	templates *TemplateStore

	seed  uint64
	rngMu sync.Mutex
	rng   *rand.Rand

	buildMu  sync.Mutex
	textures map[string]*Texture

	resolves atomic.Int64
	builds   atomic.Int64
}

// NewResolver cria um resolver sobre a store. A semente fixa torna a escolha de
// variantes reproduzível.
func NewResolver(store *assets.Store, seed uint64) *Resolver {
	return &Resolver{
		store:     store,
		models:    assets.NewModelSource(store),
		templates: NewTemplateStore(),
		seed:      seed,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		textures:  make(map[string]*Texture),
	}
}

// Resolve monta os dados de modelo do bloco a partir da sua definição de blockstate.
// Definição nil (tipo sem blockstate) resulta em dados vazios.
func (r *Resolver) Resolve(ctx context.Context, block mapdata.Block, def *assets.BlockStateDefinition) (*BlockModelData, error) {
	r.resolves.Add(1)
	data := &BlockModelData{Key: KeyOf(block)}
	if def == nil {
		return data, nil
	}

	if len(def.Multipart) > 0 {
		strat := &MultipartStrategy{Props: maps.Clone(block.Properties)}
		for _, c := range def.Multipart {
			parts, err := r.parts(ctx, c.Apply)
			if err != nil {
				return nil, err
			}
			if len(parts) == 0 {
				continue
			}
			strat.Cases = append(strat.Cases, MultipartCase{When: c.When, Candidates: parts})
		}
		if len(strat.Cases) > 0 {
			data.Strategy = strat
		}
		return data, nil
	}

	refs, ok := def.MatchVariant(block.Properties)
	if !ok {
		log.Printf("[Resolver] nenhuma variante de %s casa com as propriedades", data.Key)
		return data, nil
	}
	parts, err := r.parts(ctx, refs)
	if err != nil {
		return nil, err
	}
	if len(parts) > 0 {
		data.Strategy = &WeightedStrategy{Candidates: parts}
	}
	return data, nil
}

func (r *Resolver) parts(ctx context.Context, refs assets.ModelRefList) ([]ModelPart, error) {
	parts := make([]ModelPart, 0, len(refs))
	for _, ref := range refs {
		m, err := r.models.Get(ctx, ref.Model)
		if err != nil {
			return nil, fmt.Errorf("falha ao resolver modelo %s: %w", ref.Model, err)
		}
		if m == nil || len(m.Elements) == 0 {
			continue
		}
		parts = append(parts, ModelPart{
			Model:  m,
			X:      ref.X,
			Y:      ref.Y,
			UVLock: ref.UVLock,
			Weight: ref.EffectiveWeight(),
		})
	}
	return parts, nil
}

// SelectVariant escolhe a opção concreta para uma instância de voxel.
func (r *Resolver) SelectVariant(data *BlockModelData) ModelOption {
	if data.Empty() {
		return ModelOption{}
	}
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return data.Strategy.choose(r.rng)
}

// Reseed volta o gerador ao estado inicial (mesma estrutura, mesmas escolhas).
func (r *Resolver) Reseed() {
	r.rngMu.Lock()
	r.rng = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
	r.rngMu.Unlock()
}

// Materialize produz os fragments da opção. Templates são construídos na primeira
// ocorrência de cada modelo e reaproveitados depois.
func (r *Resolver) Materialize(ctx context.Context, opt ModelOption, block mapdata.Block) ([]*Fragment, error) {
	if len(opt.Parts) == 0 {
		return nil, nil
	}
	tint := tintFor(block.Name)

	frags := make([]*Fragment, 0, len(opt.Parts))
	for _, part := range opt.Parts {
		key := templateKey{Model: part.Model.Name, UVLock: part.UVLock, Tint: tint}
		local := VariantRotation(part.X, part.Y)
		if part.UVLock {
			key.X, key.Y = part.X, part.Y
			local = mgl32.Ident4()
		}

		t, err := r.template(ctx, key, part)
		if err != nil {
			return nil, err
		}
		frags = append(frags, &Fragment{Template: t, Local: local})
	}
	return frags, nil
}

func (r *Resolver) template(ctx context.Context, key templateKey, part ModelPart) (*Template, error) {
	if t, ok := r.templates.Get(key); ok {
		return t, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	if t, ok := r.templates.Get(key); ok {
		return t, nil
	}

	names := textureNames(part.Model)
	textures := make(map[string]*Texture, len(names))
	for _, name := range names {
		tex, err := r.texture(ctx, name)
		if err != nil {
			return nil, err
		}
		textures[name] = tex
	}

	bake := mgl32.Ident4()
	if key.UVLock {
		bake = VariantRotation(key.X, key.Y)
	}
	t := &Template{
		Key:                key,
		MaterialGeometries: buildGeometry(part.Model, bake, key.UVLock, key.Tint, textures),
		Textures:           textures,
	}
	r.builds.Add(1)
	return r.templates.Store(t), nil
}

// texture carrega a textura pela store. Chamado com buildMu travado.
func (r *Resolver) texture(ctx context.Context, name string) (*Texture, error) {
	if tex, ok := r.textures[name]; ok {
		return tex, nil
	}

	tex := &Texture{Name: name}
	blob, err := r.store.GetBlob(ctx, assets.TexturePath(name))
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar textura %s: %w", name, err)
	}
	if blob != nil {
		tex.Data = blob.Data
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data)); err == nil {
			tex.Width, tex.Height = cfg.Width, cfg.Height
		} else {
			log.Printf("[Resolver] textura %s ilegível: %v", name, err)
		}
		_, animated, err := r.store.GetText(ctx, assets.TextureMetaPath(name))
		if err != nil {
			return nil, err
		}
		tex.Animated = animated
	}
	r.textures[name] = tex
	return tex, nil
}

// Clear descarta todos os templates (e as texturas associadas). Deve ser chamado
// antes de reconstruir a geometria de uma nova estrutura.
func (r *Resolver) Clear() {
	r.buildMu.Lock()
	r.textures = make(map[string]*Texture)
	r.buildMu.Unlock()

	n := r.templates.Clear()
	log.Printf("[Resolver] %d templates descartados", n)
}

// TemplateCount retorna o número de templates vivos.
func (r *Resolver) TemplateCount() int {
	return r.templates.Len()
}

// Builds retorna quantos templates foram construídos desde a criação.
func (r *Resolver) Builds() int64 {
	return r.builds.Load()
}

// Resolves retorna quantas chamadas a Resolve foram feitas.
func (r *Resolver) Resolves() int64 {
	return r.resolves.Load()
}

// tintFor retorna a cor aplicada às faces com tintindex.
func tintFor(name string) [4]uint8 {
	_, path := mapdata.SplitName(name)
	switch {
	case strings.Contains(path, "spruce_leaves"):
		return [4]uint8{97, 153, 97, 255}
	case strings.Contains(path, "birch_leaves"):
		return [4]uint8{128, 167, 85, 255}
	case strings.Contains(path, "leaves"), path == "vine":
		return [4]uint8{72, 181, 24, 255}
	case strings.Contains(path, "water"):
		return [4]uint8{63, 118, 228, 255}
	case path == "redstone_wire":
		return [4]uint8{200, 30, 20, 255}
	case strings.Contains(path, "grass"), strings.Contains(path, "fern"),
		path == "sugar_cane", path == "lily_pad":
		return [4]uint8{124, 189, 107, 255}
	}
	return white
}
