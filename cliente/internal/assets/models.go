package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"StructureVision/shared/util"
)

// maxParentDepth limita a cadeia de herança de modelos (proteção contra ciclos).
const maxParentDepth = 32

// --- Estruturas JSON ---

// ModelFace é uma face de um elemento de modelo.
type ModelFace struct {
	UV        *[4]float32 `json:"uv,omitempty"`
	Texture   string      `json:"texture"`
	CullFace  string      `json:"cullface,omitempty"`
	Rotation  int         `json:"rotation,omitempty"`
	TintIndex *int        `json:"tintindex,omitempty"`
}

// ElementRotation gira um elemento em torno de um eixo passando pela origem.
type ElementRotation struct {
	Origin  [3]float32 `json:"origin"`
	Axis    string     `json:"axis"`
	Angle   float32    `json:"angle"`
	Rescale bool       `json:"rescale,omitempty"`
}

// ModelElement é uma caixa alinhada (coordenadas 0..16) com até seis faces.
type ModelElement struct {
	From     [3]float32           `json:"from"`
	To       [3]float32           `json:"to"`
	Rotation *ElementRotation     `json:"rotation,omitempty"`
	Shade    *bool                `json:"shade,omitempty"`
	Faces    map[string]ModelFace `json:"faces"`
}

// BlockModel é o root de assets/<ns>/models/<nome>.json
type BlockModel struct {
	Parent           string            `json:"parent,omitempty"`
	AmbientOcclusion *bool             `json:"ambientocclusion,omitempty"`
	Textures         map[string]string `json:"textures,omitempty"`
	Elements         []ModelElement    `json:"elements,omitempty"`
}

// Model é um modelo já achatado: herança resolvida e variáveis de textura expandidas.
type Model struct {
	Name     string
	Textures map[string]string
	Elements []ModelElement
}

// ResolveTexture segue as referências "#var" até um nome de textura concreto.
// Retorna "" se a cadeia não terminar em uma textura.
func (m *Model) ResolveTexture(ref string) string {
	for i := 0; i < maxParentDepth; i++ {
		if !strings.HasPrefix(ref, "#") {
			return ref
		}
		next, ok := m.Textures[strings.TrimPrefix(ref, "#")]
		if !ok {
			return ""
		}
		ref = next
	}
	return ""
}

// ModelPath converte "ns:block/nome" no caminho do JSON do modelo.
func ModelPath(name string) string {
	ns, p := splitResource(name)
	return "assets/" + ns + "/models/" + p + ".json"
}

// TexturePath converte "ns:block/nome" no caminho do PNG da textura.
func TexturePath(name string) string {
	ns, p := splitResource(name)
	return "assets/" + ns + "/textures/" + p + ".png"
}

// TextureMetaPath é o .mcmeta de animação que acompanha a textura.
func TextureMetaPath(name string) string {
	return TexturePath(name) + ".mcmeta"
}

// NormalizeResource adiciona o namespace padrão a um nome de recurso.
func NormalizeResource(name string) string {
	ns, p := splitResource(name)
	return ns + ":" + p
}

// --- Fonte de modelos ---

// ModelSource lê e achata modelos através da store.
type ModelSource struct {
	store *Store
}

// NewModelSource cria a fonte sobre a store.
func NewModelSource(store *Store) *ModelSource {
	return &ModelSource{store: store}
}

// Store retorna a store subjacente.
func (s *ModelSource) Store() *Store {
	return s.store
}

func (s *ModelSource) fetch(ctx context.Context, name string) (*BlockModel, error) {
	text, found, err := s.store.GetText(ctx, ModelPath(name))
	if err != nil || !found {
		return nil, err
	}
	var m BlockModel
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("falha ao parsear modelo %s: %w", name, err)
	}
	for i := range m.Elements {
		for face := range m.Elements[i].Faces {
			if _, ok := util.ParseDirection(face); !ok {
				log.Printf("[Assets] Face desconhecida %q em %s, ignorada", face, name)
				delete(m.Elements[i].Faces, face)
			}
		}
	}
	return &m, nil
}

// Get retorna o modelo achatado, ou nil se o modelo (ou algum ancestral) não existe.
// Ancestrais "builtin/*" encerram a cadeia.
func (s *ModelSource) Get(ctx context.Context, name string) (*Model, error) {
	name = NormalizeResource(name)

	var chain []*BlockModel
	current := name
	for depth := 0; ; depth++ {
		if depth >= maxParentDepth {
			return nil, fmt.Errorf("cadeia de herança longa demais em %s", name)
		}
		m, err := s.fetch(ctx, current)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, nil
		}
		chain = append(chain, m)
		if m.Parent == "" {
			break
		}
		_, parentPath := splitResource(m.Parent)
		if strings.HasPrefix(parentPath, "builtin/") {
			break
		}
		current = NormalizeResource(m.Parent)
	}

	out := &Model{Name: name, Textures: make(map[string]string)}
	// Do ancestral mais distante para o filho: o filho sobrescreve texturas
	// e o primeiro que declarar elementos define a geometria.
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Textures {
			out.Textures[k] = v
		}
		if len(chain[i].Elements) > 0 {
			out.Elements = chain[i].Elements
		}
	}
	return out, nil
}
