package mapdata

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"StructureVision/shared/util"
)

// ErrMalformed indica uma estrutura inválida, rejeitada antes de qualquer trabalho de cache.
var ErrMalformed = errors.New("estrutura malformada")

// DefaultNamespace é aplicado a nomes de bloco sem namespace explícito.
const DefaultNamespace = "minecraft"

// Block identifica a variante visual exata de um voxel: tipo + propriedades.
type Block struct {
	Name       string
	Properties map[string]string
}

// NewBlock cria um bloco normalizando o namespace do nome.
func NewBlock(name string, props map[string]string) Block {
	return Block{Name: NormalizeName(name), Properties: props}
}

// NormalizeName garante o formato "namespace:caminho".
func NormalizeName(name string) string {
	if name == "" || strings.Contains(name, ":") {
		return name
	}
	return DefaultNamespace + ":" + name
}

// SplitName separa "namespace:caminho". Nomes sem namespace usam o padrão.
func SplitName(name string) (namespace, path string) {
	if ns, p, ok := strings.Cut(name, ":"); ok {
		return ns, p
	}
	return DefaultNamespace, name
}

// Property retorna o valor de uma propriedade (string vazia se ausente).
func (b Block) Property(name string) string {
	return b.Properties[name]
}

// Clone copia o bloco, incluindo o mapa de propriedades.
func (b Block) Clone() Block {
	return Block{Name: b.Name, Properties: maps.Clone(b.Properties)}
}

// String retorna o formato "nome[a=1,b=2]" (sem ordenação garantida, apenas para logs).
func (b Block) String() string {
	if len(b.Properties) == 0 {
		return b.Name
	}
	parts := make([]string, 0, len(b.Properties))
	for k, v := range b.Properties {
		parts = append(parts, k+"="+v)
	}
	return b.Name + "[" + strings.Join(parts, ",") + "]"
}

// Structure é a grade 3D finita de voxels a ser visualizada.
// Armazenamento esparso: apenas posições com bloco são guardadas, referenciando a paleta.
type Structure struct {
	size    util.Size
	palette []Block
	blocks  map[int]int // índice linear -> índice na paleta
	Version string      // marcador de versão usado para escolher o arquivo primário
}

// NewStructure cria uma estrutura vazia com as dimensões dadas.
func NewStructure(width, height, length int) *Structure {
	return &Structure{
		size:   util.Size{Width: width, Height: height, Length: length},
		blocks: make(map[int]int),
	}
}

// Size retorna as dimensões da estrutura.
func (s *Structure) Size() util.Size {
	return s.size
}

// Palette retorna a paleta de blocos distintos na ordem de inserção.
func (s *Structure) Palette() []Block {
	return s.palette
}

// BlockTypes enumera os blocos distintos efetivamente presentes na grade.
// A ordem segue a paleta, garantindo determinismo.
func (s *Structure) BlockTypes() []Block {
	used := make([]bool, len(s.palette))
	for _, idx := range s.blocks {
		used[idx] = true
	}
	types := make([]Block, 0, len(s.palette))
	for i, b := range s.palette {
		if used[i] {
			types = append(types, b)
		}
	}
	return types
}

// AddPalette registra um bloco na paleta e retorna seu índice.
// Nomes sem namespace recebem o padrão.
func (s *Structure) AddPalette(b Block) int {
	b.Name = NormalizeName(b.Name)
	s.palette = append(s.palette, b)
	return len(s.palette) - 1
}

// SetBlock coloca a entrada paletteIdx da paleta na posição.
// Posições fora da grade ou índices inválidos são ignorados.
func (s *Structure) SetBlock(p util.Pos, paletteIdx int) {
	if !s.size.Contains(p) || paletteIdx < 0 || paletteIdx >= len(s.palette) {
		return
	}
	s.blocks[s.size.Index(p)] = paletteIdx
}

// Put registra o bloco (reaproveitando uma entrada igual da paleta) e o coloca na posição.
func (s *Structure) Put(p util.Pos, b Block) {
	b.Name = NormalizeName(b.Name)
	for i, existing := range s.palette {
		if existing.Name == b.Name && maps.Equal(existing.Properties, b.Properties) {
			s.SetBlock(p, i)
			return
		}
	}
	s.SetBlock(p, s.AddPalette(b))
}

// Block retorna o bloco na posição. ok=false se vazio ou fora dos limites.
func (s *Structure) Block(p util.Pos) (Block, bool) {
	if !s.size.Contains(p) {
		return Block{}, false
	}
	idx, ok := s.blocks[s.size.Index(p)]
	if !ok {
		return Block{}, false
	}
	return s.palette[idx], true
}

// Count retorna o número de posições ocupadas.
func (s *Structure) Count() int {
	return len(s.blocks)
}

// Validate verifica a consistência da estrutura. Deve rodar antes de qualquer resolução.
func (s *Structure) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: estrutura nula", ErrMalformed)
	}
	if s.size.Width < 0 || s.size.Height < 0 || s.size.Length < 0 {
		return fmt.Errorf("%w: dimensões negativas %dx%dx%d", ErrMalformed, s.size.Width, s.size.Height, s.size.Length)
	}
	for i, b := range s.palette {
		if b.Name == "" {
			return fmt.Errorf("%w: entrada %d da paleta sem nome", ErrMalformed, i)
		}
	}
	volume := s.size.Volume()
	for idx, p := range s.blocks {
		if idx < 0 || idx >= volume {
			return fmt.Errorf("%w: índice %d fora da grade", ErrMalformed, idx)
		}
		if p < 0 || p >= len(s.palette) {
			return fmt.Errorf("%w: paleta %d inexistente", ErrMalformed, p)
		}
	}
	return nil
}
