package meshing

import (
	"math/rand/v2"

	"StructureVision/cliente/internal/assets"
)

// ModelPart é um modelo achatado com a rotação/uvlock pedida pelo blockstate.
type ModelPart struct {
	Model  *assets.Model
	X, Y   int
	UVLock bool
	Weight int
}

// ModelOption é a escolha concreta para uma instância de voxel.
type ModelOption struct {
	Parts []ModelPart
}

// StrategyKind identifica a regra de seleção de variante.
type StrategyKind int

const (
	StrategyNone StrategyKind = iota
	StrategyWeighted
	StrategyMultipart
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyWeighted:
		return "weighted"
	case StrategyMultipart:
		return "multipart"
	}
	return "none"
}

// Strategy é a união etiquetada das regras de seleção. Cada etiqueta tem uma única
// regra de avaliação, determinística dado o gerador.
type Strategy interface {
	Kind() StrategyKind
	choose(rng *rand.Rand) ModelOption
}

// WeightedStrategy sorteia um candidato proporcionalmente ao peso.
type WeightedStrategy struct {
	Candidates []ModelPart
}

func (s *WeightedStrategy) Kind() StrategyKind { return StrategyWeighted }

func (s *WeightedStrategy) choose(rng *rand.Rand) ModelOption {
	if p, ok := pickWeighted(s.Candidates, rng); ok {
		return ModelOption{Parts: []ModelPart{p}}
	}
	return ModelOption{}
}

// MultipartCase é um caso já resolvido: condição + candidatos ponderados.
type MultipartCase struct {
	When       *assets.Condition
	Candidates []ModelPart
}

// MultipartStrategy avalia cada caso contra as propriedades do bloco; cada caso
// que casa contribui com um sorteio ponderado.
type MultipartStrategy struct {
	Cases []MultipartCase
	Props map[string]string
}

func (s *MultipartStrategy) Kind() StrategyKind { return StrategyMultipart }

func (s *MultipartStrategy) choose(rng *rand.Rand) ModelOption {
	var opt ModelOption
	for i := range s.Cases {
		c := &s.Cases[i]
		if !c.When.Matches(s.Props) {
			continue
		}
		if p, ok := pickWeighted(c.Candidates, rng); ok {
			opt.Parts = append(opt.Parts, p)
		}
	}
	return opt
}

func pickWeighted(candidates []ModelPart, rng *rand.Rand) (ModelPart, bool) {
	switch len(candidates) {
	case 0:
		return ModelPart{}, false
	case 1:
		return candidates[0], true
	}
	total := 0
	for _, c := range candidates {
		total += max(c.Weight, 1)
	}
	n := rng.IntN(total)
	for _, c := range candidates {
		n -= max(c.Weight, 1)
		if n < 0 {
			return c, true
		}
	}
	return candidates[len(candidates)-1], true
}

// BlockModelData é o resultado resolvido para uma BlockVisualKey.
// Strategy nil significa "sem geometria" para o tipo.
type BlockModelData struct {
	Key      BlockVisualKey
	Strategy Strategy
}

// Empty indica que o tipo não tem geometria visível.
func (d *BlockModelData) Empty() bool {
	if d == nil || d.Strategy == nil {
		return true
	}
	switch s := d.Strategy.(type) {
	case *WeightedStrategy:
		return len(s.Candidates) == 0
	case *MultipartStrategy:
		return len(s.Cases) == 0
	}
	return false
}
