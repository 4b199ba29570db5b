package meshing

import (
	"slices"
	"strconv"
	"strings"

	"StructureVision/shared/mapdata"
)

// BlockVisualKey é a chave canônica do cache de lookup: nome + propriedades ordenadas.
// É comparável e independe da ordem de iteração do mapa de propriedades.
type BlockVisualKey struct {
	Name  string
	Props string // pares "nome"="valor" ordenados por nome, separados por vírgula
}

// KeyOf deriva a chave canônica de um bloco.
func KeyOf(b mapdata.Block) BlockVisualKey {
	if len(b.Properties) == 0 {
		return BlockVisualKey{Name: b.Name}
	}

	names := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		names = append(names, k)
	}
	slices.Sort(names)

	var sb strings.Builder
	for i, k := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteByte('=')
		sb.WriteString(strconv.Quote(b.Properties[k]))
	}
	return BlockVisualKey{Name: b.Name, Props: sb.String()}
}

func (k BlockVisualKey) String() string {
	if k.Props == "" {
		return k.Name
	}
	return k.Name + "[" + k.Props + "]"
}
