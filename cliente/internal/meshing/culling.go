package meshing

import (
	"StructureVision/cliente/internal/assets"
	"StructureVision/shared/mapdata"
	"StructureVision/shared/util"
)

// Grid é o acesso mínimo à estrutura que o culler precisa.
type Grid interface {
	Size() util.Size
	Block(pos util.Pos) (mapdata.Block, bool)
}

// Culler decide, por voxel, se alguma face está exposta.
type Culler struct {
	catalog *assets.Catalog
}

// NewCuller cria um culler com o catálogo de oclusão dado (nil usa o embutido).
func NewCuller(catalog *assets.Catalog) *Culler {
	if catalog == nil {
		catalog = assets.DefaultCatalog()
	}
	return &Culler{catalog: catalog}
}

// IsInvisible indica se o tipo nunca produz geometria (ar e afins).
func (c *Culler) IsInvisible(b mapdata.Block) bool {
	return c.catalog.IsInvisible(b.Name)
}

// NeedsGeometry retorna true se o voxel em pos tem pelo menos uma face exposta.
// Para na primeira face exposta encontrada.
func (c *Culler) NeedsGeometry(g Grid, pos util.Pos, b mapdata.Block) bool {
	if c.IsInvisible(b) {
		return false
	}
	size := g.Size()
	for _, dir := range util.Faces {
		if c.shouldDrawFace(g, size, pos, dir) {
			return true
		}
	}
	return false
}

// ExposedFaces conta as faces expostas do voxel. Zero equivale a NeedsGeometry false.
func (c *Culler) ExposedFaces(g Grid, pos util.Pos, b mapdata.Block) int {
	if c.IsInvisible(b) {
		return 0
	}
	size := g.Size()
	n := 0
	for _, dir := range util.Faces {
		if c.shouldDrawFace(g, size, pos, dir) {
			n++
		}
	}
	return n
}

func (c *Culler) shouldDrawFace(g Grid, size util.Size, pos util.Pos, dir util.Directions) bool {
	neighborPos := pos.AddDir(dir)
	if !size.Contains(neighborPos) {
		return true
	}
	neighbor, ok := g.Block(neighborPos)
	if !ok {
		return true
	}
	return !c.catalog.IsOccluding(neighbor.Name)
}
