package meshing

import (
	"testing"

	"StructureVision/shared/mapdata"
	"StructureVision/shared/util"
)

func solidCube(n int, name string) *mapdata.Structure {
	st := mapdata.NewStructure(n, n, n)
	for y := 0; y < n; y++ {
		for z := 0; z < n; z++ {
			for x := 0; x < n; x++ {
				st.Put(util.NewPos(x, y, z), mapdata.NewBlock(name, nil))
			}
		}
	}
	return st
}

func TestCullerEnclosedVoxel(t *testing.T) {
	c := NewCuller(nil)
	st := solidCube(3, "stone")
	center := util.NewPos(1, 1, 1)
	b, _ := st.Block(center)

	if c.NeedsGeometry(st, center, b) {
		t.Errorf("voxel cercado de pedra deveria ser descartado")
	}
	if got := c.ExposedFaces(st, center, b); got != 0 {
		t.Errorf("ExposedFaces(centro) = %d, want 0", got)
	}
}

func TestCullerBoundaryExposed(t *testing.T) {
	c := NewCuller(nil)
	st := solidCube(3, "stone")

	for y := 0; y < 3; y++ {
		for z := 0; z < 3; z++ {
			for x := 0; x < 3; x++ {
				p := util.NewPos(x, y, z)
				b, _ := st.Block(p)
				want := p != util.NewPos(1, 1, 1)
				if got := c.NeedsGeometry(st, p, b); got != want {
					t.Errorf("NeedsGeometry(%v) = %v, want %v", p, got, want)
				}
			}
		}
	}

	corner := util.NewPos(0, 0, 0)
	b, _ := st.Block(corner)
	if got := c.ExposedFaces(st, corner, b); got != 3 {
		t.Errorf("ExposedFaces(canto) = %d, want 3", got)
	}
}

func TestCullerNeighbourKinds(t *testing.T) {
	tests := []struct {
		neighbour string // "" = posição vazia
		raw       bool   // entra na paleta como veio, sem NewBlock
		want      bool
	}{
		{"", false, true},
		{"air", false, true},
		{"glass", false, true},
		{"oak_leaves", false, true},
		{"oak_stairs", false, true},
		{"dirt", false, false},
		{"stone", false, false},
		{"air", true, true},
		{"glass", true, true},
		{"minecraft:air", true, true},
		{"stone", true, false},
	}

	c := NewCuller(nil)
	for _, tt := range tests {
		st := solidCube(3, "stone")
		// Reconstrói com a face leste do centro trocada
		st2 := mapdata.NewStructure(3, 3, 3)
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				for x := 0; x < 3; x++ {
					p := util.NewPos(x, y, z)
					if p == util.NewPos(2, 1, 1) {
						switch {
						case tt.neighbour == "":
						case tt.raw:
							st2.SetBlock(p, st2.AddPalette(mapdata.Block{Name: tt.neighbour}))
						default:
							st2.Put(p, mapdata.NewBlock(tt.neighbour, nil))
						}
						continue
					}
					b, _ := st.Block(p)
					st2.Put(p, b)
				}
			}
		}

		center := util.NewPos(1, 1, 1)
		b, _ := st2.Block(center)
		if got := c.NeedsGeometry(st2, center, b); got != tt.want {
			t.Errorf("vizinho %q (raw=%v): NeedsGeometry = %v, want %v", tt.neighbour, tt.raw, got, tt.want)
		}
	}
}

func TestCullerInvisibleBlocks(t *testing.T) {
	c := NewCuller(nil)
	st := mapdata.NewStructure(1, 1, 1)

	for _, name := range []string{"air", "cave_air", "void_air", "structure_void"} {
		b := mapdata.NewBlock(name, nil)
		st.Put(util.NewPos(0, 0, 0), b)
		if c.NeedsGeometry(st, util.NewPos(0, 0, 0), b) {
			t.Errorf("%s não deveria gerar geometria", name)
		}
	}
}

// rawGrid devolve os nomes exatamente como foram gravados.
type rawGrid struct {
	size   util.Size
	blocks map[util.Pos]mapdata.Block
}

func (g rawGrid) Size() util.Size { return g.size }

func (g rawGrid) Block(p util.Pos) (mapdata.Block, bool) {
	b, ok := g.blocks[p]
	return b, ok
}

func TestCullerBareNamesFromAnyGrid(t *testing.T) {
	tests := []struct {
		top  string
		want bool
	}{
		{"air", true},
		{"glass", true},
		{"cave_air", true},
		{"stone", false},
		{"minecraft:stone", false},
	}

	c := NewCuller(nil)
	for _, tt := range tests {
		g := rawGrid{size: util.Size{Width: 3, Height: 3, Length: 3}, blocks: map[util.Pos]mapdata.Block{}}
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				for x := 0; x < 3; x++ {
					g.blocks[util.NewPos(x, y, z)] = mapdata.Block{Name: "stone"}
				}
			}
		}
		g.blocks[util.NewPos(1, 2, 1)] = mapdata.Block{Name: tt.top}

		center := util.NewPos(1, 1, 1)
		if got := c.NeedsGeometry(g, center, g.blocks[center]); got != tt.want {
			t.Errorf("vizinho de cima %q: NeedsGeometry = %v, want %v", tt.top, got, tt.want)
		}
	}
	if !c.IsInvisible(mapdata.Block{Name: "air"}) {
		t.Errorf("IsInvisible(air) deveria ser true")
	}
}
