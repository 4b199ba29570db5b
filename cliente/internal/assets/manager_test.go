package assets

import "testing"

func TestMatchToken(t *testing.T) {
	tests := []struct {
		pattern string
		query   string
		want    bool
	}{
		{"*", "anything", true},
		{"*:air", "minecraft:air", true},
		{"*:air", "minecraft:cave_air", false},
		{"*:*_slab", "minecraft:oak_slab", true},
		{"*:*_slab", "minecraft:oak_planks", false},
		{"minecraft:*glass*", "minecraft:white_stained_glass_pane", true},
		{"create:*", "minecraft:stone", false},
		{"*:stone", "stone", false},
	}

	for _, tt := range tests {
		got := matchToken(tt.pattern, tt.query)
		if got != tt.want {
			t.Errorf("matchToken(%q, %q) = %v, want %v", tt.pattern, tt.query, got, tt.want)
		}
	}
}

func TestSpecificityScore(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"*", 0},
		{"*:*", 0},
		{"*:*_slab", 1},
		{"*:air", 2},
		{"minecraft:air", 4},
	}

	for _, tt := range tests {
		got := specificityScore(tt.pattern)
		if got != tt.want {
			t.Errorf("specificityScore(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name string
		want Occlusion
	}{
		{"minecraft:air", OcclusionInvisible},
		{"minecraft:cave_air", OcclusionInvisible},
		{"minecraft:void_air", OcclusionInvisible},
		{"minecraft:structure_void", OcclusionInvisible},
		{"minecraft:stone", OcclusionOpaque},
		{"minecraft:grass_block", OcclusionOpaque},
		{"minecraft:glass", OcclusionTransparent},
		{"minecraft:oak_leaves", OcclusionTransparent},
		{"minecraft:oak_stairs", OcclusionTransparent},
		{"mod:custom_block", OcclusionOpaque},
		{"air", OcclusionInvisible},
		{"glass", OcclusionTransparent},
		{"stone", OcclusionOpaque},
	}

	for _, tt := range tests {
		if got := c.Lookup(tt.name); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseCatalogOverride(t *testing.T) {
	c, err := ParseCatalog([]byte(`
blocks:
  - tokens: ["*:*_slab"]
    occlusion: transparent
  - tokens: ["minecraft:smooth_stone_slab"]
    occlusion: opaque
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if !c.IsOccluding("minecraft:smooth_stone_slab") {
		t.Errorf("padrão literal deveria vencer o curinga")
	}
	if c.IsOccluding("minecraft:oak_slab") {
		t.Errorf("oak_slab não deveria ocluir")
	}

	if _, err := ParseCatalog([]byte("blocks:\n  - tokens: [\"*\"]\n    occlusion: sólido\n")); err == nil {
		t.Errorf("classe desconhecida deveria falhar")
	}
}
