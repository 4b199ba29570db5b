// Package assettest monta resource packs sintéticos para testes.
package assettest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"StructureVision/cliente/internal/assets"
)

// PNG gera uma textura sólida w x h.
func PNG(w, h int, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

const cubeModel = `{
	"parent": "block/block",
	"elements": [{
		"from": [0, 0, 0], "to": [16, 16, 16],
		"faces": {
			"down":  {"texture": "#down", "cullface": "down"},
			"up":    {"texture": "#up", "cullface": "up"},
			"north": {"texture": "#north", "cullface": "north"},
			"south": {"texture": "#south", "cullface": "south"},
			"west":  {"texture": "#west", "cullface": "west"},
			"east":  {"texture": "#east", "cullface": "east"}
		}
	}]
}`

const cubeAllModel = `{
	"parent": "block/cube",
	"textures": {"particle": "#all", "down": "#all", "up": "#all", "north": "#all", "east": "#all", "south": "#all", "west": "#all"}
}`

// Files retorna as entradas do pack padrão. Blocos disponíveis:
//   - stone, glass, dirt (4 variantes ponderadas giradas), oak_log (axis),
//     grass_block (tint no topo), oak_fence (multipart), magma (textura animada)
//   - air não tem blockstate
func Files() map[string][]byte {
	gray := PNG(16, 16, color.NRGBA{128, 128, 128, 255})
	return map[string][]byte{
		"assets/minecraft/models/block/block.json":    []byte(`{"ambientocclusion": true}`),
		"assets/minecraft/models/block/cube.json":     []byte(cubeModel),
		"assets/minecraft/models/block/cube_all.json": []byte(cubeAllModel),
		"assets/minecraft/models/block/cube_column.json": []byte(`{
			"parent": "block/cube",
			"textures": {"down": "#end", "up": "#end", "north": "#side", "east": "#side", "south": "#side", "west": "#side"}
		}`),

		"assets/minecraft/models/block/stone.json": []byte(`{"parent": "block/cube_all", "textures": {"all": "block/stone"}}`),
		"assets/minecraft/models/block/glass.json": []byte(`{"parent": "block/cube_all", "textures": {"all": "block/glass"}}`),
		"assets/minecraft/models/block/dirt.json":  []byte(`{"parent": "block/cube_all", "textures": {"all": "block/dirt"}}`),
		"assets/minecraft/models/block/magma.json": []byte(`{"parent": "block/cube_all", "textures": {"all": "block/magma"}}`),
		"assets/minecraft/models/block/oak_log.json": []byte(`{
			"parent": "block/cube_column",
			"textures": {"end": "block/oak_log_top", "side": "block/oak_log"}
		}`),
		"assets/minecraft/models/block/grass_block.json": []byte(`{
			"parent": "block/block",
			"textures": {"top": "block/grass_block_top", "side": "block/grass_block_side", "bottom": "block/dirt"},
			"elements": [{
				"from": [0, 0, 0], "to": [16, 16, 16],
				"faces": {
					"down":  {"texture": "#bottom"},
					"up":    {"texture": "#top", "tintindex": 0},
					"north": {"texture": "#side"},
					"south": {"texture": "#side"},
					"west":  {"texture": "#side"},
					"east":  {"texture": "#side"}
				}
			}]
		}`),
		"assets/minecraft/models/block/oak_fence_post.json": []byte(`{
			"textures": {"texture": "block/oak_planks"},
			"elements": [{"from": [6, 0, 6], "to": [10, 16, 10], "faces": {
				"up": {"texture": "#texture", "uv": [6, 6, 10, 10]},
				"north": {"texture": "#texture", "uv": [6, 0, 10, 16]}
			}}]
		}`),
		"assets/minecraft/models/block/oak_fence_side.json": []byte(`{
			"textures": {"texture": "block/oak_planks"},
			"elements": [{"from": [7, 12, 0], "to": [9, 15, 9],
				"rotation": {"origin": [8, 8, 8], "axis": "y", "angle": 0},
				"faces": {"west": {"texture": "#texture", "rotation": 90}}}]
		}`),

		"assets/minecraft/blockstates/stone.json":       []byte(`{"variants": {"": {"model": "minecraft:block/stone"}}}`),
		"assets/minecraft/blockstates/glass.json":       []byte(`{"variants": {"": {"model": "minecraft:block/glass"}}}`),
		"assets/minecraft/blockstates/magma_block.json": []byte(`{"variants": {"": {"model": "minecraft:block/magma"}}}`),
		"assets/minecraft/blockstates/grass_block.json": []byte(`{"variants": {"snowy=false": {"model": "block/grass_block"}, "snowy=true": {"model": "block/grass_block"}}}`),
		"assets/minecraft/blockstates/dirt.json": []byte(`{"variants": {"": [
			{"model": "block/dirt"},
			{"model": "block/dirt", "y": 90},
			{"model": "block/dirt", "y": 180, "weight": 2},
			{"model": "block/dirt", "y": 270}
		]}}`),
		"assets/minecraft/blockstates/oak_log.json": []byte(`{"variants": {
			"axis=y": {"model": "block/oak_log"},
			"axis=z": {"model": "block/oak_log", "x": 90},
			"axis=x": {"model": "block/oak_log", "x": 90, "y": 90, "uvlock": true}
		}}`),
		"assets/minecraft/blockstates/oak_fence.json": []byte(`{"multipart": [
			{"apply": {"model": "block/oak_fence_post"}},
			{"when": {"north": "true"}, "apply": {"model": "block/oak_fence_side", "uvlock": true}},
			{"when": {"east": "true"}, "apply": {"model": "block/oak_fence_side", "y": 90, "uvlock": true}},
			{"when": {"south": "true"}, "apply": {"model": "block/oak_fence_side", "y": 180, "uvlock": true}},
			{"when": {"west": "true"}, "apply": {"model": "block/oak_fence_side", "y": 270, "uvlock": true}}
		]}`),

		"assets/minecraft/textures/block/stone.png":            gray,
		"assets/minecraft/textures/block/glass.png":            PNG(16, 16, color.NRGBA{200, 230, 255, 80}),
		"assets/minecraft/textures/block/dirt.png":             PNG(16, 16, color.NRGBA{120, 85, 60, 255}),
		"assets/minecraft/textures/block/oak_log.png":          PNG(16, 16, color.NRGBA{100, 80, 50, 255}),
		"assets/minecraft/textures/block/oak_log_top.png":      PNG(16, 16, color.NRGBA{160, 130, 80, 255}),
		"assets/minecraft/textures/block/oak_planks.png":       PNG(16, 16, color.NRGBA{160, 130, 80, 255}),
		"assets/minecraft/textures/block/grass_block_top.png":  gray,
		"assets/minecraft/textures/block/grass_block_side.png": PNG(16, 16, color.NRGBA{110, 150, 70, 255}),
		"assets/minecraft/textures/block/magma.png":            PNG(16, 48, color.NRGBA{200, 80, 20, 255}),
		"assets/minecraft/textures/block/magma.png.mcmeta":     []byte(`{"animation": {"frametime": 8}}`),
	}
}

// NewPack cria um MemArchive com o pack padrão.
func NewPack(name string) *assets.MemArchive {
	return assets.NewMemArchive(name, Files())
}
