package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sort"
	"unsafe"

	"StructureVision/cliente/internal/meshing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// uploadTemplate envia a geometria do template para a GPU. Só no thread de render.
func (s *Scene) uploadTemplate(tm *TemplateModel) {
	geoms := tm.Template.Geometries()
	if geoms == nil {
		// Descartado antes do upload
		tm.Uploaded = true
		return
	}

	names := make([]string, 0, len(geoms))
	for name := range geoms {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		geo := geoms[name]
		if geo.VertexCount() == 0 {
			continue
		}
		ref := s.acquireTexture(tm.Template.Textures[name])

		mesh := s.geometryToMesh(geo)
		rl.UploadMesh(&mesh, false)

		material := rl.LoadMaterialDefault()
		if s.blockInstancedShader.ID != 0 && s.opts.Instancing {
			material.Shader = s.blockInstancedShader
		} else if s.blockShader.ID != 0 {
			material.Shader = s.blockShader
		}
		rl.SetMaterialTexture(&material, rl.MapDiffuse, ref.Texture)

		tm.Parts = append(tm.Parts, ModelPart{
			TextureName: name,
			Mesh:        mesh,
			Material:    material,
			Texture:     ref,
			Transparent: ref.Transparent,
		})
	}
	if len(tm.Parts) == 0 {
		log.Printf("[Renderer] Modelo %s sem geometria desenhável", tm.Template.ModelName())
	}
	tm.Uploaded = true
}

// unloadTemplate libera malhas, materiais e texturas sem uso. Só no thread de render.
func (s *Scene) unloadTemplate(tm *TemplateModel) {
	for i := range tm.Parts {
		p := &tm.Parts[i]
		rl.UnloadMesh(&p.Mesh)
		// UnloadMaterial descarregaria o shader e a textura compartilhados
		if p.Material.Maps != nil {
			C.free(unsafe.Pointer(p.Material.Maps))
			p.Material.Maps = nil
		}
		s.releaseTexture(p.Texture)
	}
	tm.Parts = nil
}

func (s *Scene) acquireTexture(tex *meshing.Texture) *TextureRef {
	if ref, ok := s.textures[tex]; ok {
		ref.refs++
		return ref
	}
	ref := &TextureRef{refs: 1}
	ref.Texture, ref.Transparent = loadTexture(tex)
	s.textures[tex] = ref
	return ref
}

func (s *Scene) releaseTexture(ref *TextureRef) {
	if ref == nil {
		return
	}
	ref.refs--
	if ref.refs > 0 {
		return
	}
	for k, v := range s.textures {
		if v == ref {
			delete(s.textures, k)
			break
		}
	}
	rl.UnloadTexture(ref.Texture)
}

// loadTexture decodifica o PNG direto da memória. Texturas ausentes viram um xadrez magenta.
func loadTexture(tex *meshing.Texture) (rl.Texture2D, bool) {
	var img *rl.Image
	if tex != nil && tex.Data != nil {
		img = rl.LoadImageFromMemory(".png", tex.Data, int32(len(tex.Data)))
	}
	if img == nil || img.Data == nil {
		if tex != nil {
			log.Printf("[Renderer] FALHA ao carregar textura: %s", tex.Name)
		}
		img = rl.GenImageChecked(16, 16, 8, 8, rl.Magenta, rl.Black)
	}
	defer rl.UnloadImage(img)

	transparent := false
	colors := rl.LoadImageColors(img)
	for _, c := range colors {
		if c.A < 255 {
			transparent = true
			break
		}
	}
	rl.UnloadImageColors(colors)

	t := rl.LoadTextureFromImage(img)
	// Pixel art: sem filtro
	rl.SetTextureFilter(t, rl.FilterPoint)
	rl.SetTextureWrap(t, rl.WrapRepeat)
	return t, transparent
}

func (s *Scene) geometryToMesh(data meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	vCount := int32(len(data.Vertices) / 3)
	mesh.VertexCount = vCount
	mesh.TriangleCount = vCount / 3

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	return mesh
}

// copyToC copia para memória C; raylib libera esses buffers em UnloadMesh.
func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}
