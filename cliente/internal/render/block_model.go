package render

import (
	"StructureVision/cliente/internal/meshing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TemplateModel é a versão em GPU de um template: uma malha por textura.
type TemplateModel struct {
	Template *meshing.Template
	Parts    []ModelPart
	Uploaded bool
}

// ModelPart é uma malha com o material da sua textura.
type ModelPart struct {
	TextureName string
	Mesh        rl.Mesh
	Material    rl.Material
	Texture     *TextureRef
	Transparent bool
}

// TextureRef conta quantos templates usam uma textura carregada.
type TextureRef struct {
	Texture     rl.Texture2D
	Transparent bool
	refs        int
}
