package render

import (
	"sort"

	"StructureVision/cliente/internal/meshing"
	"StructureVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceBatch agrupa os fragments de um mesmo template para desenho instanciado.
type InstanceBatch struct {
	Model      *TemplateModel
	Fragments  map[*meshing.Fragment]rl.Matrix
	Transforms []rl.Matrix // reaproveitado entre frames, refeito quando dirty
	dirty      bool
}

func newInstanceBatch(tm *TemplateModel) *InstanceBatch {
	return &InstanceBatch{
		Model:     tm,
		Fragments: make(map[*meshing.Fragment]rl.Matrix),
		dirty:     true,
	}
}

func (b *InstanceBatch) add(f *meshing.Fragment) {
	b.Fragments[f] = toRaylib(f.Transform())
	b.dirty = true
}

func (b *InstanceBatch) remove(f *meshing.Fragment) bool {
	if _, ok := b.Fragments[f]; !ok {
		return false
	}
	delete(b.Fragments, f)
	b.dirty = true
	return true
}

// rebuild refaz o buffer de transformações. Com sortByDepth, ordena de trás para frente.
func (b *InstanceBatch) rebuild(camPos mgl32.Vec3, sortByDepth bool) {
	if !b.dirty && !sortByDepth {
		return
	}
	b.Transforms = b.Transforms[:0]
	for _, m := range b.Fragments {
		b.Transforms = append(b.Transforms, m)
	}
	if sortByDepth {
		sort.Slice(b.Transforms, func(i, j int) bool {
			return util.DistSq(translation(b.Transforms[i]), camPos) > util.DistSq(translation(b.Transforms[j]), camPos)
		})
	}
	b.dirty = false
}

// Draw renderiza o lote: 1 draw call por malha com instancing, ou uma por fragment sem.
func (b *InstanceBatch) Draw(transparent bool, instanced bool) {
	count := len(b.Transforms)
	if count == 0 {
		return
	}
	for _, p := range b.Model.Parts {
		if p.Transparent != transparent {
			continue
		}
		if instanced {
			rl.DrawMeshInstanced(p.Mesh, p.Material, b.Transforms, count)
			continue
		}
		for _, m := range b.Transforms {
			rl.DrawMesh(p.Mesh, p.Material, m)
		}
	}
}

// toRaylib converte mgl32 (coluna-maior) para rl.Matrix: Mi corresponde ao índice i.
func toRaylib(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func translation(m rl.Matrix) mgl32.Vec3 {
	return mgl32.Vec3{m.M12, m.M13, m.M14}
}
