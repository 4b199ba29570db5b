package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/cliente/internal/assets"
	"StructureVision/shared/util"
)

var white = [4]uint8{255, 255, 255, 255}

var faceNormals = [6][3]float32{
	util.DirUp:    {0, 1, 0},
	util.DirDown:  {0, -1, 0},
	util.DirNorth: {0, 0, -1},
	util.DirSouth: {0, 0, 1},
	util.DirEast:  {1, 0, 0},
	util.DirWest:  {-1, 0, 0},
}

// faceCorners retorna os cantos (TL, BL, BR, TR) da face de uma caixa, em ordem
// anti-horária vista de fora. min/max já em espaço de bloco [-0.5, 0.5].
func faceCorners(dir util.Directions, lo, hi mgl32.Vec3) [4]mgl32.Vec3 {
	x0, y0, z0 := lo.X(), lo.Y(), lo.Z()
	x1, y1, z1 := hi.X(), hi.Y(), hi.Z()
	switch dir {
	case util.DirUp:
		return [4]mgl32.Vec3{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}
	case util.DirDown:
		return [4]mgl32.Vec3{{x0, y0, z1}, {x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}}
	case util.DirNorth:
		return [4]mgl32.Vec3{{x1, y1, z0}, {x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}}
	case util.DirSouth:
		return [4]mgl32.Vec3{{x0, y1, z1}, {x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}}
	case util.DirEast:
		return [4]mgl32.Vec3{{x1, y1, z1}, {x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}}
	default: // Oeste
		return [4]mgl32.Vec3{{x0, y1, z0}, {x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}}
	}
}

// defaultUV calcula o UV (0..16) que um resource pack assume quando a face não declara "uv".
// from/to em coordenadas de modelo (0..16).
func defaultUV(dir util.Directions, from, to [3]float32) [4]float32 {
	switch dir {
	case util.DirUp:
		return [4]float32{from[0], from[2], to[0], to[2]}
	case util.DirDown:
		return [4]float32{from[0], 16 - to[2], to[0], 16 - from[2]}
	case util.DirNorth:
		return [4]float32{16 - to[0], 16 - to[1], 16 - from[0], 16 - from[1]}
	case util.DirSouth:
		return [4]float32{from[0], 16 - to[1], to[0], 16 - from[1]}
	case util.DirEast:
		return [4]float32{16 - to[2], 16 - to[1], 16 - from[2], 16 - from[1]}
	default: // Oeste
		return [4]float32{from[2], 16 - to[1], to[2], 16 - from[1]}
	}
}

// cornerUVs distribui o retângulo UV nos cantos (TL, BL, BR, TR), aplicando a
// rotação da face em passos de 90 graus.
func cornerUVs(uv [4]float32, rotation int, vScale float32) [4][2]float32 {
	u0, v0, u1, v1 := uv[0]/16, uv[1]/16*vScale, uv[2]/16, uv[3]/16*vScale
	base := [4][2]float32{{u0, v0}, {u0, v1}, {u1, v1}, {u1, v0}}
	steps := ((rotation/90)%4 + 4) % 4
	var out [4][2]float32
	for i := range out {
		out[i] = base[(i+steps)%4]
	}
	return out
}

func axisRotation(axis string, rad float32) mgl32.Mat4 {
	switch axis {
	case "x":
		return mgl32.HomogRotate3DX(rad)
	case "z":
		return mgl32.HomogRotate3DZ(rad)
	default:
		return mgl32.HomogRotate3DY(rad)
	}
}

// elementTransform monta a matriz de rotação (com rescale opcional) de um elemento.
func elementTransform(r *assets.ElementRotation) mgl32.Mat4 {
	if r == nil || r.Angle == 0 {
		return mgl32.Ident4()
	}
	rad := mgl32.DegToRad(r.Angle)
	origin := mgl32.Vec3{r.Origin[0]/16 - 0.5, r.Origin[1]/16 - 0.5, r.Origin[2]/16 - 0.5}

	m := axisRotation(r.Axis, rad)
	if r.Rescale {
		s := float32(1 / math.Cos(float64(rad)))
		scale := mgl32.Vec3{s, s, s}
		switch r.Axis {
		case "x":
			scale[0] = 1
		case "z":
			scale[2] = 1
		default:
			scale[1] = 1
		}
		m = m.Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
	}
	return mgl32.Translate3D(origin.X(), origin.Y(), origin.Z()).
		Mul4(m).
		Mul4(mgl32.Translate3D(-origin.X(), -origin.Y(), -origin.Z()))
}

// VariantRotation é a rotação x/y de um blockstate em torno do centro do bloco.
// y=90 leva a face norte para leste.
func VariantRotation(x, y int) mgl32.Mat4 {
	if x == 0 && y == 0 {
		return mgl32.Ident4()
	}
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(-float32(y)))
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(-float32(x)))
	return ry.Mul4(rx)
}

// dominantDirection encontra a face cujo normal mais se aproxima do vetor.
func dominantDirection(n mgl32.Vec3) util.Directions {
	best := util.DirUp
	bestDot := float32(-2)
	for _, d := range util.Faces {
		fn := faceNormals[d]
		dot := n.Dot(mgl32.Vec3{fn[0], fn[1], fn[2]})
		if dot > bestDot {
			bestDot = dot
			best = d
		}
	}
	return best
}

// lockedUV recalcula o UV a partir da posição já rotacionada (uvlock): a textura
// fica alinhada ao mundo, não ao modelo.
func lockedUV(dir util.Directions, corners [4]mgl32.Vec3) [4]float32 {
	lo := corners[0]
	hi := corners[0]
	for _, c := range corners[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], c[i])
			hi[i] = max(hi[i], c[i])
		}
	}
	toModel := func(v mgl32.Vec3) [3]float32 {
		return [3]float32{(v[0] + 0.5) * 16, (v[1] + 0.5) * 16, (v[2] + 0.5) * 16}
	}
	return defaultUV(dir, toModel(lo), toModel(hi))
}

// buildGeometry gera a geometria do modelo, separada por textura. Quando bake não é
// identidade (variant com uvlock), a rotação é aplicada nos vértices e os UVs são
// recalculados no espaço do mundo.
func buildGeometry(model *assets.Model, bake mgl32.Mat4, uvlock bool, tint [4]uint8, textures map[string]*Texture) map[string]GeometryData {
	buffers := make(map[string]*MeshBuffer)
	getBuffer := func(name string) *MeshBuffer {
		if b, ok := buffers[name]; ok {
			return b
		}
		b := GetMeshBuffer()
		buffers[name] = b
		return b
	}

	for _, el := range model.Elements {
		lo := mgl32.Vec3{el.From[0]/16 - 0.5, el.From[1]/16 - 0.5, el.From[2]/16 - 0.5}
		hi := mgl32.Vec3{el.To[0]/16 - 0.5, el.To[1]/16 - 0.5, el.To[2]/16 - 0.5}
		xf := bake.Mul4(elementTransform(el.Rotation))

		for _, dir := range util.Faces {
			face, ok := el.Faces[dir.String()]
			if !ok {
				continue
			}
			texName := model.ResolveTexture(face.Texture)
			if texName == "" {
				continue
			}
			texName = assets.NormalizeResource(texName)

			local := faceCorners(dir, lo, hi)
			var corners [4]mgl32.Vec3
			for i, c := range local {
				corners[i] = mgl32.TransformCoordinate(c, xf)
			}
			fn := faceNormals[dir]
			normal := mgl32.TransformNormal(mgl32.Vec3{fn[0], fn[1], fn[2]}, xf).Normalize()

			var uv [4]float32
			rotation := face.Rotation
			switch {
			case uvlock:
				uv = lockedUV(dominantDirection(normal), corners)
				rotation = 0
			case face.UV != nil:
				uv = *face.UV
			default:
				uv = defaultUV(dir, el.From, el.To)
			}
			uvs := cornerUVs(uv, rotation, textures[texName].FrameScale())

			color := white
			if face.TintIndex != nil {
				color = tint
			}
			n := [3]float32{normal.X(), normal.Y(), normal.Z()}
			getBuffer(texName).AddFaceUV(
				corners[0], corners[1], corners[2], corners[3],
				uvs[0], uvs[1], uvs[2], uvs[3],
				n, color,
			)
		}
	}

	out := make(map[string]GeometryData, len(buffers))
	for name, b := range buffers {
		out[name] = b.Geometry.Clone()
		PutMeshBuffer(b)
	}
	return out
}

// textureNames lista as texturas concretas usadas pelas faces do modelo.
func textureNames(model *assets.Model) []string {
	seen := make(map[string]bool)
	var names []string
	for _, el := range model.Elements {
		for _, face := range el.Faces {
			name := model.ResolveTexture(face.Texture)
			if name == "" {
				continue
			}
			name = assets.NormalizeResource(name)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
