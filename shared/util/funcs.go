package util

import "github.com/go-gl/mathgl/mgl32"

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Clamp limita v ao intervalo [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DistSq retorna a distância quadrada entre dois vetores 3D.
func DistSq(v1, v2 mgl32.Vec3) float32 {
	d := v1.Sub(v2)
	return d.Dot(d)
}

// MaxDim retorna a maior dimensão da grade.
func (s Size) MaxDim() int {
	return max(s.Width, s.Height, s.Length)
}
