package util

import "fmt"

// Pos representa uma coordenada inteira dentro da grade da estrutura.
// X = largura, Y = altura, Z = comprimento
type Pos struct {
	X, Y, Z int
}

// NewPos cria uma nova coordenada.
func NewPos(x, y, z int) Pos {
	return Pos{X: x, Y: y, Z: z}
}

// Add soma duas coordenadas.
func (p Pos) Add(other Pos) Pos {
	return Pos{
		X: p.X + other.X,
		Y: p.Y + other.Y,
		Z: p.Z + other.Z,
	}
}

// Sub subtrai duas coordenadas.
func (p Pos) Sub(other Pos) Pos {
	return Pos{
		X: p.X - other.X,
		Y: p.Y - other.Y,
		Z: p.Z - other.Z,
	}
}

// String retorna a representação em string da coordenada.
func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Size guarda as dimensões de uma grade (largura, altura, comprimento).
type Size struct {
	Width, Height, Length int
}

// Contains verifica se a coordenada está dentro dos limites da grade.
func (s Size) Contains(p Pos) bool {
	return p.X >= 0 && p.X < s.Width &&
		p.Y >= 0 && p.Y < s.Height &&
		p.Z >= 0 && p.Z < s.Length
}

// Volume retorna o número total de voxels da grade.
func (s Size) Volume() int {
	return s.Width * s.Height * s.Length
}

// Index lineariza uma coordenada (x varia mais rápido, depois z, depois y).
func (s Size) Index(p Pos) int {
	return p.X + p.Z*s.Width + p.Y*s.Width*s.Length
}

// Center retorna o deslocamento que centraliza a grade na origem do mundo.
// Para cada eixo: -(dimensão)/2 + 0.5
func (s Size) Center() [3]float32 {
	return [3]float32{
		-float32(s.Width)/2 + 0.5,
		-float32(s.Height)/2 + 0.5,
		-float32(s.Length)/2 + 0.5,
	}
}

// Directions representa as seis faces de um voxel.
type Directions uint8

const (
	DirUp Directions = iota
	DirDown
	DirNorth
	DirSouth
	DirEast
	DirWest
)

// Faces lista as seis direções na ordem de avaliação do culling.
var Faces = [6]Directions{DirUp, DirDown, DirNorth, DirSouth, DirEast, DirWest}

// DirOffsets mapeia direções para offsets de coordenada.
// Norte = -Z, Sul = +Z, Leste = +X, Oeste = -X (convenção dos resource packs)
var DirOffsets = [6]Pos{
	DirUp:    {X: 0, Y: 1, Z: 0},
	DirDown:  {X: 0, Y: -1, Z: 0},
	DirNorth: {X: 0, Y: 0, Z: -1},
	DirSouth: {X: 0, Y: 0, Z: 1},
	DirEast:  {X: 1, Y: 0, Z: 0},
	DirWest:  {X: -1, Y: 0, Z: 0},
}

var dirNames = [6]string{"up", "down", "north", "south", "east", "west"}

// String retorna o nome da face como usado nos arquivos de modelo.
func (d Directions) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return "none"
}

// ParseDirection converte o nome de uma face ("north", "up", ...) na direção.
func ParseDirection(name string) (Directions, bool) {
	for i, n := range dirNames {
		if n == name {
			return Directions(i), true
		}
	}
	return 0, false
}

// AddDir retorna uma nova coordenada deslocada na direção especificada.
func (p Pos) AddDir(dir Directions) Pos {
	return p.Add(DirOffsets[dir])
}
