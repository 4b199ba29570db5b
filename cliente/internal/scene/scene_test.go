package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"StructureVision/cliente/internal/meshing"
	"StructureVision/shared/util"
)

func newFragment() *meshing.Fragment {
	return &meshing.Fragment{Local: mgl32.Ident4()}
}

func TestHeadlessSceneAddRemove(t *testing.T) {
	s := NewHeadlessScene(800, 600)
	a, b := newFragment(), newFragment()

	if !s.Add(a) || !s.Add(b) {
		t.Fatalf("Add deveria aceitar fragmentos novos")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Remove(a) {
		t.Errorf("Remove(a) = false, want true")
	}
	if s.Remove(a) {
		t.Errorf("Remove duplicado deveria retornar false")
	}
	if s.Contains(a) || !s.Contains(b) {
		t.Errorf("conteúdo inesperado após Remove")
	}

	d := newFragment()
	d.Dispose()
	if s.Add(d) {
		t.Errorf("fragmento descartado não deveria entrar na cena")
	}
}

func TestHeadlessSceneDisposeIsTerminal(t *testing.T) {
	s := NewHeadlessScene(800, 600)
	f := newFragment()
	s.Add(f)
	if !s.Render() {
		t.Fatalf("Render antes do Dispose deveria contar um frame")
	}

	s.Dispose()
	s.Dispose()

	if !s.Disposed() {
		t.Fatalf("Disposed() = false")
	}
	if s.Len() != 0 {
		t.Errorf("Len() após Dispose = %d, want 0", s.Len())
	}
	if s.Add(newFragment()) || s.Remove(f) || s.Render() {
		t.Errorf("operações após Dispose deveriam ser no-ops")
	}
	if s.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", s.Frames())
	}

	s.Resize(10, 10)
	if w, h := s.Bounds(); w != 800 || h != 600 {
		t.Errorf("Resize após Dispose alterou o tamanho para %dx%d", w, h)
	}
}

func TestHeadlessSceneResize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1024, 768, 1024, 768},
		{0, 100, 800, 600},
		{-5, -5, 800, 600},
	}
	for _, tt := range tests {
		s := NewHeadlessScene(800, 600)
		s.Resize(tt.w, tt.h)
		if w, h := s.Bounds(); w != tt.wantW || h != tt.wantH {
			t.Errorf("Resize(%d, %d) -> %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestDecorationsResize(t *testing.T) {
	tests := []struct {
		size       util.Size
		wantY      float32
		wantExtent int
	}{
		{util.Size{Width: 2, Height: 1, Length: 1}, -0.5, 4},
		{util.Size{Width: 4, Height: 10, Length: 8}, -5, 10},
		{util.Size{}, 0, 2},
	}
	for _, tt := range tests {
		d := NewDecorations()
		d.Resize(tt.size)
		g := d.Grid()
		if g.Y != tt.wantY || g.Extent != tt.wantExtent || g.Height != tt.size.Height {
			t.Errorf("Resize(%+v) -> %+v, want Y=%v Extent=%d Height=%d",
				tt.size, g, tt.wantY, tt.wantExtent, tt.size.Height)
		}
		if o := d.Orientation(); o.Position.Z() >= 0 {
			t.Errorf("marcador deveria ficar ao norte (-Z), got %v", o.Position)
		}
	}
}

func TestOrbitFitAndPosition(t *testing.T) {
	o := NewOrbit()
	o.Fit(util.Size{Width: 10, Height: 4, Length: 6})

	if o.TargetZoom != 17 {
		t.Errorf("TargetZoom = %v, want 17", o.TargetZoom)
	}
	pos := o.Position()
	if d := pos.Len(); math.Abs(float64(d-17)) > 1e-3 {
		t.Errorf("distância ao alvo = %v, want 17", d)
	}
	if pos.Y() <= 0 {
		t.Errorf("câmera deveria olhar de cima, Y = %v", pos.Y())
	}
}

func TestOrbitAutoOrbit(t *testing.T) {
	o := NewOrbit()
	start := o.TargetAngleY

	o.Update(1)
	if o.TargetAngleY != start {
		t.Errorf("sem auto-órbita o ângulo não deveria mudar")
	}

	o.SetAutoOrbit(true, 90)
	o.Update(1)
	want := start + math.Pi/2
	if math.Abs(float64(o.TargetAngleY-want)) > 1e-5 {
		t.Errorf("TargetAngleY = %v, want %v", o.TargetAngleY, want)
	}
	if math.Abs(float64(o.CurrentAngleY-o.TargetAngleY)) > 1e-5 {
		t.Errorf("dt=1 deveria alcançar o alvo (factor saturado)")
	}
}

func TestOrbitClamps(t *testing.T) {
	o := NewOrbit()
	o.Rotate(0, -10)
	if o.TargetAngleX < minElevation-1e-6 {
		t.Errorf("elevação abaixo do limite: %v", o.TargetAngleX)
	}
	o.Rotate(0, 10)
	if o.TargetAngleX > maxElevation+1e-6 {
		t.Errorf("elevação acima do limite: %v", o.TargetAngleX)
	}
	o.Zoom(-1000)
	if o.TargetZoom != o.MinZoom {
		t.Errorf("TargetZoom = %v, want %v", o.TargetZoom, o.MinZoom)
	}
}

func TestOrbitPanSmoothing(t *testing.T) {
	o := NewOrbit()
	o.Pan(mgl32.Vec3{4, 0, 0})

	// Meio passo a 60 FPS: factor 0.1
	o.Update(1.0 / 60)
	if x := o.LookAt().X(); math.Abs(float64(x-0.4)) > 1e-4 {
		t.Errorf("LookAt.X após um frame = %v, want 0.4", x)
	}

	o.Update(1)
	if got := o.LookAt(); !got.ApproxEqualThreshold(mgl32.Vec3{4, 0, 0}, 1e-5) {
		t.Errorf("LookAt = %v, want [4 0 0]", got)
	}
	if d := o.Position().Sub(o.LookAt()).Len(); math.Abs(float64(d-o.Distance())) > 1e-3 {
		t.Errorf("distância câmera-alvo = %v, want %v", d, o.Distance())
	}
}
