package transform

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const eps = 1e-12

func applyOne(t *testing.T, m *mat.Dense, x, y, z float64) (float64, float64, float64) {
	t.Helper()
	out := Apply(m, mat.NewDense(1, 3, []float64{x, y, z}))
	return out.At(0, 0), out.At(0, 1), out.At(0, 2)
}

func TestRotateXDirection(t *testing.T) {
	m := RotateX(Identity(), 90)
	x, y, z := applyOne(t, m, 0, 1, 0)
	if math.Abs(x) > eps || math.Abs(y) > eps || math.Abs(z+1) > eps {
		t.Errorf("rotating (0,1,0) by +90 about X: want (0,0,-1), got (%v,%v,%v)", x, y, z)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Identity(), 1, 2, 3)
	x, y, z := applyOne(t, m, 5, 6, 7)
	if x != 6 || y != 8 || z != 10 {
		t.Errorf("want (6,8,10), got (%v,%v,%v)", x, y, z)
	}
}

func TestBackPlacementNeutral(t *testing.T) {
	// At a 90 degree recline the pivot excursion cancels exactly and the
	// panel origin lands at the pointer position, lifted by the gap.
	pivot := Pivot{Depth: 0.215, Height: 0.02}
	pointer, gap := 0.31, 0.02

	m := BackPlacement(90, pointer, pivot, gap)
	x, y, z := applyOne(t, m, 0, 0, 0)
	if math.Abs(x) > eps || math.Abs(y-pointer) > eps || math.Abs(z-gap) > eps {
		t.Errorf("origin: want (0,%v,%v), got (%v,%v,%v)", pointer, gap, x, y, z)
	}

	// The rest pose stands the panel's depth axis up: a point one metre
	// along the panel surface ends up one metre above the seat plane.
	x, y, z = applyOne(t, m, 0, 1, 0)
	if math.Abs(x) > eps || math.Abs(y-pointer) > eps || math.Abs(z-(1+gap)) > eps {
		t.Errorf("(0,1,0): want (0,%v,%v), got (%v,%v,%v)", pointer, 1+gap, x, y, z)
	}
}

func TestBackPlacementReclined(t *testing.T) {
	pivot := Pivot{Depth: 0.215, Height: 0.02}
	pointer, gap := 0.31, 0.02
	angle := 100.0

	// Independent closed form for where the panel origin lands: the pivot
	// point stays fixed while the origin swings around it by (angle-90).
	th := (angle - 90) * math.Pi / 180
	s, c := math.Sin(th), math.Cos(th)
	wantY := pointer + pivot.Depth - (pivot.Depth*c + pivot.Height*s)
	wantZ := gap + pivot.Height + (pivot.Depth*s - pivot.Height*c)

	m := BackPlacement(angle, pointer, pivot, gap)
	x, y, z := applyOne(t, m, 0, 0, 0)
	if math.Abs(x) > eps || math.Abs(y-wantY) > eps || math.Abs(z-wantZ) > eps {
		t.Errorf("origin: want (0,%v,%v), got (%v,%v,%v)", wantY, wantZ, x, y, z)
	}
	t.Logf("[INFO] panel origin reclined to (%v, %v, %v)", x, y, z)
}

func TestBackPlacementOrder(t *testing.T) {
	// The documented composition order must match chaining the primitive
	// operations by hand.
	pivot := Pivot{Depth: 0.215, Height: 0.02}
	angle, pointer, gap := 104.0, 0.27, 0.02

	want := Identity()
	want = RotateX(want, -90)
	want = Translate(want, 0, -pivot.Depth, -pivot.Height)
	want = RotateX(want, angle-90)
	want = Translate(want, 0, pivot.Depth, pivot.Height)
	want = Translate(want, 0, pointer, 0)
	want = Translate(want, 0, 0, gap)

	got := BackPlacement(angle, pointer, pivot, gap)
	if !mat.EqualApprox(got, want, eps) {
		t.Errorf("placement differs from hand-chained composition:\ngot:\n%v\nwant:\n%v",
			mat.Formatted(got), mat.Formatted(want))
	}
}
