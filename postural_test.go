package postural

import (
	"errors"
	"math"
	"testing"

	"github.com/PartlowA/postural-index/mesh"
)

func grid(rows, cols int, depth float64) [][]float64 {
	data := make([][]float64, rows)
	for r := range data {
		data[r] = make([]float64, cols)
		for c := range data[r] {
			data[r][c] = depth
		}
	}
	return data
}

func TestNewMergesTrimmedBaseAndBack(t *testing.T) {
	c := DefaultConstants()
	base := grid(6, 5, 0.02)
	back := grid(6, 5, 0.01)

	// Upright back with a 15 cm pointer: the trim line sits at y = 0.15,
	// keeping the four base rows below it.
	m, err := New("sitting-a", base, back, 15, 90, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := len(m.Base.V); got != 20 {
		t.Errorf("trimmed base has %v vertices, want 20", got)
	}
	if got := len(m.Base.T); got != 24 {
		t.Errorf("trimmed base has %v triangles, want 24", got)
	}
	for _, v := range m.Base.V {
		if v.Y() >= 0.15 {
			t.Errorf("base vertex at y = %v survived a 0.15 trim line", v.Y())
		}
	}

	if got := len(m.Back.V); got != 30 {
		t.Errorf("back has %v vertices, want 30", got)
	}

	if got := len(m.Mesh.V); got != 50 {
		t.Errorf("merged mesh has %v vertices, want 50", got)
	}
	if got := len(m.Mesh.T); got != 64 {
		t.Errorf("merged mesh has %v triangles, want 64", got)
	}
	if len(m.Mesh.N) != len(m.Mesh.T) {
		t.Errorf("merged mesh has %v normals for %v triangles", len(m.Mesh.N), len(m.Mesh.T))
	}
	for _, tri := range m.Mesh.T {
		for _, idx := range tri {
			if idx < 0 || idx >= len(m.Mesh.V) {
				t.Fatalf("merged triangle references vertex %v of %v", idx, len(m.Mesh.V))
			}
		}
	}

	if m.Pointer != 0.15 {
		t.Errorf("pointer converted to %v m, want 0.15", m.Pointer)
	}
}

func TestNewUprightBackStandsVertical(t *testing.T) {
	c := DefaultConstants()
	m, err := New("upright", grid(4, 4, 0), grid(4, 4, 0), 20, 90, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// At 90 degrees a flat back cushion lies in a plane of constant y.
	y0 := m.Back.V[0].Y()
	for i, v := range m.Back.V {
		if math.Abs(v.Y()-y0) > 1e-9 {
			t.Errorf("back vertex %v at y = %v, want %v", i, v.Y(), y0)
		}
	}
	if math.Abs(y0-0.20) > 1e-9 {
		t.Errorf("back plane at y = %v, want 0.20", y0)
	}
}

func TestNewRecline(t *testing.T) {
	c := DefaultConstants()
	m, err := New("reclined", grid(4, 4, 0), grid(4, 4, 0), 20, 110, c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Reclining tips the top of the back away from the seat: vertices
	// higher along z also sit farther along y.
	lo, hi := m.Back.V[0], m.Back.V[0]
	for _, v := range m.Back.V {
		if v.Z() < lo.Z() {
			lo = v
		}
		if v.Z() > hi.Z() {
			hi = v
		}
	}
	if hi.Y() <= lo.Y() {
		t.Errorf("top of back at y = %v not behind bottom at y = %v", hi.Y(), lo.Y())
	}
}

func TestNewRejectsOverTravel(t *testing.T) {
	c := DefaultConstants()
	bad := grid(4, 4, 0.02)
	bad[2][1] = c.MaxPinTravel + 0.01

	if _, err := New("bad", bad, grid(4, 4, 0), 15, 90, c); err == nil {
		t.Errorf("over-traveled pin accepted, want error")
	}
	if _, err := New("bad", grid(4, 4, 0), bad, 15, 90, c); err == nil {
		t.Errorf("over-traveled back pin accepted, want error")
	}
}

func TestNewRejectsDegenerateGrid(t *testing.T) {
	c := DefaultConstants()
	if _, err := New("thin", grid(1, 5, 0), grid(4, 4, 0), 15, 90, c); !errors.Is(err, mesh.TopologyErr) {
		t.Errorf("err = %v, want TopologyErr", err)
	}
}

func TestNewRejectsFullTrim(t *testing.T) {
	c := DefaultConstants()
	// A pointer at the very front of the seat leaves no base cushion.
	if _, err := New("gone", grid(4, 4, 0), grid(4, 4, 0), 0, 90, c); !errors.Is(err, mesh.DegenerateTrimErr) {
		t.Errorf("err = %v, want DegenerateTrimErr", err)
	}
}
