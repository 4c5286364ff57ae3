package bench_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/PartlowA/postural-index/bench"
	"github.com/PartlowA/postural-index/mesh"
)

const seed = 7

func TestFieldDims(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		f := bench.Field(fn, 12, 9, 0.04445)
		rows, cols := f.Dims()
		if rows != 12 || cols != 9 {
			t.Errorf("%v: field is %vx%v, want 12x9", fn.Name(), rows, cols)
		}
		for r, row := range f.Data {
			if len(row) != cols {
				t.Errorf("%v: row %v has %v samples, want %v", fn.Name(), r, len(row), cols)
			}
		}
	}
}

func TestBowlDeepestAtCenter(t *testing.T) {
	fn := bench.Bowl{Depth: 0.08, Width: 0.2}
	f := bench.Field(fn, 11, 11, 1)
	center := f.Data[5][5]
	if math.Abs(center-0.08) > 1e-12 {
		t.Errorf("center sample = %v, want 0.08", center)
	}
	for r, row := range f.Data {
		for c, d := range row {
			if d > center+1e-12 {
				t.Errorf("sample (%v,%v) = %v exceeds center depth %v", r, c, d, center)
			}
		}
	}
}

func TestSaddleCorners(t *testing.T) {
	fn := bench.Saddle{Depth: 0.05}
	f := bench.Field(fn, 5, 5, 1)
	if math.Abs(f.Data[0][0]-0.05) > 1e-12 || math.Abs(f.Data[4][4]-0.05) > 1e-12 {
		t.Errorf("matching corners = %v, %v, want 0.05", f.Data[0][0], f.Data[4][4])
	}
	if math.Abs(f.Data[0][4]) > 1e-12 || math.Abs(f.Data[4][0]) > 1e-12 {
		t.Errorf("opposite corners = %v, %v, want 0", f.Data[0][4], f.Data[4][0])
	}
}

func TestNoisy(t *testing.T) {
	rng := rand.New(rand.NewSource(seed))
	f := bench.Field(bench.Slab{Depth: 0.03}, 8, 8, 1)
	n := bench.Noisy(f, 0.005, rng)

	changed := 0
	for r, row := range n.Data {
		for c, d := range row {
			if d < 0 {
				t.Errorf("sample (%v,%v) = %v, want >= 0", r, c, d)
			}
			if d != f.Data[r][c] {
				changed++
			}
		}
	}
	if changed == 0 {
		t.Errorf("no samples perturbed")
	}
	if f.Data[0][0] != 0.03 {
		t.Errorf("source field mutated: sample (0,0) = %v, want 0.03", f.Data[0][0])
	}
}

func TestFieldMeshes(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		f := bench.Field(fn, 6, 6, 0.04445)
		tris, err := mesh.Triangles(f.Dims())
		if err != nil {
			t.Fatalf("%v: %v", fn.Name(), err)
		}
		v := mesh.Vertices(f, nil)
		if len(v) != 36 || len(tris) != 50 {
			t.Errorf("%v: got %v vertices and %v triangles, want 36 and 50",
				fn.Name(), len(v), len(tris))
		}
	}
}
