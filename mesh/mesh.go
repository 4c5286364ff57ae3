// Package mesh converts gridded cushion scans into triangle meshes: vertex
// placement, structured-grid triangulation, pin trimming and mesh merging.
package mesh

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/PartlowA/postural-index/transform"
)

var TopologyErr = errors.New("mesh: both grid dimensions must be at least 2 to triangulate")
var DegenerateTrimErr = errors.New("mesh: trimming removed every vertex or triangle")

// Field is a rectangular grid of depth samples, in metres.  Data[row][col]
// is how far the pin at that grid position was pushed in; RowRes and ColRes
// give the physical pin spacing along each grid axis, metres per sample.
type Field struct {
	Data   [][]float64
	RowRes float64
	ColRes float64
}

// Dims returns the number of rows and columns in the field.
func (f Field) Dims() (rows, cols int) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	return len(f.Data), len(f.Data[0])
}

// Mesh is a triangle surface: vertex positions, triangles as index triples
// into V, and one unnormalized normal per triangle.
type Mesh struct {
	V []mgl64.Vec3
	T [][3]int
	N []mgl64.Vec3
}

// Index maps a grid position to its vertex number in the flattened vertex
// sequence.  Vertices are laid out row-major, cols vertices per row;
// Triangles assumes this ordering.
func Index(row, col, cols int) int { return row*cols + col }

// Vertices lays the field out on a regular lattice and carries every point
// through the model matrix; a nil model leaves the lattice in place.  Row
// zero of the grid is the row farthest along the depth axis, so Y counts
// down as the row index climbs; Z is the negated depth sample, putting
// deeper pin travel lower in the placed frame.
func Vertices(f Field, model *mat.Dense) []mgl64.Vec3 {
	rows, cols := f.Dims()
	if rows*cols == 0 {
		return nil
	}
	pts := mat.NewDense(rows*cols, 3, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := Index(r, c, cols)
			pts.Set(i, 0, float64(c)*f.ColRes)
			pts.Set(i, 1, float64(rows-1-r)*f.RowRes)
			pts.Set(i, 2, -f.Data[r][c])
		}
	}
	placed := pts
	if model != nil {
		placed = transform.Apply(model, pts)
	}

	v := make([]mgl64.Vec3, rows*cols)
	for i := range v {
		v[i] = mgl64.Vec3{placed.At(i, 0), placed.At(i, 1), placed.At(i, 2)}
	}
	return v
}

// Triangles builds connectivity for a rows-by-cols vertex grid: two
// triangles per grid cell, 2*(rows-1)*(cols-1) in total.  For the cell with
// corners v1 (top left), v2 (top right), v3 (bottom right) and v4 (bottom
// left) the triangles are (v1,v3,v2) and (v3,v1,v4), winding anti-clockwise
// seen from the outward normal side.
func Triangles(rows, cols int) ([][3]int, error) {
	if rows < 2 || cols < 2 {
		return nil, TopologyErr
	}

	nsq := (rows - 1) * (cols - 1)
	tris := make([][3]int, 0, 2*nsq)
	for idx := 0; idx < nsq; idx++ {
		v1 := idx + idx/(cols-1)
		v2 := v1 + 1
		v3 := v2 + cols
		v4 := v1 + cols
		tris = append(tris, [3]int{v1, v3, v2}, [3]int{v3, v1, v4})
	}
	return tris, nil
}

// Normals computes one normal per triangle as cross(v1-v3, v1-v2) from the
// current vertex positions.  The normals are not unit length; only the
// direction is meaningful and callers normalize when they need to.
func Normals(v []mgl64.Vec3, t [][3]int) []mgl64.Vec3 {
	n := make([]mgl64.Vec3, len(t))
	for i, tri := range t {
		v1, v2, v3 := v[tri[0]], v[tri[1]], v[tri[2]]
		n[i] = v1.Sub(v3).Cross(v1.Sub(v2))
	}
	return n
}

// Cutoff returns the depth coordinate of the plane where the reclined
// backrest meets the base: pins at or beyond it sit underneath the backrest
// and measure nothing.
func Cutoff(reclineAngle, pointerOffset, pivotHeight float64) float64 {
	th := (reclineAngle - 90) * math.Pi / 180
	return pointerOffset - pivotHeight*math.Tan(th)
}

// Trim drops every vertex whose depth coordinate is at or beyond cutoff,
// along with any triangle referencing one; there is no partial clipping.
// Surviving triangles are renumbered through an explicit old-to-new index
// map, so V and T stay densely packed from zero for any removal pattern,
// not just the contiguous trailing block the grid ordering happens to
// produce.  Normals are recomputed for the surviving triangles.
func Trim(m Mesh, cutoff float64) (Mesh, error) {
	remap := make([]int, len(m.V))
	kept := make([]mgl64.Vec3, 0, len(m.V))
	for i, v := range m.V {
		if v.Y() >= cutoff {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, v)
	}

	tris := make([][3]int, 0, len(m.T))
	for _, tri := range m.T {
		a, b, c := remap[tri[0]], remap[tri[1]], remap[tri[2]]
		if a < 0 || b < 0 || c < 0 {
			continue
		}
		tris = append(tris, [3]int{a, b, c})
	}
	if len(kept) == 0 || len(tris) == 0 {
		return Mesh{}, DegenerateTrimErr
	}

	return Mesh{V: kept, T: tris, N: Normals(kept, tris)}, nil
}

// Merge concatenates two placed meshes into one index space: b's vertices
// are appended after a's and b's triangle indices offset by len(a.V).
// Normals are recomputed over the merged mesh.
func Merge(a, b Mesh) Mesh {
	off := len(a.V)
	v := make([]mgl64.Vec3, 0, len(a.V)+len(b.V))
	v = append(append(v, a.V...), b.V...)

	t := make([][3]int, 0, len(a.T)+len(b.T))
	t = append(t, a.T...)
	for _, tri := range b.T {
		t = append(t, [3]int{tri[0] + off, tri[1] + off, tri[2] + off})
	}
	return Mesh{V: v, T: t, N: Normals(v, t)}
}

// Nearest returns the index of the vertex in pts closest to p by Euclidean
// distance.  The scan is brute force; cushion grids are small enough that a
// spatial index buys nothing.
func Nearest(p mgl64.Vec3, pts []mgl64.Vec3) int {
	best := 0
	bestd := math.Inf(1)
	for i, q := range pts {
		if d := q.Sub(p).LenSqr(); d < bestd {
			bestd = d
			best = i
		}
	}
	return best
}

// Points flattens the vertex sequence into an n-by-3 matrix for the
// registration routines.  A mesh with no vertices yields nil, which the
// registration routines reject as empty input.
func (m Mesh) Points() *mat.Dense {
	if len(m.V) == 0 {
		return nil
	}
	pts := mat.NewDense(len(m.V), 3, nil)
	for i, v := range m.V {
		pts.Set(i, 0, v.X())
		pts.Set(i, 1, v.Y())
		pts.Set(i, 2, v.Z())
	}
	return pts
}

// WithPoints pairs new vertex positions with m's unchanged triangle list and
// recomputes normals.  pts must have one row per vertex of m.
func (m Mesh) WithPoints(pts *mat.Dense) Mesh {
	n, _ := pts.Dims()
	v := make([]mgl64.Vec3, n)
	for i := range v {
		v[i] = mgl64.Vec3{pts.At(i, 0), pts.At(i, 1), pts.At(i, 2)}
	}
	t := make([][3]int, len(m.T))
	copy(t, m.T)
	return Mesh{V: v, T: t, N: Normals(v, t)}
}
