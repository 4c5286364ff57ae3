// Package transform composes the 4x4 homogeneous placements that position a
// measured cushion surface in the shared seat coordinate frame.
//
// Matrices use the row-vector convention: a point transforms as v' = v*M and
// the translation component occupies the bottom row.  Chaining RotateX and
// Translate calls therefore applies the operations in call order, which is
// how BackPlacement is written.
package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pivot holds the offsets from the measured pin to the backrest rotation
// axis along the depth (Y) and vertical (Z) axes, in metres.
type Pivot struct {
	Depth  float64
	Height float64
}

// Identity returns a 4x4 identity placement.  It is the model matrix of the
// base cushion, which is measured in the frame it is displayed in.
func Identity() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// RotateX right-multiplies m by a rotation of angle degrees about the X
// axis.  The sign convention matches the measurement rig: a positive angle
// tips the depth axis down toward negative Z.
func RotateX(m *mat.Dense, angle float64) *mat.Dense {
	th := angle * math.Pi / 180
	r := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, math.Cos(th), -math.Sin(th), 0,
		0, math.Sin(th), math.Cos(th), 0,
		0, 0, 0, 1,
	})
	out := &mat.Dense{}
	out.Mul(m, r)
	return out
}

// Translate right-multiplies m by a translation of (x, y, z) metres.
func Translate(m *mat.Dense, x, y, z float64) *mat.Dense {
	t := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	})
	out := &mat.Dense{}
	out.Mul(m, t)
	return out
}

// BackPlacement builds the model matrix for the back cushion from the
// recline angle (degrees) and the pointer offset along the depth axis
// (metres).  The composition order is fixed: the panel is stood up into its
// rest pose, reclined about the physical rotation axis, slid to the recorded
// pointer position, and lifted by the base-to-back gap.  Reordering any of
// these steps changes the resulting placement.
func BackPlacement(reclineAngle, pointerOffset float64, pivot Pivot, gap float64) *mat.Dense {
	m := Identity()

	// Stand the back panel up into its rest pose.
	m = RotateX(m, -90)

	// Recline about the rotation axis, which sits behind and above the
	// measured pin.
	m = Translate(m, 0, -pivot.Depth, -pivot.Height)
	m = RotateX(m, reclineAngle-90)
	m = Translate(m, 0, pivot.Depth, pivot.Height)

	// Slide to the recorded pointer position.
	m = Translate(m, 0, pointerOffset, 0)

	// Open the gap between the base and back cushions.
	m = Translate(m, 0, 0, gap)

	return m
}

// Apply carries every row of the n-by-3 point matrix pts through m in
// homogeneous coordinates and drops the w column.
func Apply(m, pts *mat.Dense) *mat.Dense {
	n, _ := pts.Dims()
	h := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		h.Set(i, 0, pts.At(i, 0))
		h.Set(i, 1, pts.At(i, 1))
		h.Set(i, 2, pts.At(i, 2))
		h.Set(i, 3, 1)
	}
	placed := &mat.Dense{}
	placed.Mul(h, m)

	out := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, placed.At(i, 0))
		out.Set(i, 1, placed.At(i, 1))
		out.Set(i, 2, placed.At(i, 2))
	}
	return out
}
