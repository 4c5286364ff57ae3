// Package bench provides synthetic pin displacement fields shaped like the
// profiles a seat cushion scanner produces.  They stand in for hardware
// captures in tests and demos: sample one with Field, perturb copies with
// Noisy, and feed the results through the meshing and averaging pipeline.
package bench

import (
	"math"
	"math/rand"

	"github.com/PartlowA/postural-index/mesh"
)

var exp = math.Exp

var AllFuncs = []Func{
	Slab{Depth: 0.03},
	Bowl{Depth: 0.08, Width: 0.2},
	Ridge{Depth: 0.06, Width: 0.15},
	Saddle{Depth: 0.05},
}

// Func is a synthetic displacement profile over the unit square.  Eval
// returns the pin displacement in meters at the normalized grid coordinates
// u, v in [0, 1].
type Func interface {
	Eval(u, v float64) float64
	Name() string
}

// Slab displaces every pin by the same depth.
type Slab struct {
	Depth float64
}

func (fn Slab) Name() string { return "Slab" }

func (fn Slab) Eval(u, v float64) float64 { return fn.Depth }

// Bowl is a Gaussian indentation centered on the grid, the signature a
// symmetric sitter leaves.
type Bowl struct {
	Depth float64
	Width float64
}

func (fn Bowl) Name() string { return "Bowl" }

func (fn Bowl) Eval(u, v float64) float64 {
	du, dv := u-0.5, v-0.5
	return fn.Depth * exp(-(du*du+dv*dv)/(2*fn.Width*fn.Width))
}

// Ridge is a Gaussian trough running the full length of the grid.
type Ridge struct {
	Depth float64
	Width float64
}

func (fn Ridge) Name() string { return "Ridge" }

func (fn Ridge) Eval(u, v float64) float64 {
	du := u - 0.5
	return fn.Depth * exp(-du*du/(2*fn.Width*fn.Width))
}

// Saddle is deepest in two diagonally opposite corners, a deliberately
// asymmetric profile for exercising trim and ranking behavior.
type Saddle struct {
	Depth float64
}

func (fn Saddle) Name() string { return "Saddle" }

func (fn Saddle) Eval(u, v float64) float64 {
	return fn.Depth / 2 * (1 + (2*u-1)*(2*v-1))
}

// Field samples fn on a rows-by-cols lattice with the given pin pitch.
func Field(fn Func, rows, cols int, res float64) mesh.Field {
	data := make([][]float64, rows)
	for r := range data {
		data[r] = make([]float64, cols)
		for c := range data[r] {
			u := 0.0
			if cols > 1 {
				u = float64(c) / float64(cols-1)
			}
			v := 0.0
			if rows > 1 {
				v = float64(r) / float64(rows-1)
			}
			data[r][c] = fn.Eval(u, v)
		}
	}
	return mesh.Field{Data: data, RowRes: res, ColRes: res}
}

// Noisy returns a copy of f with zero mean Gaussian noise of the given
// standard deviation added to every sample, clamped at zero so no pin sits
// above its rest position.
func Noisy(f mesh.Field, sd float64, rng *rand.Rand) mesh.Field {
	data := make([][]float64, len(f.Data))
	for r := range data {
		data[r] = make([]float64, len(f.Data[r]))
		for c := range data[r] {
			d := f.Data[r][c] + rng.NormFloat64()*sd
			if d < 0 {
				d = 0
			}
			data[r][c] = d
		}
	}
	return mesh.Field{Data: data, RowRes: f.RowRes, ColRes: f.ColRes}
}
