// Package pop computes statistics over populations of aligned cushion
// meshes: a mean shape with per-vertex deviation magnitudes, and a ranking
// of population members by how far they sit from the mean.
package pop

import (
	"errors"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/petar/GoLLRB/llrb"

	"github.com/PartlowA/postural-index/mesh"
)

var EmptyPopErr = errors.New("pop: no meshes in population")

// Shape is a mean mesh together with the displacement magnitude each vertex
// moved from the reference member during averaging.  Magnitude is indexed
// like Shape.V.
type Shape struct {
	mesh.Mesh
	Magnitude []float64
}

// Average computes the mean shape of a population of aligned meshes.  The
// first mesh supplies the topology: every one of its vertices moves by the
// mean of its displacements to the nearest vertex in each of the other
// meshes, so the members need not share vertex counts.  A population of one
// returns the member unchanged with zero magnitudes.
func Average(meshes []mesh.Mesh) (Shape, error) {
	if len(meshes) == 0 {
		return Shape{}, EmptyPopErr
	}

	ref := meshes[0]
	verts := make([]mgl64.Vec3, len(ref.V))
	mags := make([]float64, len(ref.V))

	nworkers := runtime.GOMAXPROCS(0)
	if nworkers > len(ref.V) {
		nworkers = len(ref.V)
	}
	if nworkers < 1 {
		nworkers = 1
	}

	var wg sync.WaitGroup
	chunk := (len(ref.V) + nworkers - 1) / nworkers
	for w := 0; w < nworkers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(ref.V) {
			hi = len(ref.V)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				v := ref.V[i]
				if len(meshes) == 1 {
					verts[i] = v
					continue
				}
				var disp mgl64.Vec3
				for _, m := range meshes[1:] {
					disp = disp.Add(m.V[mesh.Nearest(v, m.V)].Sub(v))
				}
				disp = disp.Mul(1 / float64(len(meshes)-1))
				verts[i] = v.Add(disp)
				mags[i] = disp.Len()
			}
		}(lo, hi)
	}
	wg.Wait()

	mean := mesh.Mesh{V: verts, T: ref.T}
	mean.N = mesh.Normals(mean.V, mean.T)
	return Shape{Mesh: mean, Magnitude: mags}, nil
}

// Ranked pairs a population index with its deviation from the mean shape.
type Ranked struct {
	Index     int
	Deviation float64
}

type ranked Ranked

func (r1 ranked) Less(than llrb.Item) bool {
	r2 := than.(ranked)
	if r1.Deviation == r2.Deviation {
		return r1.Index > r2.Index
	}
	return r1.Deviation < r2.Deviation
}

// Rank orders the population members by mean distance between the mean
// shape's vertices and their nearest neighbors in each member, most deviant
// first.
func Rank(mean Shape, meshes []mesh.Mesh) []Ranked {
	tree := llrb.New()
	for idx, m := range meshes {
		dev := 0.0
		for _, v := range mean.V {
			dev += v.Sub(m.V[mesh.Nearest(v, m.V)]).Len()
		}
		if len(mean.V) > 0 {
			dev /= float64(len(mean.V))
		}
		tree.InsertNoReplace(ranked{Index: idx, Deviation: dev})
	}

	out := make([]Ranked, 0, tree.Len())
	for tree.Len() > 0 {
		out = append(out, Ranked(tree.DeleteMax().(ranked)))
	}
	return out
}
