// Package postural turns height-field scans of seat cushions into placed,
// watertight triangle meshes.  A measurement pairs a base cushion scan with
// a back cushion scan: the base lies flat in the ground plane, the back is
// swung about the seat hinge to its recline angle, the strip of base hidden
// behind the back is trimmed away, and the two surfaces merge into one mesh.
//
// Downstream packages build on the meshes this package produces: register
// aligns meshes from different sittings, pop averages and ranks populations
// of aligned meshes, and bench fabricates synthetic scans for tests and
// demos.
package postural

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/PartlowA/postural-index/mesh"
	"github.com/PartlowA/postural-index/transform"
)

// Constants describes the scanning hardware.  All lengths are in meters.
type Constants struct {
	// PinPitch is the spacing between adjacent pins, identical along both
	// grid axes.
	PinPitch float64
	// MaxPinTravel is the farthest any pin can be displaced.
	MaxPinTravel float64
	// BaseToBackGap is the clearance between the trimmed base cushion and
	// the foot of the back cushion.
	BaseToBackGap float64
	// Pivot locates the hinge the back cushion swings about.
	Pivot transform.Pivot
}

// DefaultConstants returns the geometry of the production scanner.
func DefaultConstants() Constants {
	return Constants{
		PinPitch:      0.04445,
		MaxPinTravel:  0.1016,
		BaseToBackGap: 0.02,
		Pivot:         transform.Pivot{Depth: 0.215, Height: 0.02},
	}
}

// Measurement is one complete sitting: both placed cushion surfaces and
// their merged union.
type Measurement struct {
	Name string
	// Pointer is the back cushion's pointer offset in meters.
	Pointer float64
	// Angle is the recline angle in degrees; 90 is bolt upright.
	Angle float64
	// Base is the base cushion after trimming away the strip hidden behind
	// the back.
	Base mesh.Mesh
	// Back is the back cushion placed at its recline.
	Back mesh.Mesh
	// Mesh is Base and Back merged into a single surface.
	Mesh mesh.Mesh
}

// New builds a measurement from raw pin displacement grids, one sample per
// pin in meters.  pointer is the scanner's pointer reading in centimeters
// and angle the recline angle in degrees.  Pin travel beyond
// c.MaxPinTravel is reported as an error, as it indicates a misread scan.
func New(name string, base, back [][]float64, pointer, angle float64, c Constants) (*Measurement, error) {
	if err := checkTravel("base", base, c.MaxPinTravel); err != nil {
		return nil, err
	}
	if err := checkTravel("back", back, c.MaxPinTravel); err != nil {
		return nil, err
	}

	pointerM := pointer / 100

	baseMesh, err := build(base, c.PinPitch, nil)
	if err != nil {
		return nil, fmt.Errorf("postural: base cushion: %w", err)
	}
	backModel := transform.BackPlacement(angle, pointerM, c.Pivot, c.BaseToBackGap)
	backMesh, err := build(back, c.PinPitch, backModel)
	if err != nil {
		return nil, fmt.Errorf("postural: back cushion: %w", err)
	}

	cutoff := mesh.Cutoff(angle, pointerM, c.Pivot.Height)
	trimmed, err := mesh.Trim(baseMesh, cutoff)
	if err != nil {
		return nil, fmt.Errorf("postural: trimming base cushion: %w", err)
	}

	return &Measurement{
		Name:    name,
		Pointer: pointerM,
		Angle:   angle,
		Base:    trimmed,
		Back:    backMesh,
		Mesh:    mesh.Merge(trimmed, backMesh),
	}, nil
}

func build(data [][]float64, pitch float64, model *mat.Dense) (mesh.Mesh, error) {
	f := mesh.Field{Data: data, RowRes: pitch, ColRes: pitch}
	tris, err := mesh.Triangles(f.Dims())
	if err != nil {
		return mesh.Mesh{}, err
	}
	m := mesh.Mesh{V: mesh.Vertices(f, model), T: tris}
	m.N = mesh.Normals(m.V, m.T)
	return m, nil
}

func checkTravel(which string, data [][]float64, max float64) error {
	for r, row := range data {
		for c, d := range row {
			if d < 0 || d > max {
				return fmt.Errorf("postural: %v cushion pin (%v,%v) displaced %v m, want 0 to %v",
					which, r, c, d, max)
			}
		}
	}
	return nil
}
