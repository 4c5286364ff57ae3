package register

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// soft estimates a smooth displacement field over the moving points: the
// moved set is Y + G*W where G is a Gaussian kernel over the moving points
// and W solves a linear system trading data fit against coherence of the
// field.  Convergence is judged on the change of the mixture variance.
func soft(x, y *mat.Dense, cfg config, report tick) (*mat.Dense, error) {
	_, d := x.Dims()
	m, _ := y.Dims()

	g := gaussKernel(y, cfg.beta)
	sigma2 := initSigma2(x, y)
	ty := mat.DenseCopyOf(y)
	diff := math.Inf(1)

	for iter := 0; iter < cfg.maxIter && diff > cfg.tol; iter++ {
		co := estep(x, ty, sigma2, cfg.w)

		// (diag(P1) G + alpha sigma2 I) W = PX - diag(P1) Y
		lhs := mat.NewDense(m, m, nil)
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				lhs.Set(i, j, co.p1[i]*g.At(i, j))
			}
			lhs.Set(i, i, lhs.At(i, i)+cfg.alpha*sigma2)
		}
		rhs := mat.NewDense(m, d, nil)
		for i := 0; i < m; i++ {
			for l := 0; l < d; l++ {
				rhs.Set(i, l, co.px.At(i, l)-co.p1[i]*y.At(i, l))
			}
		}
		var w mat.Dense
		if err := w.Solve(lhs, rhs); err != nil {
			return nil, fmt.Errorf("displacement system is singular: %v", err)
		}

		gw := &mat.Dense{}
		gw.Mul(g, &w)
		ty.Add(y, gw)

		xPx := weightedSq(co.pt1, x)
		yPy := weightedSq(co.p1, ty)
		trPXY := 0.0
		for i := 0; i < m; i++ {
			for l := 0; l < d; l++ {
				trPXY += ty.At(i, l) * co.px.At(i, l)
			}
		}

		prev := sigma2
		sigma2 = (xPx - 2*trPXY + yPy) / (co.np * float64(d))
		if sigma2 <= 0 {
			sigma2 = cfg.tol / 10
		}
		diff = math.Abs(sigma2 - prev)

		if !report(iter+1, sigma2, sigma2, ty) {
			break
		}
	}
	return ty, nil
}

// gaussKernel builds the m-by-m smoothing kernel exp(-|yi-yj|^2/(2 beta^2)).
func gaussKernel(y *mat.Dense, beta float64) *mat.Dense {
	m, d := y.Dims()
	g := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		g.Set(i, i, 1)
		for j := i + 1; j < m; j++ {
			dist := 0.0
			for l := 0; l < d; l++ {
				diff := y.At(i, l) - y.At(j, l)
				dist += diff * diff
			}
			v := math.Exp(-dist / (2 * beta * beta))
			g.Set(i, j, v)
			g.Set(j, i, v)
		}
	}
	return g
}
