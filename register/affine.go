package register

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// affine re-estimates a linear map B and translation t in closed form each
// iteration; the moved points are Y*B + t.  Convergence is judged on the
// change of the mixture objective.
func affine(x, y *mat.Dense, cfg config, report tick) (*mat.Dense, error) {
	_, d := x.Dims()
	m, _ := y.Dims()

	sigma2 := initSigma2(x, y)
	ty := mat.DenseCopyOf(y)
	q := math.Inf(1)
	diff := math.Inf(1)

	for iter := 0; iter < cfg.maxIter && diff > cfg.tol; iter++ {
		co := estep(x, ty, sigma2, cfg.w)
		muX, muY := moments(co, x, y)
		xhat := centered(x, muX)
		yhat := centered(y, muY)

		a := crossCov(co, muX, yhat)

		// YPY = Yhat^T diag(P1) Yhat.
		wyhat := mat.NewDense(m, d, nil)
		for i := 0; i < m; i++ {
			for l := 0; l < d; l++ {
				wyhat.Set(i, l, co.p1[i]*yhat.At(i, l))
			}
		}
		ypy := &mat.Dense{}
		ypy.Mul(yhat.T(), wyhat)

		var b mat.Dense
		if err := b.Solve(ypy, a.T()); err != nil {
			return nil, fmt.Errorf("affine update is singular: %v", err)
		}

		t := make([]float64, d)
		for l := 0; l < d; l++ {
			t[l] = muX[l]
			for k := 0; k < d; k++ {
				t[l] -= muY[k] * b.At(k, l)
			}
		}

		ty.Mul(y, &b)
		addRow(ty, t)

		xPx := weightedSq(co.pt1, xhat)
		ab := &mat.Dense{}
		ab.Mul(a, &b)
		trAB := mat.Trace(ab)
		byp := &mat.Dense{}
		byp.Mul(&b, ypy)
		byb := &mat.Dense{}
		byb.Mul(byp, &b)
		trBYB := mat.Trace(byb)

		qprev := q
		q = (xPx-2*trAB+trBYB)/(2*sigma2) + float64(d)*co.np/2*math.Log(sigma2)
		diff = math.Abs(q - qprev)

		sigma2 = (xPx - trAB) / (co.np * float64(d))
		if sigma2 <= 0 {
			sigma2 = cfg.tol / 10
		}

		if !report(iter+1, q, sigma2, ty) {
			break
		}
	}
	return ty, nil
}
