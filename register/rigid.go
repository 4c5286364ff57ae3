package register

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rigid re-estimates a rotation, isotropic scale and translation each
// iteration.  The rotation comes from an SVD of the weighted cross
// covariance with a determinant correction that excludes reflections; the
// moved points are s*Y*R^T + t.
func rigid(x, y *mat.Dense, cfg config, report tick) (*mat.Dense, error) {
	_, d := x.Dims()

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

		var svd mat.SVD
		if ok := svd.Factorize(a, mat.SVDFull); !ok {
			return nil, fmt.Errorf("rigid update: svd did not converge")
		}
		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)

		// Flip the smallest singular direction when U V^T reflects.
		uvt := &mat.Dense{}
		uvt.Mul(&u, v.T())
		cdiag := eye(d)
		cdiag.Set(d-1, d-1, mat.Det(uvt))

		uc := &mat.Dense{}
		uc.Mul(&u, cdiag)
		rot := &mat.Dense{}
		rot.Mul(uc, v.T())

		ypy := weightedSq(co.p1, yhat)
		art := &mat.Dense{}
		art.Mul(a.T(), rot)
		trAR := mat.Trace(art)

		s := trAR / ypy

		t := make([]float64, d)
		for l := 0; l < d; l++ {
			t[l] = muX[l]
			for k := 0; k < d; k++ {
				t[l] -= s * muY[k] * rot.At(l, k)
			}
		}

		ty.Mul(y, rot.T())
		ty.Scale(s, ty)
		addRow(ty, t)

		xPx := weightedSq(co.pt1, xhat)

		qprev := q
		q = (xPx-2*s*trAR+s*s*ypy)/(2*sigma2) + float64(d)*co.np/2*math.Log(sigma2)
		diff = math.Abs(q - qprev)

		sigma2 = (xPx - s*trAR) / (co.np * float64(d))
		if sigma2 <= 0 {
			sigma2 = cfg.tol / 10
		}

		if !report(iter+1, q, sigma2, ty) {
			break
		}
	}
	return ty, nil
}
