package register

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// machEps floors the mixture denominator so far-apart point sets cannot
// underflow every correspondence to zero.
const machEps = 2.220446049250313e-16

// corr holds the sufficient statistics of one expectation step: pt1[j] is
// the total match probability of target point j, p1[i] the total match
// probability of moving point i, px the probability weighted sums of target
// coordinates per moving point, and np the total soft match mass.
type corr struct {
	pt1 []float64
	p1  []float64
	px  *mat.Dense
	np  float64
}

// estep softly matches the moved points ty against the fixed target x under
// an isotropic Gaussian mixture with variance sigma2 and uniform outlier
// weight w.
func estep(x, ty *mat.Dense, sigma2, w float64) corr {
	n, d := x.Dims()
	m, _ := ty.Dims()

	c := math.Pow(2*math.Pi*sigma2, float64(d)/2) * w / (1 - w) * float64(m) / float64(n)

	k := make([]float64, m)
	pt1 := make([]float64, n)
	p1 := make([]float64, m)
	px := mat.NewDense(m, d, nil)
	for j := 0; j < n; j++ {
		den := c
		for i := 0; i < m; i++ {
			dist := 0.0
			for l := 0; l < d; l++ {
				diff := x.At(j, l) - ty.At(i, l)
				dist += diff * diff
			}
			k[i] = math.Exp(-dist / (2 * sigma2))
			den += k[i]
		}
		if den < machEps {
			den = machEps
		}
		pt1[j] = 1 - c/den
		for i := 0; i < m; i++ {
			p := k[i] / den
			if p == 0 {
				continue
			}
			p1[i] += p
			for l := 0; l < d; l++ {
				px.Set(i, l, px.At(i, l)+p*x.At(j, l))
			}
		}
	}
	return corr{pt1: pt1, p1: p1, px: px, np: floats.Sum(p1)}
}

// initSigma2 seeds the mixture variance with the mean squared distance over
// every target/moving point pair.
func initSigma2(x, y *mat.Dense) float64 {
	n, d := x.Dims()
	m, _ := y.Dims()
	sum := 0.0
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			for l := 0; l < d; l++ {
				diff := x.At(j, l) - y.At(i, l)
				sum += diff * diff
			}
		}
	}
	return sum / float64(d*m*n)
}

// moments returns the probability weighted centroids of the target and
// moving point sets.
func moments(co corr, x, y *mat.Dense) (muX, muY []float64) {
	_, d := x.Dims()
	m, _ := y.Dims()
	muX = make([]float64, d)
	muY = make([]float64, d)
	for l := 0; l < d; l++ {
		for i := 0; i < m; i++ {
			muX[l] += co.px.At(i, l)
			muY[l] += co.p1[i] * y.At(i, l)
		}
		muX[l] /= co.np
		muY[l] /= co.np
	}
	return muX, muY
}

// centered returns a copy of pts with mu subtracted from every row.
func centered(pts *mat.Dense, mu []float64) *mat.Dense {
	n, d := pts.Dims()
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for l := 0; l < d; l++ {
			out.Set(i, l, pts.At(i, l)-mu[l])
		}
	}
	return out
}

// crossCov computes the weighted cross covariance between the centered
// target and the centered moving points, folding the centering of the
// target side into the already accumulated px sums.
func crossCov(co corr, muX []float64, yhat *mat.Dense) *mat.Dense {
	m, d := yhat.Dims()
	pxhat := mat.NewDense(m, d, nil)
	for i := 0; i < m; i++ {
		for l := 0; l < d; l++ {
			pxhat.Set(i, l, co.px.At(i, l)-co.p1[i]*muX[l])
		}
	}
	a := &mat.Dense{}
	a.Mul(pxhat.T(), yhat)
	return a
}

// weightedSq returns sum_i w[i]*|row_i|^2 over the rows of pts.
func weightedSq(w []float64, pts *mat.Dense) float64 {
	n, d := pts.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		rowsq := 0.0
		for l := 0; l < d; l++ {
			rowsq += pts.At(i, l) * pts.At(i, l)
		}
		sum += w[i] * rowsq
	}
	return sum
}

// addRow adds the vector t to every row of pts in place.
func addRow(pts *mat.Dense, t []float64) {
	n, d := pts.Dims()
	for i := 0; i < n; i++ {
		for l := 0; l < d; l++ {
			pts.Set(i, l, pts.At(i, l)+t[l])
		}
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
