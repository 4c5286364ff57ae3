// Package register aligns scanned cushion point sets to a common reference.
//
// Alignment uses a Gaussian mixture correspondence model solved by iterative
// re-estimation: each iteration softly matches every moving point against
// every target point, then re-estimates the motion in closed form (rigid and
// affine modes) or through a kernel-regularized displacement field (soft
// mode).  Iteration stops when the objective settles below a tolerance or an
// iteration cap is reached; hitting the cap is a normal termination with the
// best estimate found, not an error.
package register

import (
	"database/sql"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Method selects the motion model fitted during registration.
type Method string

const (
	// Rigid fits rotation, isotropic scale and translation.
	Rigid Method = "rigid"
	// Affine fits a general linear map (rotation, scale and shear) plus
	// translation.
	Affine Method = "affine"
	// Soft fits a smooth non-rigid displacement field.
	Soft Method = "soft"
)

var EmptyInputErr = errors.New("register: empty point set")
var UnknownMethodErr = errors.New("register: unknown registration method")

// Observer is invoked once per iteration with the iteration count, the
// current value of the convergence objective and the moved source points.
// Returning false stops the registration before the next iteration; the
// estimate computed so far is returned.  Observers must not retain moved
// past the call.
type Observer func(iter int, objective float64, moved *mat.Dense) bool

// Option adjusts the registration configuration.
type Option func(*config)

// MaxIter caps the number of re-estimation iterations.
func MaxIter(n int) Option { return func(c *config) { c.maxIter = n } }

// Tol sets the convergence tolerance on the objective change.
func Tol(tol float64) Option { return func(c *config) { c.tol = tol } }

// Outliers sets the uniform outlier weight of the mixture, in [0, 1).
func Outliers(w float64) Option { return func(c *config) { c.w = w } }

// Alpha sets the soft mode trade-off between data fit and smoothness of the
// displacement field.
func Alpha(a float64) Option { return func(c *config) { c.alpha = a } }

// Beta sets the width of the soft mode smoothing kernel.
func Beta(b float64) Option { return func(c *config) { c.beta = b } }

// Observe installs a per-iteration observer.
func Observe(fn Observer) Option { return func(c *config) { c.obs = fn } }

// Record logs one row per iteration into the TblIters table of db, creating
// the table when absent.
func Record(db *sql.DB) Option { return func(c *config) { c.db = db } }

type config struct {
	maxIter int
	tol     float64
	w       float64
	alpha   float64
	beta    float64
	obs     Observer
	db      *sql.DB
}

func defaults() config {
	return config{
		maxIter: 1000,
		tol:     1e-3,
		alpha:   0.005,
		beta:    2,
	}
}

// tick reports one completed iteration to the recorder and observer and
// returns whether iteration should continue.
type tick func(iter int, objective, sigma2 float64, moved *mat.Dense) bool

// Register aligns every point set after the first onto sets[0], which is
// never moved.  Point sets are n-by-d matrices, one point per row, all with
// the same dimensionality but not necessarily the same cardinality.  The
// result holds the target unchanged in element 0 and the moved points of
// every other set in its original position.
func Register(sets []*mat.Dense, method Method, opts ...Option) ([]*mat.Dense, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(sets) == 0 {
		return nil, EmptyInputErr
	}
	d := 0
	for i, s := range sets {
		if s == nil {
			return nil, EmptyInputErr
		}
		n, sd := s.Dims()
		if n == 0 {
			return nil, EmptyInputErr
		}
		if i == 0 {
			d = sd
		} else if sd != d {
			return nil, fmt.Errorf("register: set %v has %v dims, want %v", i, sd, d)
		}
	}
	switch method {
	case Rigid, Affine, Soft:
	default:
		return nil, UnknownMethodErr
	}

	rec, err := newRecorder(cfg.db, string(method))
	if err != nil {
		return nil, err
	}

	out := make([]*mat.Dense, len(sets))
	out[0] = sets[0]
	for i := 1; i < len(sets); i++ {
		pair := i
		report := func(iter int, objective, sigma2 float64, moved *mat.Dense) bool {
			rec.add(pair, iter, objective, sigma2)
			if cfg.obs != nil {
				return cfg.obs(iter, objective, moved)
			}
			return true
		}

		var moved *mat.Dense
		var err error
		switch method {
		case Rigid:
			moved, err = rigid(sets[0], sets[i], cfg, report)
		case Affine:
			moved, err = affine(sets[0], sets[i], cfg, report)
		case Soft:
			moved, err = soft(sets[0], sets[i], cfg, report)
		}
		if err != nil {
			return nil, fmt.Errorf("register: set %v: %v", i, err)
		}
		out[i] = moved
	}
	return out, nil
}
