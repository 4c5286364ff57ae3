package register

import (
	"database/sql"
	"fmt"
)

// TblIters is the table the optional recorder writes one row per iteration
// into: the method, the index of the moving set, the iteration count, the
// convergence objective and the mixture variance.
const TblIters = "regiters"

type recorder struct {
	db     *sql.DB
	method string
}

// newRecorder returns a nil recorder when db is nil; add on a nil recorder
// is a no-op.
func newRecorder(db *sql.DB, method string) (*recorder, error) {
	if db == nil {
		return nil, nil
	}
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS " + TblIters +
		" (method TEXT,pair INTEGER,iter INTEGER,objective REAL,sigma2 REAL);")
	if err != nil {
		return nil, fmt.Errorf("register: creating %v table: %v", TblIters, err)
	}
	return &recorder{db: db, method: method}, nil
}

func (r *recorder) add(pair, iter int, objective, sigma2 float64) {
	if r == nil {
		return
	}
	_, err := r.db.Exec("INSERT INTO "+TblIters+" VALUES (?,?,?,?,?);",
		r.method, pair, iter, objective, sigma2)
	panicif(err)
}

func panicif(err error) {
	if err != nil {
		panic(err.Error())
	}
}
