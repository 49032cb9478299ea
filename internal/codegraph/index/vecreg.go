//go:build sqlite_vec && cgo

package index

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Registers sqlite-vec as an auto-loadable extension for the
	// mattn/go-sqlite3 driver; every *sql.DB opened after this point gets
	// vec0 virtual tables and the vec_distance_* functions for free.
	vec.Auto()
}

const vectorTableAvailable = true
