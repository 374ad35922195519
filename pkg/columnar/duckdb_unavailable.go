//go:build !cgo || !((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package columnar

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/csvcount/pkg/errors"
)

var _ Aggregator = (*DuckDB)(nil)

// DuckDB is a stub in builds without the DuckDB bindings
type DuckDB struct{}

// NewDuckDB returns the stub aggregator
func NewDuckDB(*zap.Logger) *DuckDB {
	return &DuckDB{}
}

// Available is always false in this build
func (d *DuckDB) Available() bool { return false }

// Count always fails; callers check Available first
func (d *DuckDB) Count(context.Context, Plan) (Outcome, error) {
	return Outcome{}, errors.New(errors.ErrorTypeAcceleratedPlan, "duckdb is not linked into this build")
}
