//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package columnar

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/ajitpratap0/csvcount/pkg/errors"
)

var _ Aggregator = (*DuckDB)(nil)

// DuckDB counts records with an in-memory DuckDB database. Each Count
// opens its own database, so a DuckDB value is safe for concurrent use.
type DuckDB struct {
	logger *zap.Logger
}

// NewDuckDB creates the DuckDB aggregator; a nil logger discards logs
func NewDuckDB(logger *zap.Logger) *DuckDB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDB{logger: logger}
}

// Available is always true in builds that link DuckDB
func (d *DuckDB) Available() bool { return true }

// Count runs plan against an in-memory database
func (d *DuckDB) Count(ctx context.Context, plan Plan) (Outcome, error) {
	info, err := os.Stat(plan.Path)
	if os.IsNotExist(err) {
		return Outcome{}, errors.Newf(errors.ErrorTypeSourceNotFound, "%s does not exist", plan.Path).
			WithDetail("path", plan.Path)
	}
	if err != nil {
		return Outcome{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat source").
			WithDetail("path", plan.Path)
	}
	// read_csv fails on an empty file instead of returning zero rows
	if info.Size() == 0 {
		return EmptyOutcome(ReasonEmptyFile), nil
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "unable to open duckdb")
	}
	defer db.Close()

	// Settings are per connection, so everything runs on one
	conn, err := db.Conn(ctx)
	if err != nil {
		return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "unable to connect to duckdb")
	}
	defer conn.Close()

	var limit uint64
	if plan.LowMemory {
		limit = memoryLimit()
	}
	for _, stmt := range plan.Statements(limit) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "failed to apply setting").
				WithDetail("statement", stmt)
		}
	}

	columns, err := columnCount(ctx, conn, plan)
	if err != nil {
		return Outcome{}, err
	}
	if columns == 1 {
		d.logger.Debug("single column file, leaving it to the streaming reader")
		return EmptyOutcome(ReasonSingleColumn), nil
	}

	query := plan.Query()
	d.logger.Debug("running accelerated count", zap.String("query", query))

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "accelerated query failed").
			WithDetail("path", plan.Path)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "accelerated query failed").
				WithDetail("path", plan.Path)
		}
		return EmptyOutcome(ReasonNoRows), nil
	}

	var v any
	if err := rows.Scan(&v); err != nil {
		return Outcome{}, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "failed to read aggregate")
	}
	n, ok := extractCount(v)
	if !ok {
		d.logger.Debug("aggregate is not an integer", zap.Any("value", v))
		return EmptyOutcome(ReasonNonInteger), nil
	}
	return CountedOutcome(n), rows.Err()
}

// columnCount returns how many columns the engine reads from the file
func columnCount(ctx context.Context, conn *sql.Conn, plan Plan) (int, error) {
	rows, err := conn.QueryContext(ctx, plan.ColumnsQuery())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "failed to read columns").
			WithDetail("path", plan.Path)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeAcceleratedPlan, "failed to read columns").
			WithDetail("path", plan.Path)
	}
	return len(cols), nil
}
