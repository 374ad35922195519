// Package columnar counts records with an embedded columnar query engine.
//
// # Overview
//
// The streaming reader in pkg/csvio touches every byte on one core. For
// large uncompressed files a vectorized engine reading the file in
// parallel is much faster, so the count engine hands such files to an
// Aggregator first and only falls back to streaming when the aggregator
// produces nothing usable.
//
// The package provides:
//   - Aggregator: the capability interface used by pkg/count
//   - DuckDB: the embedded DuckDB implementation (cgo builds only)
//   - Optimizations: engine optimizer switches applied per query
//   - Materialize: copies standard input to a temporary file the
//     engine can read
//
// # Outcomes
//
// Count distinguishes two kinds of non-error results:
//
//	outcome, err := agg.Count(ctx, plan)
//	switch {
//	case err != nil:
//		// hard failure, do not retry
//	case outcome.Kind == columnar.EmptyResult:
//		// nothing usable, stream the file instead
//	default:
//		fmt.Println(outcome.Count)
//	}
//
// # Availability
//
// Builds without cgo, or on platforms the DuckDB bindings do not support,
// link a stub whose Available method returns false. Callers check it
// before building a plan.
package columnar
