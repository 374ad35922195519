// Package csvcount counts the records of CSV files as fast as the input
// allows.
//
// A count is answered by exactly one of three strategies:
//
//  1. Index: a fresh <input>.idx file written by `csvcount index` already
//     holds the total, so the data file is never opened.
//  2. Accelerated: an embedded DuckDB engine aggregates an uncompressed
//     file in parallel. Standard input is copied to a temporary file first.
//  3. Stream: a single-pass reader walks every record. It is the only
//     strategy that can measure record width or tolerate ragged rows.
//
// # Packages
//
//   - pkg/count: strategy selection and the streaming scanner
//   - pkg/columnar: the DuckDB aggregator and standard input materializer
//   - pkg/index: reading and writing index files
//   - pkg/csvio: quoted and raw record readers
//   - pkg/config: source descriptions and CLI profiles
//   - pkg/compression: transparent decompression of .gz, .zst, .lz4, .sz, .s2
//   - pkg/mmap: read-only memory mapped files
//   - pkg/errors, pkg/logger, pkg/metrics, pkg/observability: error
//     taxonomy, zap logging, Prometheus metrics and OpenTelemetry tracing
//
// # Usage
//
//	csvcount data.csv             # 1000000
//	csvcount -H data.csv          # 1,000,000
//	csvcount --width data.csv     # 1000000;87
//	cat data.csv | csvcount       # reads standard input
//	csvcount index data.csv       # writes data.csv.idx
package csvcount
