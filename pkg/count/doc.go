// Package count answers "how many records does this source hold".
//
// An Engine picks exactly one of three strategies per call:
//
//   - index: a fresh index file next to the source already knows the count
//   - accelerated: the columnar engine aggregates the file in parallel
//   - stream: the single-pass scanner reads every record
//
// Width requests and flexible dialects always stream, since only the
// scanner can measure records. An accelerated run that produces no usable
// count is redone by the scanner; any other accelerated failure is fatal.
//
// # Usage
//
//	src, err := config.NewSourceConfig("data.csv")
//	if err != nil {
//		return err
//	}
//	engine := count.NewEngine(count.WithLogger(logger.Get()))
//	res, err := engine.Compute(ctx, src, count.Request{})
//	fmt.Println(res.Count)
//
// Standard input is copied to a temporary file before the accelerated
// path runs; the file is removed before Compute returns.
package count
