// Package config resolves where records come from and how they are split.
//
// Two types live here:
//
//   - SourceConfig: an immutable description of one data source (file or
//     standard input), its dialect and its compression. It opens the byte
//     stream and probes the side index. Modifying methods return copies.
//   - Profile: the YAML/JSON settings document used by the CLI, holding
//     source defaults plus engine and observability options.
//
// # Usage
//
//	src, err := config.NewSourceConfig("data.tsv.sz", config.WithNoHeaders(true))
//	if err != nil {
//		return err
//	}
//	rc, err := src.Open() // snappy-decoded, tab delimited
//
// ## Loading a profile
//
//	profile := config.NewProfile()
//	if err := config.Load("csvcount.yaml", profile); err != nil {
//		return err
//	}
//
// Profiles support ${VAR_NAME} environment substitution:
//
//	source:
//	  delimiter: ${CSV_DELIMITER}
//	engine:
//	  temp_dir: ${TMPDIR}
package config
