package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/csvcount/pkg/columnar"
	"github.com/ajitpratap0/csvcount/pkg/config"
	"github.com/ajitpratap0/csvcount/pkg/count"
	"github.com/ajitpratap0/csvcount/pkg/logger"
	"github.com/ajitpratap0/csvcount/pkg/metrics"
	"github.com/ajitpratap0/csvcount/pkg/observability"
)

const envPrefix = "CSVCOUNT"

// outputFlags only affect how a result is printed
type outputFlags struct {
	width bool
	human bool
	json  bool
}

// profileFlags maps profile keys to the flags overriding them
var profileFlags = map[string]string{
	"source.delimiter":           "delimiter",
	"source.no_headers":          "no-headers",
	"source.flexible":            "flexible",
	"source.comment":             "comment",
	"engine.no_accelerated":      "no-accelerated",
	"engine.low_memory":          "low-memory",
	"engine.temp_dir":            "temp-dir",
	"engine.threads":             "threads",
	"observability.log_level":    "log-level",
	"observability.log_format":   "log-format",
	"observability.metrics_file": "metrics-file",
	"observability.trace":        "trace",
}

func newRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string
	var out outputFlags

	root := &cobra.Command{
		Use:   "csvcount [input]",
		Short: "Count the records of a CSV file",
		Long: `csvcount prints the number of records in a CSV file or standard input.

It uses an index file (<input>.idx) when a fresh one exists, an embedded
columnar engine for large uncompressed files, and a streaming reader
otherwise. The header row is not counted unless --no-headers is given.

Example:
  csvcount data.csv
  csvcount --width -H data.tsv
  zcat data.csv.gz | csvcount`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := resolveProfile(v, configFile)
			if err != nil {
				return err
			}
			return runCount(cmd.Context(), profile, inputArg(args), out, stdin, stdout)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML profile")
	pf.StringP("delimiter", "d", "", `Field delimiter; a single character or "tab" (default: sniffed from the file extension)`)
	pf.BoolP("no-headers", "n", false, "Count the first row as a record")
	pf.BoolP("flexible", "f", false, "Allow records with differing field counts")
	pf.String("comment", "", "Skip lines starting with this character")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console, json)")
	pf.String("metrics-file", "", "Write Prometheus text metrics to this file after the run")
	pf.Bool("trace", false, "Print trace spans to stderr")

	f := root.Flags()
	f.BoolVar(&out.width, "width", false, "Also print the width of the widest record (count;width)")
	f.BoolVarP(&out.human, "human-readable", "H", false, "Group digits, e.g. 1,234,567")
	f.BoolVar(&out.json, "json", false, "Print the result as JSON")
	f.Bool("no-accelerated", false, "Never use the columnar engine")
	f.Bool("low-memory", false, "Limit columnar engine threads and memory")
	f.String("temp-dir", "", "Directory for materialized standard input")
	f.Int("threads", runtime.NumCPU(), "Columnar engine threads")

	root.AddCommand(newIndexCommand(v, &configFile, stdout))
	root.AddCommand(newVersionCommand(stdout))

	bindFlags(v, root.Flags(), root.PersistentFlags())
	return root
}

func newIndexCommand(v *viper.Viper, configFile *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "index <input>",
		Short: "Write an index next to a CSV file",
		Long: `Scans the input once and writes <input>.idx holding the offset of every
record. Later counts of an unchanged file read the total from the index.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := resolveProfile(v, *configFile)
			if err != nil {
				return err
			}
			return runIndex(cmd.Context(), profile, args[0], stdout)
		},
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "csvcount v%s\n", version)
			fmt.Fprintf(stdout, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(stdout, "Columnar engine: %t\n", columnar.NewDuckDB(nil).Available())
		},
	}
}

// bindFlags wires every profile key to its flag and CSVCOUNT_* variable
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, name := range profileFlags {
		for _, set := range sets {
			if fl := set.Lookup(name); fl != nil {
				_ = v.BindPFlag(key, fl)
				break
			}
		}
	}
}

// resolveProfile layers flags over environment over the profile file over
// defaults
func resolveProfile(v *viper.Viper, configFile string) (*config.Profile, error) {
	profile := config.NewProfile()
	if configFile != "" {
		if err := config.Load(configFile, profile); err != nil {
			return nil, err
		}
	}

	v.SetDefault("source.delimiter", profile.Source.Delimiter)
	v.SetDefault("source.no_headers", profile.Source.NoHeaders)
	v.SetDefault("source.flexible", profile.Source.Flexible)
	v.SetDefault("source.comment", profile.Source.Comment)
	v.SetDefault("engine.no_accelerated", profile.Engine.NoAccelerated)
	v.SetDefault("engine.low_memory", profile.Engine.LowMemory)
	v.SetDefault("engine.temp_dir", profile.Engine.TempDir)
	v.SetDefault("engine.threads", profile.Engine.Threads)
	v.SetDefault("observability.log_level", profile.Observability.LogLevel)
	v.SetDefault("observability.log_format", profile.Observability.LogFormat)
	v.SetDefault("observability.metrics_file", profile.Observability.MetricsFile)
	v.SetDefault("observability.trace", profile.Observability.Trace)

	if err := v.Unmarshal(profile); err != nil {
		return nil, fmt.Errorf("failed to resolve settings: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return profile, nil
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// session holds what every subcommand sets up before working
type session struct {
	ctx    context.Context
	log    *zap.Logger
	finish func()
}

func startSession(ctx context.Context, profile *config.Profile) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	obs := profile.Observability

	if err := logger.Init(logger.Config{
		Level:       obs.LogLevel,
		Encoding:    obs.LogFormat,
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return nil, err
	}

	ctx = logger.ContextWithInvocation(ctx, uuid.NewString())
	log := logger.FromContext(ctx, logger.Get())

	shutdown := func(context.Context) error { return nil }
	if obs.Trace {
		var err error
		shutdown, err = observability.InitTracing(observability.DefaultTracingConfig(version))
		if err != nil {
			return nil, err
		}
	}

	finish := func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
		if obs.MetricsFile != "" {
			if err := metrics.WriteTextfile(obs.MetricsFile); err != nil {
				log.Warn("failed to write metrics", zap.String("path", obs.MetricsFile), zap.Error(err))
			}
		}
		_ = logger.Sync()
	}
	return &session{ctx: ctx, log: log, finish: finish}, nil
}

func newSource(profile *config.Profile, input string, stdin io.Reader) (config.SourceConfig, error) {
	opts, err := profile.SourceOptions()
	if err != nil {
		return config.SourceConfig{}, err
	}
	opts = append(opts, config.WithStdin(stdin))
	return config.NewSourceConfig(input, opts...)
}

func runCount(ctx context.Context, profile *config.Profile, input string, out outputFlags, stdin io.Reader, stdout io.Writer) error {
	s, err := startSession(ctx, profile)
	if err != nil {
		return err
	}
	defer s.finish()

	src, err := newSource(profile, input, stdin)
	if err != nil {
		return err
	}

	engine := count.NewEngine(
		count.WithLogger(logger.Get()),
		count.WithTempDir(profile.Engine.TempDir),
		count.WithThreads(profile.Engine.Threads),
	)
	res, err := engine.Compute(s.ctx, src, count.Request{
		Width:              out.width,
		DisableAccelerated: profile.Engine.NoAccelerated,
		LowMemory:          profile.Engine.LowMemory,
	})
	if err != nil {
		s.log.Debug("count failed", zap.String("source", src.Name()), zap.Error(err))
		return err
	}

	return writeResult(stdout, res, out)
}

func runIndex(ctx context.Context, profile *config.Profile, input string, stdout io.Writer) error {
	s, err := startSession(ctx, profile)
	if err != nil {
		return err
	}
	defer s.finish()

	src, err := newSource(profile, input, nil)
	if err != nil {
		return err
	}

	_, span := observability.StartSpan(s.ctx, "count.build_index")
	n, err := src.BuildIndex()
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}

	s.log.Info("index written", zap.String("source", src.Name()), zap.Uint64("records", n))
	_, err = fmt.Fprintf(stdout, "indexed %d records\n", n)
	return err
}
