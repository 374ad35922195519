package config

import (
	"fmt"
	"runtime"
)

// Profile is the settings document of the csvcount CLI. Flags and
// environment variables override what a profile file sets.
type Profile struct {
	// Source settings apply to every input counted with this profile
	Source SourceSettings `yaml:"source" json:"source" mapstructure:"source"`

	// Engine settings control strategy selection and the columnar engine
	Engine EngineSettings `yaml:"engine" json:"engine" mapstructure:"engine"`

	// Observability settings for logs, metrics and traces
	Observability ObservabilitySettings `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// SourceSettings holds the dialect of the data
type SourceSettings struct {
	// Delimiter is a single character or "tab"; empty sniffs it from the file extension
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// NoHeaders counts the first row as data
	NoHeaders bool `yaml:"no_headers" json:"no_headers" mapstructure:"no_headers"`
	// Flexible tolerates differing field counts
	Flexible bool `yaml:"flexible" json:"flexible" mapstructure:"flexible"`
	// Comment is a single character prefix of lines to skip
	Comment string `yaml:"comment" json:"comment" mapstructure:"comment"`
}

// EngineSettings holds counting strategy options
type EngineSettings struct {
	// NoAccelerated always uses the streaming reader when no index exists
	NoAccelerated bool `yaml:"no_accelerated" json:"no_accelerated" mapstructure:"no_accelerated"`
	// LowMemory trades columnar engine speed for a lower memory ceiling
	LowMemory bool `yaml:"low_memory" json:"low_memory" mapstructure:"low_memory"`
	// TempDir receives materialized standard input; empty uses os.TempDir
	TempDir string `yaml:"temp_dir" json:"temp_dir" mapstructure:"temp_dir"`
	// Threads caps columnar engine parallelism; 0 uses every CPU
	Threads int `yaml:"threads" json:"threads" mapstructure:"threads"`
}

// ObservabilitySettings holds logging, metrics and tracing options
type ObservabilitySettings struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogFormat is console or json
	LogFormat string `yaml:"log_format" json:"log_format" mapstructure:"log_format"`
	// MetricsFile receives Prometheus text metrics after each run
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// Trace exports spans to stderr
	Trace bool `yaml:"trace" json:"trace" mapstructure:"trace"`
}

// NewProfile returns a profile with defaults
func NewProfile() *Profile {
	return &Profile{
		Engine: EngineSettings{
			Threads: runtime.NumCPU(),
		},
		Observability: ObservabilitySettings{
			LogLevel:  "warn",
			LogFormat: "console",
		},
	}
}

// Validate checks the profile for correctness
func (p *Profile) Validate() error {
	if p.Source.Delimiter != "" {
		if _, err := ParseDelimiter(p.Source.Delimiter); err != nil {
			return err
		}
	}
	if p.Source.Comment != "" {
		if _, err := ParseDelimiter(p.Source.Comment); err != nil {
			return fmt.Errorf("comment: %w", err)
		}
	}
	if p.Engine.Threads < 0 {
		return fmt.Errorf("threads cannot be negative")
	}
	switch p.Observability.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", p.Observability.LogFormat)
	}
	return nil
}

// SourceOptions converts the source settings into SourceConfig options
func (p *Profile) SourceOptions() ([]Option, error) {
	opts := []Option{
		WithNoHeaders(p.Source.NoHeaders),
		WithFlexible(p.Source.Flexible),
	}
	if p.Source.Delimiter != "" {
		d, err := ParseDelimiter(p.Source.Delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDelimiter(d))
	}
	if p.Source.Comment != "" {
		c, err := ParseDelimiter(p.Source.Comment)
		if err != nil {
			return nil, fmt.Errorf("comment: %w", err)
		}
		opts = append(opts, WithComment(c))
	}
	return opts, nil
}

// ParseDelimiter accepts a single ASCII character, an escaped tab (`\t`)
// or the word "tab".
func ParseDelimiter(s string) (byte, error) {
	switch s {
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	if len(s) != 1 || s[0] >= 0x80 {
		return 0, fmt.Errorf("delimiter must be a single ASCII character, got %q", s)
	}
	return s[0], nil
}
