// Package cliconfig holds the CLI flag configuration for the compiler,
// ported from the Config/Flags/RegisterFlags pattern the rest of this
// module's ambient stack uses.
package cliconfig

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names, letting callers rename them while keeping
// sensible defaults.
type Flags struct {
	Defines   string
	LogLevel  string
	LogFormat string
}

// Config holds CLI flag values for running the compiler.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags].
type Config struct {
	Flags     Flags
	Defines   []string
	LogLevel  string
	LogFormat string
}

// NewConfig returns a new [Config] with default flag names and values.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Defines:   "define",
			LogLevel:  "log-level",
			LogFormat: "log-format",
		},
		LogLevel:  "info",
		LogFormat: "logfmt",
	}
}

// RegisterFlags adds the compiler's flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&c.Defines, c.Flags.Defines, "D", nil,
		"override or add a define, NAME=VALUE (may be repeated)")
	flags.StringVar(&c.LogLevel, c.Flags.LogLevel, c.LogLevel,
		"log level (debug, info, warn, error)")
	flags.StringVar(&c.LogFormat, c.Flags.LogFormat, c.LogFormat,
		"log format (logfmt, json)")
}
