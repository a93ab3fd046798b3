// Package main provides the CLI entry point for l1configgen, a tool that
// compiles a YAML configuration schema into typed C source and header
// files.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.l1config.dev/compiler/gen"
	"go.l1config.dev/compiler/internal/cliconfig"
	applog "go.l1config.dev/compiler/log"
	"go.l1config.dev/compiler/profiler"
	"go.l1config.dev/compiler/schema"
	"go.l1config.dev/compiler/version"
)

func main() {
	cfg := cliconfig.NewConfig()
	prof := profiler.New()

	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "l1configgen [flags] INPUT_FILE OUTPUT_DIR",
		Short: "Compile a YAML configuration schema into C",
		Long: `l1configgen reads a YAML schema describing a hierarchical firmware
configuration tree, validates it, and emits typed C source and header
files: enums and structs, a flat table of leaf keys, and the getter and
checker functions declared for each leaf.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}

			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("l1configgen %s (%s, %s/%s, built by %s on %s)\n",
					version.Version, version.Revision, version.GoOS, version.GoArch, version.BuildUser, version.BuildDate)

				return nil
			}

			return run(cfg, &prof, args[0], args[1])
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())
	prof.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *cliconfig.Config, prof *profiler.Profiler, inputPath, outDir string) error {
	if err := prof.Start(); err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}

	defer func() {
		if stopErr := prof.Stop(); stopErr != nil {
			fmt.Fprintf(os.Stderr, "stopping profiler: %v\n", stopErr)
		}
	}()

	publisher := applog.NewPublisher()
	defer func() { _ = publisher.Close() }()

	handler, err := applog.CreateHandlerWithStrings(io.MultiWriter(os.Stderr, publisher), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	logger := slog.New(handler)

	errCount := make(chan int, 1)
	sub := publisher.Subscribe()

	go countErrorLines(sub, errCount)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		logger.Error("reading input file", "path", inputPath, "error", err)

		return &schema.IoError{Msg: "reading " + inputPath, Err: err}
	}

	model, err := schema.Load(data, cfg.Defines)
	if err != nil {
		logSchemaError(logger, err)

		return err
	}

	logger.Info("schema loaded", "root", model.Root, "keys", model.GetNbKeys(model.Root))

	if err := gen.Emit(model, outDir); err != nil {
		logger.Error("generating output", "error", err)

		return fmt.Errorf("generating output: %w", err)
	}

	logger.Info("generation complete", "output", outDir)

	_ = publisher.Close()

	if n := <-errCount; n > 0 {
		fmt.Fprintf(os.Stderr, "%d error-level log entries emitted during this run\n", n)
	}

	return nil
}

// logSchemaError classifies a schema error into its concrete type so the
// log entry names which validation phase failed, per spec.md §7's three
// error kinds.
func logSchemaError(logger *slog.Logger, err error) {
	var (
		schemaErr *schema.SchemaError
		rangeErr  *schema.RangeError
		ioErr     *schema.IoError
	)

	switch {
	case errors.As(err, &ioErr):
		logger.Error("io error", "error", err)
	case errors.As(err, &rangeErr):
		logger.Error("range error", "error", err)
	case errors.As(err, &schemaErr):
		logger.Error("schema error", "error", err)
	default:
		logger.Error("unexpected error", "error", err)
	}
}

// countErrorLines drains sub until its channel closes, counting entries
// that look like an error-level log line in either supported format, and
// sends the final count on done.
func countErrorLines(sub *applog.Subscription, done chan<- int) {
	count := 0

	for entry := range sub.C() {
		if bytes.Contains(entry, []byte(`"level":"ERROR"`)) || bytes.Contains(entry, []byte("level=ERROR")) {
			count++
		}
	}

	done <- count
}
