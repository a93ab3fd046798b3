// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports two output formats ([FormatJSON] and [FormatLogfmt]). Use
// [CreateHandler] to build a handler directly from a [slog.Level] and
// [Format], or [CreateHandlerWithStrings] to parse both from CLI input. Use
// [Config] for CLI flag integration via [github.com/spf13/pflag].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans out log output to multiple subscribers, which is
// useful for driving an end-of-run summary or a live diagnostics feed:
//
//	pub := log.NewPublisher()
//	handler := log.CreateHandler(pub, slog.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Inspect entry.
//	    }
//	}()
//
// Combine it with [io.MultiWriter] to write to multiple locations:
//
//	pub := log.NewPublisher()
//	w := io.MultiWriter(os.Stderr, pub)
//	handler := log.CreateHandler(w, slog.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
package log
