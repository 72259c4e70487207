package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sadopc/jsonstash/internal/logger"
	"github.com/sadopc/jsonstash/internal/mock"
)

func serveCmd(args []string) int {
	fs := newFlagSet("serve")
	common := addCommonFlags(fs)
	addrFlag := fs.String("addr", "", "Address to listen on (default from config: 127.0.0.1)")
	portFlag := fs.Int("port", 0, "Port to listen on (default from config: 3000)")
	latencyFlag := fs.Duration("latency", 0, "Artificial response latency (e.g., 200ms, 1s)")
	errorRateFlag := fs.Float64("error-rate", 0, "Random error rate (0.0-1.0)")
	corsOriginFlag := fs.String("cors-origin", "", "Add CORS headers allowing this origin (off by default)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash serve [flags]\n\n")
		fmt.Fprintf(stderr, "Start a mock HTTP server that answers GET requests for every stored\n")
		fmt.Fprintf(stderr, "endpoint path with the recorded body and headers. Records that cannot\n")
		fmt.Fprintf(stderr, "be decoded are skipped with a warning.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash serve\n")
		fmt.Fprintf(stderr, "  jsonstash serve --port 8080 --addr 0.0.0.0\n")
		fmt.Fprintf(stderr, "  jsonstash serve --latency 200ms --error-rate 0.1\n")
		fmt.Fprintf(stderr, "  jsonstash serve --cors-origin https://myapp.example.com\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 0 {
		return usageError(fs, "unexpected argument %q", pos[0])
	}
	if *errorRateFlag < 0 || *errorRateFlag > 1 {
		return usageError(fs, "error-rate must be between 0.0 and 1.0")
	}
	if *portFlag < 0 || *portFlag > 65535 {
		return usageError(fs, "port must be between 0 and 65535")
	}

	cfg, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	table := mock.Materialize(ctx, s, logger.Logger)
	s.Close()

	if table.Skipped() > 0 {
		logger.Logger.Warn().Int("skipped", table.Skipped()).Msg("some records were not loaded")
	}
	if table.Len() == 0 {
		logger.Logger.Warn().Str("bucket", cfg.Bucket).Msg("no records found; every request will return 404")
	}

	serve := cfg.Serve
	if *addrFlag != "" {
		serve.Addr = *addrFlag
	}
	if isSet(fs, "port") {
		serve.Port = *portFlag
	}
	if isSet(fs, "latency") {
		serve.Latency = *latencyFlag
	}
	if *corsOriginFlag != "" {
		serve.CORSOrigin = *corsOriginFlag
	}

	opts := []mock.Option{
		mock.WithAddr(serve.Addr),
		mock.WithPort(serve.Port),
		mock.WithLogger(logger.Logger),
	}
	if serve.Latency > 0 {
		opts = append(opts, mock.WithLatency(serve.Latency))
		logger.Logger.Info().Str("latency", serve.Latency.String()).Msg("artificial latency enabled")
	}
	if *errorRateFlag > 0 {
		opts = append(opts, mock.WithErrorRate(*errorRateFlag))
		logger.Logger.Info().Str("rate", fmt.Sprintf("%.0f%%", *errorRateFlag*100)).Msg("simulated errors enabled")
	}
	if serve.CORSOrigin != "" {
		opts = append(opts, mock.WithCORSOrigin(serve.CORSOrigin))
	}

	srv := mock.New(table, opts...)
	for _, p := range srv.Routes() {
		logger.Logger.Debug().Str("path", p).Msg("route")
	}

	start := time.Now()
	if err := srv.Start(ctx); err != nil {
		return fail("%v", err)
	}
	logger.Logger.Info().Dur("uptime", time.Since(start)).Msg("mock server stopped")
	return 0
}
