package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/sadopc/jsonstash/internal/har"
	"github.com/sadopc/jsonstash/internal/logger"
	"github.com/sadopc/jsonstash/internal/mock"
)

func exportCmd(args []string) int {
	fs := newFlagSet("export")
	common := addCommonFlags(fs)
	outputFlag := fs.String("output", "", "Write the HAR to a file instead of stdout")
	baseURLFlag := fs.String("base-url", "", "Base URL for entry URLs (default: the configured serve address)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash export [flags]\n\n")
		fmt.Fprintf(stderr, "Write every stored record as a HAR 1.2 archive, as 'serve' would\n")
		fmt.Fprintf(stderr, "answer it.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash export > recorded.har\n")
		fmt.Fprintf(stderr, "  jsonstash export --output recorded.har --base-url https://api.example.com\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 0 {
		return usageError(fs, "unexpected argument %q", pos[0])
	}

	cfg, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	table := mock.Materialize(context.Background(), s, logger.Logger)

	baseURL := *baseURLFlag
	if baseURL == "" {
		baseURL = "http://" + net.JoinHostPort(cfg.Serve.Addr, strconv.Itoa(cfg.Serve.Port))
	}

	data, err := har.Export(table.Routes(), baseURL)
	if err != nil {
		return fail("encoding HAR: %v", err)
	}

	if *outputFlag == "" {
		fmt.Fprintln(stdout, string(data))
		return 0
	}
	if err := os.WriteFile(*outputFlag, append(data, '\n'), 0o644); err != nil {
		return fail("writing %s: %v", *outputFlag, err)
	}
	fmt.Fprintf(stderr, "Exported %d records to %s\n", table.Len(), *outputFlag)
	return 0
}
