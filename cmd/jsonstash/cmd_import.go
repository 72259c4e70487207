package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/jsonstash/internal/capture"
	"github.com/sadopc/jsonstash/internal/har"
	"github.com/sadopc/jsonstash/internal/logger"
)

func importCmd(args []string) int {
	fs := newFlagSet("import")
	common := addCommonFlags(fs)
	dryRunFlag := fs.Bool("dry-run", false, "Show what would be stored without writing")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash import <file.har> [flags]\n\n")
		fmt.Fprintf(stderr, "Store every successful GET response found in a HAR archive under its\n")
		fmt.Fprintf(stderr, "URL path. JSON bodies are canonicalized like 'add'; binary bodies and\n")
		fmt.Fprintf(stderr, "non-GET entries are skipped.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash import session.har\n")
		fmt.Fprintf(stderr, "  jsonstash import session.har --dry-run\n")
		fmt.Fprintf(stderr, "  cat session.har | jsonstash import -\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 1 {
		return usageError(fs, "HAR file path is required")
	}

	var data []byte
	var err error
	if pos[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(pos[0])
	}
	if err != nil {
		return fail("reading %s: %v", pos[0], err)
	}

	archive, err := har.Parse(data)
	if err != nil {
		return fail("%v", err)
	}
	captures, skipped := har.Captures(archive)
	for _, sk := range skipped {
		logger.Logger.Warn().Str("url", sk.URL).Str("reason", sk.Reason).Msg("skipping HAR entry")
	}

	if *dryRunFlag {
		if _, err := common.load(); err != nil {
			return fail("%v", err)
		}
		for _, c := range captures {
			fmt.Fprintf(stdout, "%s <- %s (%d bytes)\n", c.Alias, c.URL, len(c.Response.Body))
		}
		return 0
	}

	_, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for _, c := range captures {
		if _, err := capture.Save(ctx, s, c.Alias, c.Response); err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Stored %s\n", c.Alias)
	}
	fmt.Fprintf(stdout, "Imported %d responses, skipped %d entries\n", len(captures), len(skipped))
	return 0
}
