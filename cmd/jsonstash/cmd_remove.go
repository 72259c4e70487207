package main

import (
	"context"
	"fmt"

	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/logger"
)

func removeCmd(args []string) int {
	fs := newFlagSet("remove")
	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash remove <alias>... [flags]\n\n")
		fmt.Fprintf(stderr, "Delete the records stored for one or more endpoint paths.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) == 0 {
		return usageError(fs, "at least one alias is required")
	}

	_, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	missing := 0
	for _, alias := range pos {
		existed, err := s.Delete(context.Background(), endpoint.Encode(alias))
		if err != nil {
			return fail("%v", err)
		}
		if !existed {
			missing++
			logger.Logger.Warn().Str("alias", alias).Msg("no record to remove")
			continue
		}
		fmt.Fprintf(stdout, "Removed %s\n", alias)
	}
	if missing > 0 {
		return 1
	}
	return 0
}

func flushCmd(args []string) int {
	fs := newFlagSet("flush")
	common := addCommonFlags(fs)
	yesFlag := fs.Bool("yes", false, "Confirm deleting every record in the bucket")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash flush --yes [flags]\n\n")
		fmt.Fprintf(stderr, "Delete every record in the bucket.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 0 {
		return usageError(fs, "unexpected argument %q", pos[0])
	}
	if !*yesFlag {
		return usageError(fs, "refusing to flush without --yes")
	}

	cfg, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	ctx := context.Background()
	n, err := s.Count(ctx)
	if err != nil {
		return fail("%v", err)
	}
	if err := s.Flush(ctx); err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(stdout, "Flushed %d records from bucket %s\n", n, cfg.Bucket)
	return 0
}
