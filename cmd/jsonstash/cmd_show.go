package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/core/response"
	"github.com/sadopc/jsonstash/internal/output"
)

func showCmd(args []string) int {
	fs := newFlagSet("show")
	common := addCommonFlags(fs)
	rawFlag := fs.Bool("raw", false, "Print the stored record exactly as persisted")
	noColorFlag := fs.Bool("no-color", false, "Disable syntax highlighting")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash show <alias> [flags]\n\n")
		fmt.Fprintf(stderr, "Print the headers and body stored for an endpoint path.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash show /api/ditto\n")
		fmt.Fprintf(stderr, "  jsonstash show /api/ditto --raw | jq .body\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 1 {
		return usageError(fs, "alias is required")
	}
	alias := pos[0]

	_, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	value, found, err := s.Get(context.Background(), endpoint.Encode(alias))
	if err != nil {
		return fail("%v", err)
	}
	if !found {
		return fail("no record for %s", alias)
	}

	if *rawFlag {
		fmt.Fprintln(stdout, value)
		return 0
	}

	resp, err := response.Unmarshal(value)
	if err != nil {
		return fail("record for %s is corrupt: %v", alias, err)
	}

	color := !*noColorFlag && stdout == os.Stdout && isatty.IsTerminal(os.Stdout.Fd())
	if err := output.PrintResponse(stdout, resp, color); err != nil {
		return fail("writing output: %v", err)
	}
	return 0
}
