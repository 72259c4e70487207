package main

import (
	"context"
	"fmt"

	"github.com/sadopc/jsonstash/internal/logger"
	"github.com/sadopc/jsonstash/internal/mock"
	"github.com/sadopc/jsonstash/internal/output"
)

func listCmd(args []string) int {
	fs := newFlagSet("list")
	common := addCommonFlags(fs)
	matchFlag := fs.String("match", "", "Only list paths matching a glob (e.g. '/api/*', '/api/**')")
	searchFlag := fs.String("search", "", "Fuzzy-filter paths, best matches first")
	outputFlag := fs.String("output", "text", "Output format: text, json")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash list [flags]\n\n")
		fmt.Fprintf(stderr, "List the endpoint paths stored in the bucket. Records that cannot be\n")
		fmt.Fprintf(stderr, "decoded are reported as warnings and left out.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash list\n")
		fmt.Fprintf(stderr, "  jsonstash list --match '/api/**' --output json\n")
		fmt.Fprintf(stderr, "  jsonstash list --search dito\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 0 {
		return usageError(fs, "unexpected argument %q", pos[0])
	}
	switch *outputFlag {
	case "text", "json":
	default:
		return usageError(fs, "invalid output format %q (must be text or json)", *outputFlag)
	}

	_, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	table := mock.Materialize(context.Background(), s, logger.Logger)
	routes, err := output.Filter(table.Routes(), *matchFlag, *searchFlag)
	if err != nil {
		return usageError(fs, "%v", err)
	}

	if *outputFlag == "json" {
		err = output.PrintListJSON(stdout, routes)
	} else {
		err = output.PrintList(stdout, routes)
	}
	if err != nil {
		return fail("writing output: %v", err)
	}
	return 0
}
