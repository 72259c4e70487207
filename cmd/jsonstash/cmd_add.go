package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sadopc/jsonstash/internal/capture"
	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/core/response"
	"github.com/sadopc/jsonstash/internal/logger"
)

func addCmd(args []string) int {
	fs := newFlagSet("add")
	common := addCommonFlags(fs)
	fileFlag := fs.Bool("file", false, "Treat the source as a local file instead of a URL")
	proxyFlag := fs.String("proxy", "", "Proxy URL for the capture (http, https or socks5)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jsonstash add <source> <alias> [flags]\n\n")
		fmt.Fprintf(stderr, "Capture a JSON response with a single GET (or read a file with --file)\n")
		fmt.Fprintf(stderr, "and store it under the local endpoint path <alias>. An existing record\n")
		fmt.Fprintf(stderr, "for the same alias is replaced.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  jsonstash add https://pokeapi.co/api/v2/pokemon/ditto /api/ditto\n")
		fmt.Fprintf(stderr, "  jsonstash add ./greeting.txt /static/greeting --file\n")
		fmt.Fprintf(stderr, "  jsonstash add https://api.example.com/users /users --proxy socks5://127.0.0.1:1080\n")
	}

	pos, code, ok := parseArgs(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 2 {
		return usageError(fs, "source and alias are required")
	}
	source, alias := pos[0], pos[1]

	cfg, s, err := common.open()
	if err != nil {
		return fail("%v", err)
	}
	defer s.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var resp response.StorableResponse
	if *fileFlag {
		resp, err = capture.AddFile(ctx, s, source, alias)
	} else {
		proxyURL, noProxy := cfg.Proxy.URL, cfg.Proxy.NoProxy
		if *proxyFlag != "" {
			proxyURL = *proxyFlag
		}
		client := capture.New(capture.WithProxy(proxyURL, noProxy))
		resp, err = client.AddURL(ctx, s, source, alias)
	}
	if err != nil {
		return fail("%v", err)
	}

	logger.Logger.Info().
		Str("source", source).
		Str("alias", alias).
		Str("key", endpoint.Encode(alias)).
		Int("size", len(resp.Body)).
		Int("headers", len(resp.Headers)).
		Msg("stored")
	fmt.Fprintf(stdout, "Stored %s (%d bytes, %d headers)\n", alias, len(resp.Body), len(resp.Headers))
	return 0
}
