package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sadopc/jsonstash/pkg/version"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printHelp()
		return 2
	}

	rest := args[1:]
	switch args[0] {
	case "add":
		return addCmd(rest)
	case "list", "ls":
		return listCmd(rest)
	case "show":
		return showCmd(rest)
	case "remove", "rm":
		return removeCmd(rest)
	case "flush":
		return flushCmd(rest)
	case "serve":
		return serveCmd(rest)
	case "import":
		return importCmd(rest)
	case "export":
		return exportCmd(rest)
	case "completion":
		return completionCmd(rest)
	case "version", "--version":
		fmt.Fprintf(stdout, "jsonstash %s (%s) built %s\n", version.Version, version.Commit, version.Date)
		return 0
	case "help", "-h", "--help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		printHelp()
		return 2
	}
}

func printHelp() {
	fmt.Fprintf(stderr, `jsonstash - record JSON responses and replay them as a mock API

Usage:
  jsonstash <command> [args] [flags]

Commands:
  add         Capture a URL (or a file with --file) under a local endpoint path
  list        List stored endpoint paths
  show        Print the stored headers and body for an endpoint path
  remove      Delete the record for an endpoint path
  flush       Delete every record in the bucket
  serve       Start a mock HTTP server replaying every stored record
  import      Store the GET responses found in a HAR file
  export      Write every stored record as a HAR file
  completion  Generate shell completion scripts (bash, zsh, fish)
  version     Print version information
  help        Show this help message

Common flags:
  --config <path>      Config file (default: ~/.config/jsonstash/config.yaml)
  --data-path <dir>    Directory holding the database (default: ./data)
  --bucket <name>      Bucket to read and write (default: json_data)
  --log-level <level>  debug, info, warn or error (default: info)

Run 'jsonstash <command> --help' for more information about a command.
`)
}
