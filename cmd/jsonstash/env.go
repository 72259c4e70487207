package main

import (
	"flag"
	"fmt"

	"github.com/sadopc/jsonstash/internal/config"
	"github.com/sadopc/jsonstash/internal/logger"
	"github.com/sadopc/jsonstash/internal/store"
)

// commonFlags are accepted by every command that touches the store.
type commonFlags struct {
	configPath string
	dataPath   string
	bucket     string
	logLevel   string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Config file path")
	fs.StringVar(&c.dataPath, "data-path", "", "Directory holding the database (default from config: ./data)")
	fs.StringVar(&c.bucket, "bucket", "", "Bucket name (default from config: json_data)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return c
}

// load resolves the configuration (file, then flags) and sets up logging.
func (c *commonFlags) load() (config.Config, error) {
	cfg := config.Load()
	if c.configPath != "" {
		loaded, err := config.LoadFile(c.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.dataPath != "" {
		cfg.DataPath = c.dataPath
	}
	if c.bucket != "" {
		cfg.Bucket = c.bucket
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	logger.Init(cfg.Log.Level)
	if cfg.Log.File != "" {
		logger.AddFileLogger(cfg.Log.File)
	}
	return cfg, nil
}

// open loads the configuration and opens the configured bucket.
func (c *commonFlags) open() (config.Config, *store.Store, error) {
	cfg, err := c.load()
	if err != nil {
		return cfg, nil, err
	}
	s, err := store.OpenDir(cfg.DataPath, cfg.Bucket)
	if err != nil {
		return cfg, nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Logger.Debug().Str("data_path", cfg.DataPath).Str("bucket", cfg.Bucket).Msg("store opened")
	return cfg, s, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseArgs parses flags that may appear before, between or after the
// positional arguments and returns the positionals. The exit code is
// meaningful only when ok is false.
func parseArgs(fs *flag.FlagSet, args []string) (positional []string, code int, ok bool) {
	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return nil, 0, false
			}
			return nil, 2, false
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, 0, true
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// isSet reports whether the named flag was given on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func usageError(fs *flag.FlagSet, format string, a ...any) int {
	fmt.Fprintf(stderr, "Error: "+format+"\n\n", a...)
	fs.Usage()
	return 2
}

func fail(format string, a ...any) int {
	fmt.Fprintf(stderr, "Error: "+format+"\n", a...)
	return 1
}
