package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/logging"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrNotFound is returned by the find command when no file contains every
// target word. main exits with status 1 without printing it.
var ErrNotFound = errors.New("no file contains all words")

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath   string
	logLevel     string
	maxLineBytes int
	exclude      []string
}

// NewRootCommand creates and returns the root cobra command for wordfinder
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "wordfinder",
		Short: "Find the first file in a directory tree that contains a set of words",
		Long: `Wordfinder walks a directory tree depth first and reports the first file
whose whitespace separated words include every target word.

Files are streamed line by line with a bounded buffer, so memory use does not
grow with file size. It can also print the directory tree and serve finds
over HTTP.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints errors so ErrNotFound can exit quietly
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.IntVar(&opts.maxLineBytes, "max-line-bytes", 0, "longest line a file may contain before it is skipped (overrides config)")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "directory names never descended into (added to config)")

	// Add subcommands
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewTreeCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// loadSettings reads the config file and applies flag overrides.
func (o *globalOptions) loadSettings() (config.Settings, error) {
	settings, err := config.Load(o.configPath)
	if err != nil {
		return config.Settings{}, err
	}

	if o.logLevel != "" {
		settings.Logging.Level = o.logLevel
	}
	if o.maxLineBytes != 0 {
		settings.Search.MaxLineBytes = o.maxLineBytes
	}
	settings.Search.ExcludeDirs = append(settings.Search.ExcludeDirs, o.exclude...)

	if problems := settings.Validate(); len(problems) > 0 {
		return config.Settings{}, fmt.Errorf("invalid flags: %v", problems)
	}
	return settings, nil
}

// setup loads settings and builds the logger for a subcommand.
func (o *globalOptions) setup() (config.Settings, *zap.Logger, error) {
	settings, err := o.loadSettings()
	if err != nil {
		return config.Settings{}, nil, err
	}
	logger, err := logging.New(settings.Logging)
	if err != nil {
		return config.Settings{}, nil, err
	}
	return settings, logger, nil
}
