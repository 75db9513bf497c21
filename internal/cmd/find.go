package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/finder"
	"github.com/gcbaptista/go-word-finder/internal/tokenizer"
)

type findOptions struct {
	wordsFile  string
	jsonOutput bool
	skipHidden bool
}

// NewFindCommand creates and returns the find subcommand
func NewFindCommand(global *globalOptions) *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <root> [word]...",
		Short: "Print the first file below root containing every word",
		Long: `Walk root depth first in directory listing order and print the first
file whose words include every target word. Targets come from the arguments
and from --words-file (whitespace separated). With no targets at all the
first readable file qualifies.

Unreadable files and directories are skipped with a warning.

Exit code: 0 if a file was found, 1 otherwise`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := global.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			words := args[1:]
			if opts.wordsFile != "" {
				fileWords, err := readWordsFile(opts.wordsFile, settings.Search.MaxLineBytes)
				if err != nil {
					return err
				}
				words = append(words, fileWords...)
			}
			if cmd.Flags().Changed("skip-hidden") {
				settings.Search.SkipHidden = opts.skipHidden
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runFind(ctx, args[0], words, settings, logger, opts.jsonOutput, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.wordsFile, "words-file", "", "read additional target words from this file")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&opts.skipHidden, "skip-hidden", false, "skip files and directories whose name starts with '.'")

	return cmd
}

// runFind searches root and writes the outcome to out. It returns ErrNotFound
// when the search completes without a qualifying file.
func runFind(ctx context.Context, root string, words []string, settings config.Settings, logger *zap.Logger, jsonOutput bool, out io.Writer) error {
	result, err := finder.SearchDir(ctx, root, words,
		finder.WithLogger(logger),
		finder.WithMaxLineBytes(settings.Search.MaxLineBytes),
		finder.WithExcludeDirs(settings.Search.ExcludeDirs...),
		finder.WithSkipHidden(settings.Search.SkipHidden),
	)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		printFindResult(out, result)
	}

	if !result.Found {
		return ErrNotFound
	}
	return nil
}

func printFindResult(out io.Writer, result *finder.Result) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	if result.Found {
		_, _ = green.Fprintln(out, result.Path)
	} else {
		_, _ = yellow.Fprintln(out, ErrNotFound.Error())
		if c := result.Closest; c != nil {
			_, _ = yellow.Fprintf(out, "closest: %s (%d of %d words, missing: %s)\n",
				c.Path, c.Matched, c.Total, strings.Join(c.Missing, " "))
		}
	}

	_, _ = gray.Fprintf(out, "scanned %d files in %d directories (%d words, %d skipped) in %s\n",
		result.Stats.FilesScanned, result.Stats.DirsVisited, result.Stats.TokensRead,
		result.Stats.FilesSkipped, result.Took)
}

// readWordsFile streams the words of path through a bounded sequencer.
func readWordsFile(path string, maxLineBytes int) ([]string, error) {
	seq, err := tokenizer.OpenFile(path, tokenizer.WithMaxLineBytes(maxLineBytes))
	if err != nil {
		return nil, err
	}
	defer func() { _ = seq.Close() }()

	var words []string
	for word := range seq.All() {
		words = append(words, word)
	}
	if err := seq.Err(); err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}
	return words, nil
}
