package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-word-finder/internal/finder"
)

// NewTreeCommand creates and returns the tree subcommand
func NewTreeCommand(global *globalOptions) *cobra.Command {
	var sep string

	cmd := &cobra.Command{
		Use:   "tree <root>",
		Short: "Print the directory tree below root",
		Long: `Print root's name, then every entry below it on its own line, indented
with one separator per level of depth. Entries appear in the same order the
find command visits them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := global.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return finder.PrintTreeDir(cmd.OutOrStdout(), args[0], sep,
				finder.WithLogger(logger),
				finder.WithExcludeDirs(settings.Search.ExcludeDirs...),
				finder.WithSkipHidden(settings.Search.SkipHidden),
			)
		},
	}

	cmd.Flags().StringVar(&sep, "sep", finder.DefaultTreeSeparator, "indentation added per level of depth")

	return cmd
}
