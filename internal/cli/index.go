package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/indexer"
	"github.com/mvp-joe/project-atlas/internal/watcher"
)

var (
	fullFlag  bool
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the project index",
	Long: `Index scans the project for TypeScript and JavaScript files and records
their symbols, imports and exports in .atlas/index.db.

Only files whose modification time advanced since they were indexed are
parsed again; deleted files are removed from the index.

Examples:
  # Update the index of the current project
  atlas index

  # Discard the index and rebuild it from scratch
  atlas index --full

  # Keep the index current while editing
  atlas index --watch
`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&fullFlag, "full", false, "Discard the index and rebuild every file")
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex incrementally")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), quietFlag)

	p, err := openProject(ctx, true, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	progress := NewCLIProgressReporter(quietFlag || watchFlag, cmd.ErrOrStderr())
	idx, sc, err := p.newIndexer(progress)
	if err != nil {
		return err
	}

	var res *indexer.Result
	if fullFlag {
		res, err = idx.Build(ctx)
	} else {
		res, err = idx.Update(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}
	if !quietFlag {
		printResult(cmd.OutOrStdout(), res)
	}

	if !watchFlag {
		return nil
	}

	w, err := watcher.New(p.root, func(ctx context.Context, paths []string) error {
		res, err := idx.Update(ctx)
		if err != nil {
			return err
		}
		if !quietFlag {
			printResult(cmd.OutOrStdout(), res)
		}
		return nil
	},
		watcher.WithDebounce(p.cfg.Watch.Debounce),
		watcher.WithFilter(sc.Match),
		watcher.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("watching for changes", "root", p.root, "debounce", p.cfg.Watch.Debounce)
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	logger.Info("watch mode stopped")
	return nil
}

func printResult(w io.Writer, res *indexer.Result) {
	fmt.Fprintf(w, "✓ Indexed %s files (%s unchanged, %s deleted) in %s\n",
		formatNumber(res.FilesIndexed),
		formatNumber(res.FilesUnchanged),
		formatNumber(res.FilesDeleted),
		res.Duration.Round(time.Millisecond))
	if res.FilesIndexed > 0 {
		fmt.Fprintf(w, "  Symbols: %s  Imports: %s  Exports: %s\n",
			formatNumber(res.SymbolsExtracted),
			formatNumber(res.ImportsExtracted),
			formatNumber(res.ExportsExtracted))
	}
	for _, fe := range res.Errors {
		fmt.Fprintf(w, "  ! %s\n", fe.Error())
	}
}
