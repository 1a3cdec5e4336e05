package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/indexer"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// statusResponse is the JSON form of the status command.
type statusResponse struct {
	Root    string            `json:"root"`
	Indexed int               `json:"indexed"`
	Current bool              `json:"current"`
	Diff    *storage.FileDiff `json:"diff"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which files changed since the last index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openProject(ctx, false, slog.Default())
		if err != nil {
			return err
		}
		defer p.Close()

		idx, _, err := p.newIndexer(&indexer.NoOpProgressReporter{})
		if err != nil {
			return err
		}
		diff, err := idx.Status(ctx)
		if err != nil {
			return err
		}
		files, err := p.store.ListFiles(ctx)
		if err != nil {
			return err
		}

		resp := statusResponse{Root: p.root, Indexed: len(files), Current: diff.Empty(), Diff: diff}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Project: %s\n", resp.Root)
		fmt.Fprintf(out, "Indexed files: %s\n", formatNumber(resp.Indexed))
		if resp.Current {
			fmt.Fprintln(out, "Index is up to date")
			return nil
		}
		printPaths(out, "Modified", diff.Stale)
		printPaths(out, "New", diff.New)
		printPaths(out, "Deleted", diff.Deleted)
		fmt.Fprintln(out, "Run 'atlas index' to update")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printPaths(w io.Writer, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(paths))
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
