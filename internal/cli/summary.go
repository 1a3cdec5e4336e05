package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/query"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// topPackages bounds the external packages printed by summary.
const topPackages = 10

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Summarize the project or one file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withQuery(ctx, func(svc *query.Service) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				stats, err := svc.FileStats(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(out, stats)
				}
				fmt.Fprintf(out, "%s (%s, %s lines)\n", stats.File.Path, stats.File.Language, formatNumber(stats.File.LineCount))
				fmt.Fprintf(out, "  Symbols:   %d (%d exported)\n", stats.Symbols, stats.ExportedSymbols)
				fmt.Fprintf(out, "  Imports:   %d\n", stats.Imports)
				fmt.Fprintf(out, "  Exports:   %d\n", stats.Exports)
				fmt.Fprintf(out, "  Importers: %d\n", stats.Importers)
				printCounts(out, "By kind", stats.ByKind)
				return nil
			}

			sum, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, sum)
			}
			printSummary(out, sum)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func printSummary(w io.Writer, sum *storage.Summary) {
	fmt.Fprintf(w, "Files:   %s\n", formatNumber(sum.Files))
	fmt.Fprintf(w, "Lines:   %s\n", formatNumber(sum.Lines))
	fmt.Fprintf(w, "Symbols: %s\n", formatNumber(sum.Symbols))
	fmt.Fprintf(w, "Imports: %s\n", formatNumber(sum.Imports))
	fmt.Fprintf(w, "Exports: %s\n", formatNumber(sum.Exports))
	printCounts(w, "By language", sum.ByLanguage)
	printCounts(w, "By kind", sum.ByKind)

	if len(sum.ExternalPackages) > 0 {
		fmt.Fprintln(w, "External packages:")
		for i, p := range sum.ExternalPackages {
			if i == topPackages {
				fmt.Fprintf(w, "  ... and %d more\n", len(sum.ExternalPackages)-topPackages)
				break
			}
			fmt.Fprintf(w, "  %-30s %d files\n", p.Name, p.Files)
		}
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %s\n", k, formatNumber(counts[k]))
	}
}
