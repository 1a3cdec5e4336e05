package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/depgraph"
	"github.com/mvp-joe/project-atlas/internal/query"
)

var (
	depthFlag   int
	reverseFlag bool
	cyclesFlag  bool
)

var depsCmd = &cobra.Command{
	Use:   "deps [file]",
	Short: "Show file dependencies",
	Long: `Deps lists the project files a file imports directly. With --reverse it
lists the files depending on it, following importers up to --depth hops.
With --cycles it lists groups of files that import each other.

Examples:
  atlas deps src/user.ts
  atlas deps src/db.ts --reverse --depth 3
  atlas deps --cycles`,
	Args: func(cmd *cobra.Command, args []string) error {
		if cyclesFlag {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withQuery(ctx, func(svc *query.Service) error {
			out := cmd.OutOrStdout()

			if cyclesFlag {
				g, err := svc.Graph(ctx)
				if err != nil {
					return err
				}
				cycles, err := g.Cycles()
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(out, cycles)
				}
				for i, c := range cycles {
					fmt.Fprintf(out, "cycle %d:\n", i+1)
					for _, p := range c {
						fmt.Fprintf(out, "  %s\n", p)
					}
				}
				return nil
			}

			if reverseFlag {
				deps, err := svc.Dependents(ctx, args[0], depthFlag)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(out, deps)
				}
				for _, d := range deps {
					fmt.Fprintf(out, "%d  %s\n", d.Depth, d.Path)
				}
				return nil
			}

			deps, err := svc.Dependencies(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, deps)
			}
			for _, d := range deps {
				fmt.Fprintln(out, d)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().IntVar(&depthFlag, "depth", depgraph.DefaultDepth, fmt.Sprintf("Importer hops to follow with --reverse (max %d)", depgraph.MaxDepth))
	depsCmd.Flags().BoolVarP(&reverseFlag, "reverse", "r", false, "List files depending on the file")
	depsCmd.Flags().BoolVar(&cyclesFlag, "cycles", false, "List import cycles")
}
