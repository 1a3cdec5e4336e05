package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/query"
)

var whereCmd = &cobra.Command{
	Use:   "where <name>",
	Short: "Show where a symbol is defined",
	Long: `Where looks a symbol up by exact name, then case-insensitively, then by
prefix. Exported definitions are listed first. When nothing matches it
suggests similarly named symbols.

Example:
  atlas where UserService`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd.Context(), func(svc *query.Service) error {
			res, err := svc.Where(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			if res.Match != query.MatchExact {
				fmt.Fprintf(out, "(%s match)\n", res.Match)
			}
			for _, s := range res.Symbols {
				exported := ""
				if s.IsDefault {
					exported = " [default export]"
				} else if s.Exported {
					exported = " [exported]"
				}
				fmt.Fprintf(out, "%s:%d-%d  %s %s%s\n", s.FilePath, s.StartLine, s.EndLine, s.Kind, s.Name, exported)
				if s.Signature != "" {
					fmt.Fprintf(out, "    %s\n", s.Signature)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(whereCmd)
}
