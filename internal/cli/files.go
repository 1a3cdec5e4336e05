package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/query"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

var exportsCmd = &cobra.Command{
	Use:   "exports <file>",
	Short: "List what a file exports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd.Context(), func(svc *query.Service) error {
			res, err := svc.Exports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			for _, e := range res.Exports {
				line := fmt.Sprintf("%4d  %s", e.Line, e.ExportedName)
				if e.LocalName != "" && e.LocalName != e.ExportedName {
					line += " (" + e.LocalName + ")"
				}
				if e.IsReexport {
					line += " from " + e.SourcePath
				}
				fmt.Fprintln(out, line)
			}
			return nil
		})
	},
}

var importsCmd = &cobra.Command{
	Use:   "imports <file>",
	Short: "List what a file imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd.Context(), func(svc *query.Service) error {
			res, err := svc.Imports(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Internal:")
			for _, imp := range res.Internal {
				target := imp.ImportedPath
				if target == "" {
					target = "(unresolved)"
				}
				fmt.Fprintf(out, "%4d  %s from %s\n", imp.Line, importName(imp), target)
			}
			fmt.Fprintln(out, "External:")
			for _, imp := range res.External {
				fmt.Fprintf(out, "%4d  %s from %s\n", imp.Line, importName(imp), imp.PackageName)
			}
			return nil
		})
	},
}

var importersCmd = &cobra.Command{
	Use:   "importers <file>",
	Short: "List the files importing a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd.Context(), func(svc *query.Service) error {
			imps, err := svc.Importers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), imps)
			}
			printImporters(cmd.OutOrStdout(), imps)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(importsCmd)
	rootCmd.AddCommand(importersCmd)
}

func importName(imp storage.Import) string {
	if imp.Alias != "" && imp.Alias != imp.ImportedName {
		return imp.ImportedName + " as " + imp.Alias
	}
	return imp.ImportedName
}

func printImporters(w io.Writer, imps []storage.Import) {
	for _, imp := range imps {
		fmt.Fprintf(w, "%s:%d  %s\n", imp.FilePath, imp.Line, importName(imp))
	}
}
