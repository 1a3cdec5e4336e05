package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-atlas/internal/indexer"
	"github.com/mvp-joe/project-atlas/internal/mcp"
	"github.com/mvp-joe/project-atlas/internal/watcher"
)

var mcpWatchFlag bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for symbol and dependency lookups",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
query the project index.

The MCP server:
- Answers from .atlas/index.db (run 'atlas index' first)
- Provides the atlas_where, atlas_exports, atlas_imports, atlas_summary and
  atlas_deps tools
- Communicates via stdio (standard MCP transport)
- With --watch, keeps the index current while serving

Example:
  atlas mcp --watch`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVarP(&mcpWatchFlag, "watch", "w", false, "Update the index on file changes while serving")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// stdout carries the protocol; logs go to stderr.
	logger := newLogger(os.Stderr, false)

	p, err := openProject(ctx, false, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	svc, err := p.newQuery()
	if err != nil {
		return err
	}
	defer svc.Close()

	watchDone := make(chan struct{})
	if mcpWatchFlag {
		idx, sc, err := p.newIndexer(&indexer.NoOpProgressReporter{})
		if err != nil {
			return err
		}
		w, err := watcher.New(p.root, func(ctx context.Context, paths []string) error {
			_, err := idx.Update(ctx)
			return err
		},
			watcher.WithDebounce(p.cfg.Watch.Debounce),
			watcher.WithFilter(sc.Match),
			watcher.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		go func() {
			defer close(watchDone)
			if err := w.Run(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	} else {
		close(watchDone)
	}

	err = mcp.NewServer(svc, logger).Serve(ctx, os.Stdin, os.Stdout)
	cancel()
	<-watchDone
	return err
}
