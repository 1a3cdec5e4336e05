package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-atlas/internal/depgraph"
	"github.com/mvp-joe/project-atlas/internal/query"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// Querier is the read side the tools are served from. *query.Service
// implements it.
type Querier interface {
	Where(ctx context.Context, name string) (*query.WhereResult, error)
	Exports(ctx context.Context, path string) (*query.ExportsResult, error)
	Imports(ctx context.Context, path string) (*query.ImportsResult, error)
	Summary(ctx context.Context) (*storage.Summary, error)
	Dependencies(ctx context.Context, path string) ([]string, error)
	Dependents(ctx context.Context, path string, depth int) ([]depgraph.Dependent, error)
	Normalize(path string) string
}

// DepsResponse is the atlas_deps result.
type DepsResponse struct {
	Path         string               `json:"path"`
	Dependencies []string             `json:"dependencies,omitempty"`
	Dependents   []depgraph.Dependent `json:"dependents,omitempty"`
}

var readOnly = []mcp.ToolOption{
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
}

func toolOptions(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, readOnly...)
}

// AddTools registers every atlas tool with s.
func AddTools(s *server.MCPServer, q Querier) {
	s.AddTool(mcp.NewTool("atlas_where", toolOptions(
		mcp.WithDescription(`Find where a symbol is defined.

Tries an exact name match, then a case-insensitive match, then a prefix
match. Exported definitions are listed first. When nothing matches, the
error lists similarly named symbols.`),
		mcp.WithString("name", mcp.Required(), mcp.Description("Symbol name, e.g. UserService")),
	)...), whereHandler(q))

	s.AddTool(mcp.NewTool("atlas_exports", toolOptions(
		mcp.WithDescription("List what a file exports, in source order, including re-exports."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the project root")),
	)...), exportsHandler(q))

	s.AddTool(mcp.NewTool("atlas_imports", toolOptions(
		mcp.WithDescription("List what a file imports, split into project files and external packages."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the project root")),
	)...), importsHandler(q))

	s.AddTool(mcp.NewTool("atlas_summary", toolOptions(
		mcp.WithDescription("Summarize the indexed project: file, symbol and line counts, languages, symbol kinds and the most used external packages."),
	)...), summaryHandler(q))

	s.AddTool(mcp.NewTool("atlas_deps", toolOptions(
		mcp.WithDescription(`List the project files a file depends on directly, or with reverse=true
the files that depend on it up to depth import hops.

Only import statements count as dependencies. Re-exports such as
export { x } from './a' or export * from './a' do not, so barrel files
are not listed as dependents.`),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the project root")),
		mcp.WithBoolean("reverse", mcp.Description("List dependents instead of dependencies")),
		mcp.WithNumber("depth", mcp.Description("Import hops for dependents (1-10, default: 1)")),
	)...), depsHandler(q))
}

func whereHandler(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args whereArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := requireString("name", args.Name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := q.Where(ctx, args.Name)
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(res)
	}
}

func exportsHandler(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args pathArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := requireString("path", args.Path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := q.Exports(ctx, args.Path)
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(res)
	}
}

func importsHandler(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args pathArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := requireString("path", args.Path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := q.Imports(ctx, args.Path)
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(res)
	}
}

func summaryHandler(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := q.Summary(ctx)
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(res)
	}
}

func depsHandler(q Querier) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args depsArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := requireString("path", args.Path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := DepsResponse{Path: q.Normalize(args.Path)}
		var err error
		if args.Reverse {
			resp.Dependents, err = q.Dependents(ctx, args.Path, args.Depth)
		} else {
			resp.Dependencies, err = q.Dependencies(ctx, args.Path)
		}
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(resp)
	}
}
