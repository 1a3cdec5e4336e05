package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/project-atlas/internal/errs"
)

// toolErrorResponse is the JSON body of a tool error result.
type toolErrorResponse struct {
	Error       string   `json:"error"`
	Kind        string   `json:"kind"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// toolError converts a query failure into a result. Conditions the caller
// can act on (unknown symbol or file, missing index) become tool errors
// the model can read; anything else is a protocol-level error.
func toolError(err error) (*mcp.CallToolResult, error) {
	var e *errs.Error
	if !errors.As(err, &e) || !isUserError(e.Kind) {
		return nil, err
	}
	body, merr := json.Marshal(toolErrorResponse{
		Error:       e.Error(),
		Kind:        e.Kind.String(),
		Suggestions: e.Suggestions,
	})
	if merr != nil {
		return nil, fmt.Errorf("failed to marshal error: %w", merr)
	}
	return mcp.NewToolResultError(string(body)), nil
}

func isUserError(kind errs.Kind) bool {
	switch kind {
	case errs.KindSymbolNotFound, errs.KindFileNotIndexed, errs.KindIndexMissing:
		return true
	}
	return false
}
