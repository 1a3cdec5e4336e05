package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-atlas/internal/errs"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// Test Plan for the atlas commands:
// - index builds the store under .atlas and reports counts
// - where prints the definition and fails with suggestions for typos
// - exports, imports and importers print per-file listings
// - deps lists dependencies and, with --reverse, dependents
// - summary --json decodes into a storage.Summary
// - status reports modified files after an edit
// - query commands fail with index_missing before the first index
// - formatNumber adds thousands separators
//
// Note: Cannot use t.Parallel() because the commands share package-level
// flag state.

var projectFiles = map[string]string{
	"package.json": `{"name": "fixture"}`,
	"src/db.ts": `export class Db {
  query(sql: string): void {}
}
`,
	"src/user.ts": `import React from 'react';
import { Db } from './db';

export class UserService {
  constructor(private db: Db) {}
  load(id: string) {}
}
`,
	"src/index.ts": `import { UserService } from './user';
export * from './user';
export const service = UserService;
`,
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range projectFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// resetFlags restores every flag to its default so commands do not see
// values left over from a previous execution.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func indexedProject(t *testing.T) string {
	t.Helper()
	root := writeProject(t)
	out, err := execute(t, "index", "--project", root, "--quiet")
	require.NoError(t, err, out)
	return root
}

func TestIndexCommand(t *testing.T) {
	root := writeProject(t)

	out, err := execute(t, "index", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 files")
	assert.FileExists(t, filepath.Join(root, ".atlas", "index.db"))

	out, err = execute(t, "index", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 files (3 unchanged, 0 deleted)")

	out, err = execute(t, "index", "--project", root, "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 files")
}

func TestWhereCommand(t *testing.T) {
	root := indexedProject(t)

	out, err := execute(t, "where", "UserService", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "src/user.ts:4-7  class UserService [exported]")

	_, err = execute(t, "where", "UserServise", "--project", root)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindSymbolNotFound))
	assert.Contains(t, err.Error(), "UserService")
}

func TestFileCommands(t *testing.T) {
	root := indexedProject(t)

	out, err := execute(t, "exports", "src/index.ts", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "* from ./user")

	out, err = execute(t, "imports", "src/user.ts", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Db from src/db.ts")
	assert.Contains(t, out, "default as React from react")

	out, err = execute(t, "importers", "src/db.ts", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "src/user.ts:2  Db")

	_, err = execute(t, "exports", "src/missing.ts", "--project", root)
	assert.True(t, errs.Is(err, errs.KindFileNotIndexed))
}

func TestDepsCommand(t *testing.T) {
	root := indexedProject(t)

	out, err := execute(t, "deps", "src/user.ts", "--project", root, "--json")
	require.NoError(t, err)
	var deps []string
	require.NoError(t, json.Unmarshal([]byte(out), &deps))
	assert.Equal(t, []string{"src/db.ts"}, deps)

	out, err = execute(t, "deps", "src/db.ts", "--reverse", "--depth", "2", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "1  src/user.ts")
	assert.Contains(t, out, "2  src/index.ts")
}

func TestSummaryCommand_JSON(t *testing.T) {
	root := indexedProject(t)

	out, err := execute(t, "summary", "--project", root, "--json")
	require.NoError(t, err)

	var sum storage.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, map[string]int{"typescript": 3}, sum.ByLanguage)
	require.Len(t, sum.ExternalPackages, 1)
	assert.Equal(t, "react", sum.ExternalPackages[0].Name)
}

func TestStatusCommand(t *testing.T) {
	root := indexedProject(t)

	out, err := execute(t, "status", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Index is up to date")

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "extra.ts"), []byte("export const x = 1\n"), 0644))
	out, err = execute(t, "status", "--project", root)
	require.NoError(t, err)
	assert.Contains(t, out, "New (1):")
	assert.Contains(t, out, "src/extra.ts")
}

func TestQueryCommands_IndexMissing(t *testing.T) {
	root := writeProject(t)

	_, err := execute(t, "summary", "--project", root)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindIndexMissing))
	assert.NoFileExists(t, filepath.Join(root, ".atlas", "index.db"))
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n))
	}
}
