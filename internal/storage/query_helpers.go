package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// symbolColumns is the column list scanned by scanSymbols.
var symbolColumns = []string{
	"id", "name", "file_path", "start_line", "end_line", "kind",
	"signature", "exported", "is_default", "parent_symbol_id",
}

var importColumns = []string{
	"id", "file_path", "imported_path", "imported_name", "alias",
	"is_external", "package_name", "line",
}

var exportColumns = []string{
	"id", "file_path", "exported_name", "local_name", "symbol_id",
	"is_reexport", "source_path", "line",
}

// scanSymbols scans rows selected with symbolColumns.
func scanSymbols(rows *sql.Rows) ([]Symbol, error) {
	var out []Symbol
	for rows.Next() {
		var s Symbol
		var signature sql.NullString
		var parent sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Name, &s.FilePath, &s.StartLine, &s.EndLine, &s.Kind,
			&signature, &s.Exported, &s.IsDefault, &parent); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		s.Signature = signature.String
		s.ParentSymbolID = int64Ptr(parent)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return out, nil
}

func scanImports(rows *sql.Rows) ([]Import, error) {
	var out []Import
	for rows.Next() {
		var imp Import
		var importedPath, alias, pkg sql.NullString
		if err := rows.Scan(&imp.ID, &imp.FilePath, &importedPath, &imp.ImportedName, &alias,
			&imp.IsExternal, &pkg, &imp.Line); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.ImportedPath = importedPath.String
		imp.Alias = alias.String
		imp.PackageName = pkg.String
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return out, nil
}

func scanExports(rows *sql.Rows) ([]Export, error) {
	var out []Export
	for rows.Next() {
		var e Export
		var local, source sql.NullString
		var symbolID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.FilePath, &e.ExportedName, &local, &symbolID,
			&e.IsReexport, &source, &e.Line); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.LocalName = local.String
		e.SymbolID = int64Ptr(symbolID)
		e.SourcePath = source.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return out, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// likeEscaper escapes LIKE wildcards; pair with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
