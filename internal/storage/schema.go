package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever a table definition changes. A store with
// any other version is dropped and recreated on open.
const SchemaVersion = 3

// tableNames lists every table in creation (dependency) order.
var tableNames = []string{"schema_version", "files", "symbols", "imports", "exports"}

// EnsureSchema makes the store match SchemaVersion. It is idempotent:
// a current store is left untouched, a missing schema is created and a
// mismatched one is dropped and recreated.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	version, err := GetSchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	switch version {
	case SchemaVersion:
		return nil
	case 0:
		return CreateSchema(ctx, db)
	default:
		if err := DropSchema(ctx, db); err != nil {
			return err
		}
		return CreateSchema(ctx, db)
	}
}

// CreateSchema creates all tables and indexes and records SchemaVersion.
// Uses a transaction so schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"schema_version", createSchemaVersionTable},
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"imports", createImportsTable},
		{"exports", createExportsTable},
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (id, version) VALUES (1, ?)", SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// DropSchema drops every table, children first.
func DropSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin drop transaction: %w", err)
	}
	defer tx.Rollback()

	for i := len(tableNames) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+tableNames[i]); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", tableNames[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit drop transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the recorded schema version, or 0 when the store
// has no schema yet. A store with tables but no version row reports -1 so
// that EnsureSchema rebuilds it.
func GetSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var tableExists int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableExists)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version existence: %w", err)
	}
	if tableExists == 0 {
		var anyTable int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('files','symbols','imports','exports')").Scan(&anyTable)
		if err != nil {
			return 0, fmt.Errorf("failed to inspect tables: %w", err)
		}
		if anyTable > 0 {
			return -1, nil
		}
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, "SELECT version FROM schema_version WHERE id = 1").Scan(&version)
	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createSchemaVersionTable = `
CREATE TABLE schema_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),       -- Single-row table
    version INTEGER NOT NULL
)
`

const createFilesTable = `
CREATE TABLE files (
    path TEXT PRIMARY KEY,                       -- Project-relative, forward slashes
    language TEXT NOT NULL,                      -- typescript, javascript
    modified_at INTEGER NOT NULL,                -- Unix milliseconds at last index
    line_count INTEGER NOT NULL DEFAULT 0,
    has_default_export INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL                     -- RFC 3339, informational
)
`

const createSymbolsTable = `
CREATE TABLE symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('function','class','variable','type','interface','enum','method','property')),
    signature TEXT,
    exported INTEGER NOT NULL DEFAULT 0,
    is_default INTEGER NOT NULL DEFAULT 0,
    parent_symbol_id INTEGER,                    -- Enclosing class for methods/properties
    FOREIGN KEY (file_path) REFERENCES files(path) ON DELETE CASCADE,
    FOREIGN KEY (parent_symbol_id) REFERENCES symbols(id) ON DELETE CASCADE,
    CHECK (start_line >= 1 AND end_line >= start_line),
    CHECK (is_default = 0 OR exported = 1),
    CHECK (parent_symbol_id IS NULL OR kind IN ('method','property'))
)
`

const createImportsTable = `
CREATE TABLE imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,                     -- Importing file
    imported_path TEXT,                          -- Resolved project file, NULL if external/unresolved
    imported_name TEXT NOT NULL,                 -- 'default', '*', or binding name
    alias TEXT,
    is_external INTEGER NOT NULL DEFAULT 0,
    package_name TEXT,                           -- External package, NULL for internal imports
    line INTEGER NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(path) ON DELETE CASCADE,
    CHECK (is_external = 0 OR imported_path IS NULL)
)
`

const createExportsTable = `
CREATE TABLE exports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    exported_name TEXT NOT NULL,                 -- 'default', '*', or binding name
    local_name TEXT,                             -- Only when different from exported_name
    symbol_id INTEGER,
    is_reexport INTEGER NOT NULL DEFAULT 0,
    source_path TEXT,                            -- Raw specifier of a re-export
    line INTEGER NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(path) ON DELETE CASCADE,
    FOREIGN KEY (symbol_id) REFERENCES symbols(id) ON DELETE SET NULL,
    CHECK (is_reexport = 0 OR source_path IS NOT NULL)
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		// Symbol lookups
		"CREATE INDEX idx_symbols_name ON symbols(name)",
		"CREATE INDEX idx_symbols_name_nocase ON symbols(name COLLATE NOCASE)",
		"CREATE INDEX idx_symbols_kind ON symbols(kind)",
		"CREATE INDEX idx_symbols_file ON symbols(file_path)",
		"CREATE INDEX idx_symbols_exported ON symbols(exported)",
		"CREATE INDEX idx_symbols_parent ON symbols(parent_symbol_id)",

		// Import graph
		"CREATE INDEX idx_imports_file ON imports(file_path)",
		"CREATE INDEX idx_imports_target ON imports(imported_path)",
		"CREATE INDEX idx_imports_package ON imports(package_name)",

		// Export surface
		"CREATE INDEX idx_exports_file ON exports(file_path)",
		"CREATE INDEX idx_exports_name ON exports(exported_name)",
		"CREATE INDEX idx_exports_symbol ON exports(symbol_id)",

		// Files
		"CREATE INDEX idx_files_language ON files(language)",
	}
}
