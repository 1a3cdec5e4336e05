package indexer

import (
	"context"
	"fmt"

	"github.com/mvp-joe/project-atlas/internal/extractor"
	"github.com/mvp-joe/project-atlas/internal/storage"
)

// writeFile replaces a file's rows with r inside tx. Local ordinals are
// mapped to persisted ids through a table filled as symbols are inserted,
// so a reference must point at an earlier symbol.
func writeFile(ctx context.Context, tx *storage.Tx, r extracted) error {
	if err := tx.DeleteFileRows(ctx, r.path); err != nil {
		return err
	}

	err := tx.InsertFile(ctx, &storage.File{
		Path:             r.path,
		Language:         r.language,
		ModifiedAt:       r.mtime,
		LineCount:        r.lines,
		HasDefaultExport: r.res.HasDefaultExport,
	})
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(r.res.Symbols))
	for i, s := range r.res.Symbols {
		row := storage.Symbol{
			Name:      s.Name,
			FilePath:  r.path,
			StartLine: s.StartLine,
			EndLine:   s.EndLine,
			Kind:      string(s.Kind),
			Signature: s.Signature,
			Exported:  s.Exported,
			IsDefault: s.IsDefault,
		}
		if s.Parent != extractor.NoOrdinal {
			if s.Parent < 0 || s.Parent >= i {
				return fmt.Errorf("%w: symbol %d (%s) has parent %d", ErrInvalidOrdinal, i, s.Name, s.Parent)
			}
			pid := ids[s.Parent]
			row.ParentSymbolID = &pid
		}

		id, err := tx.InsertSymbol(ctx, &row)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	for i, imp := range r.res.Imports {
		row := storage.Import{
			FilePath:     r.path,
			ImportedName: imp.ImportedName,
			Alias:        imp.Alias,
			IsExternal:   imp.IsExternal,
			PackageName:  imp.PackageName,
			Line:         imp.Line,
		}
		if !imp.IsExternal && i < len(r.targets) {
			row.ImportedPath = r.targets[i]
		}
		if err := tx.InsertImport(ctx, &row); err != nil {
			return err
		}
	}

	for _, e := range r.res.Exports {
		row := storage.Export{
			FilePath:     r.path,
			ExportedName: e.ExportedName,
			LocalName:    e.LocalName,
			IsReexport:   e.IsReexport,
			SourcePath:   e.Source,
			Line:         e.Line,
		}
		if e.Symbol != extractor.NoOrdinal {
			if e.Symbol < 0 || e.Symbol >= len(ids) {
				return fmt.Errorf("%w: export %s references symbol %d", ErrInvalidOrdinal, e.ExportedName, e.Symbol)
			}
			sid := ids[e.Symbol]
			row.SymbolID = &sid
		}
		if err := tx.InsertExport(ctx, &row); err != nil {
			return err
		}
	}
	return nil
}
