package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestStore creates a fully configured file-backed store in t.TempDir().
//
// A file is used instead of :memory: because every pooled connection to an
// in-memory database sees its own empty database.
//
// The store includes:
//   - WAL journal and foreign key constraints enabled
//   - Full schema created
//   - Automatic cleanup registered with t.Cleanup()
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    store := storage.NewTestStore(t)
//	    // ... test code ...
//	    // No need to close - t.Cleanup() handles it
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), ".atlas", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// SeedFile writes a file and its rows in one transaction, for tests that
// need index content without running the extractor. Symbol parents are
// given as indices into syms; exports reference symbols the same way
// through symbolIdx (-1 for none).
func SeedFile(t testing.TB, store *Store, f File, syms []Symbol, parents []int, imps []Import, exps []Export, symbolIdx []int) []int64 {
	t.Helper()
	ctx := context.Background()

	var ids []int64
	err := store.WithTx(ctx, func(tx *Tx) error {
		if err := tx.DeleteFileRows(ctx, f.Path); err != nil {
			return err
		}
		if err := tx.InsertFile(ctx, &f); err != nil {
			return err
		}
		for i := range syms {
			syms[i].FilePath = f.Path
			if parents != nil && parents[i] >= 0 {
				pid := ids[parents[i]]
				syms[i].ParentSymbolID = &pid
			}
			id, err := tx.InsertSymbol(ctx, &syms[i])
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		for i := range imps {
			imps[i].FilePath = f.Path
			if err := tx.InsertImport(ctx, &imps[i]); err != nil {
				return err
			}
		}
		for i := range exps {
			exps[i].FilePath = f.Path
			if symbolIdx != nil && symbolIdx[i] >= 0 {
				sid := ids[symbolIdx[i]]
				exps[i].SymbolID = &sid
			}
			if err := tx.InsertExport(ctx, &exps[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}
