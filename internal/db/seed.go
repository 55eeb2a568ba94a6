package db

import (
	"context"
	"fmt"
	"slices"
)

// SeedStandardExtras inserts the given extras for every category that has no
// extra yet, inside a single transaction. It returns the number of inserted rows.
func SeedStandardExtras(ctx context.Context, makeTx MakeTx, extras []InsertExtraParams) (int, error) {
	tx, discard, commit, err := makeTx()
	if err != nil {
		return 0, fmt.Errorf("seed standard extras: make tx: %w", err)
	}
	defer discard()

	existing, err := tx.ListExtraCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed standard extras: %w", err)
	}

	var missing []InsertExtraParams
	for _, e := range extras {
		if slices.Contains(existing, e.Category) {
			continue
		}
		missing = append(missing, e)
		existing = append(existing, e.Category)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	_, err = tx.InsertExtras(ctx, missing)
	if err != nil {
		return 0, fmt.Errorf("seed standard extras: %w", err)
	}
	err = commit()
	if err != nil {
		return 0, fmt.Errorf("seed standard extras: commit: %w", err)
	}
	return len(missing), nil
}
