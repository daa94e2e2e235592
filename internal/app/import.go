package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rsheridan/drillbook/internal/domain"
	"github.com/rsheridan/drillbook/internal/parser"
	"github.com/rsheridan/drillbook/internal/storage"
)

// Import parses question blocks from the given markdown files and inserts
// the ones not already stored. Duplicates are detected by the normalized
// content fingerprint, both against the database and within the batch.
// Drafts failing validation are skipped and reported, not fatal.
func (a *App) Import(paths ...string) error {
	existing, err := a.db.ListQuestions(storage.NoLimit)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[parser.Fingerprint(q)] = true
	}

	var inserted, skipped, invalid int
	for _, path := range paths {
		slog.Info("importing file", "path", path)
		drafts, err := parser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, draft := range drafts {
			fp := parser.Fingerprint(draft)
			if seen[fp] {
				skipped++
				continue
			}
			id, err := a.db.CreateQuestion(draft, a.now())
			if err != nil {
				if errors.Is(err, domain.ErrValidation) {
					slog.Warn("skipping invalid question", "path", path, "book", draft.Book, "page", draft.Page, "error", err)
					invalid++
					continue
				}
				return err
			}
			seen[fp] = true
			inserted++
			slog.Info("imported question", "id", id, "book", draft.Book, "page", draft.Page)
		}
	}

	fmt.Fprintf(a.out, "Imported %d questions (%d duplicates skipped, %d invalid)\n", inserted, skipped, invalid)
	return nil
}
