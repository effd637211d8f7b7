// Package reconcile merges externally sourced records into the local store keyed by external id
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/models"
)

// Binding adapts one source item type S onto one local record type R
type Binding[S, R any] struct {
	Source string

	// Key extracts the external id; an empty key marks the item malformed
	Key func(S) string
	// Find returns models.ErrNotFound when no local record carries the key
	Find func(ctx context.Context, key string) (*R, error)
	// Build constructs a new record stamped with the key
	Build  func(item S, key string) (*R, error)
	Create func(ctx context.Context, rec *R) error

	// Apply copies the fields the source is authoritative for onto an existing record
	// and reports whether anything changed. A nil Apply makes the binding create-only.
	Apply  func(rec *R, item S) (bool, error)
	Update func(ctx context.Context, rec *R) error
}

// malformed is implemented by source items that carry their own decode failure
type malformed interface {
	Malformed() error
}

// Upsert runs one reconciliation pass over a source snapshot.
// Malformed items are skipped; a store failure aborts the pass.
func Upsert[S, R any](ctx context.Context, b Binding[S, R], items []S, log *logrus.Logger) (models.SourceStatus, error) {
	status := models.SourceStatus{Source: b.Source}

	for _, item := range items {
		status.Seen++

		key := b.Key(item)
		if key == "" {
			status.Skipped++
			log.Warnf("%s: item without external id skipped", b.Source)
			continue
		}
		if m, ok := any(item).(malformed); ok && m.Malformed() != nil {
			status.Skipped++
			log.Warnf("%s: item %s skipped: %v", b.Source, key, m.Malformed())
			continue
		}

		existing, err := b.Find(ctx, key)
		switch {
		case errors.Is(err, models.ErrNotFound):
			rec, err := b.Build(item, key)
			if err != nil {
				status.Skipped++
				log.Warnf("%s: item %s skipped: %v", b.Source, key, err)
				continue
			}
			if err := b.Create(ctx, rec); err != nil {
				if errors.Is(err, models.ErrConflict) {
					// created by a concurrent pass
					status.Unchanged++
					continue
				}
				return status, fmt.Errorf("%s: create %s: %w", b.Source, key, err)
			}
			status.Created++

		case err != nil:
			return status, fmt.Errorf("%s: find %s: %w", b.Source, key, err)

		default:
			if b.Apply == nil {
				status.Unchanged++
				continue
			}
			changed, err := b.Apply(existing, item)
			if err != nil {
				status.Skipped++
				log.Warnf("%s: item %s skipped: %v", b.Source, key, err)
				continue
			}
			if !changed {
				status.Unchanged++
				continue
			}
			if err := b.Update(ctx, existing); err != nil {
				return status, fmt.Errorf("%s: update %s: %w", b.Source, key, err)
			}
			status.Updated++
		}
	}

	status.Fresh = true
	return status, nil
}
