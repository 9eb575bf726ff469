package report

import (
	"context"
	"errors"

	"github.com/ayusman/drishti/internal/analysis"
)

// Flusher implements analysis.Flusher: on every question flush it re-encodes
// the aggregate into the external vocabulary, records it locally, and posts
// it to the persistence API. Either sink may be nil; failures in one do not
// stop the other.
type Flusher struct {
	store    *Store
	reporter Reporter
	vocab    Vocabulary
}

// NewFlusher combines the local store and the API reporter.
func NewFlusher(store *Store, reporter Reporter, vocab Vocabulary) *Flusher {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Flusher{store: store, reporter: reporter, vocab: vocab}
}

// Flush persists one per-question aggregate.
func (f *Flusher) Flush(sessionID string, agg analysis.Aggregate) error {
	result := NewResult(sessionID, agg, f.vocab)

	var errs []error
	if f.store != nil {
		if err := f.store.Results().Save(result); err != nil {
			errs = append(errs, err)
		}
	}
	if f.reporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if err := f.reporter.Report(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
