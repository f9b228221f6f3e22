// Package extractor defines the candidate extraction contract. The real
// extractor is an external collaborator; the pipeline only consumes its
// output contract and never blocks on it past a configured timeout.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/khorochbd/khoroch/internal/common"
	"github.com/khorochbd/khoroch/internal/model"
)

// Extractor turns raw text into zero or more transaction candidates plus a
// scalar confidence per candidate.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.Candidate, error)
}

// WithTimeout wraps an extractor so a slow or hung implementation degrades
// to RAW_ONLY instead of stalling a worker. The wrapped call is never
// retried synchronously.
type WithTimeout struct {
	inner   Extractor
	timeout time.Duration
}

// NewWithTimeout wraps inner with a per-call deadline.
func NewWithTimeout(inner Extractor, timeout time.Duration) *WithTimeout {
	return &WithTimeout{inner: inner, timeout: timeout}
}

// Extract runs the inner extractor under a deadline. A deadline expiry is
// reported as ErrExtractionTimeout so callers can tell fail-safe degradation
// apart from a real extractor fault.
func (w *WithTimeout) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	type result struct {
		candidates []model.Candidate
		err        error
	}
	ch := make(chan result, 1)
	go func() {
		cands, err := w.inner.Extract(ctx, text)
		ch <- result{cands, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", common.ErrExtractionTimeout, w.timeout)
		}
		return nil, ctx.Err()
	case r := <-ch:
		return r.candidates, r.err
	}
}
