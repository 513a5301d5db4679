package catalog

import (
	"context"

	"realty-catalog/internal/models"
	"realty-catalog/internal/search"
)

// SearchFuture is a deferred search result. It completes exactly once;
// abandoning it has no effect on catalog state since queries are read-only.
type SearchFuture struct {
	done       chan struct{}
	properties []models.Property
	err        error
}

// Done is closed when the result is available.
func (f *SearchFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is cancelled. On
// cancellation the in-flight result is simply discarded.
func (f *SearchFuture) Wait(ctx context.Context) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.properties, f.err
	}
}

// SearchAsync runs the query against a snapshot taken when the future begins
// executing and completes the future with the ordered result.
func (s *Service) SearchAsync(ctx context.Context, f search.Filters, sortBy search.SortKey) *SearchFuture {
	future := &SearchFuture{done: make(chan struct{})}
	go func() {
		defer close(future.done)
		if err := ctx.Err(); err != nil {
			future.err = err
			return
		}
		future.properties, future.err = search.Query(s.store.Snapshot(), f, sortBy)
	}()
	return future
}
