package insights

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// DefaultPageSize is the page size used when a paginator is constructed
// without an explicit limit.
const DefaultPageSize = 25

// ErrNoMorePages is returned by NextPage once the listing is exhausted.
var ErrNoMorePages = errors.New("no more pages")

// PageFetcher fetches a single page of a listing at the given offset.
type PageFetcher[T any] func(ctx context.Context, offset, limit int) (*Page[T], error)

// Paginator drives offset/limit iteration over a list endpoint, producing
// pages lazily and strictly in increasing offset order. It is single-pass
// and forward-only; construct a new Paginator to restart from offset 0.
//
// The offset advances by the observed page count, not by the requested
// limit, so a server returning fewer items than requested neither skips nor
// repeats items. Listings are eventually consistent: totalCount may change
// between fetches and no cross-page snapshot is attempted.
//
// A Paginator is not safe for concurrent use.
type Paginator[T any] struct {
	fetch  PageFetcher[T]
	limit  int
	offset int
	done   bool
}

// NewPaginator creates a paginator over fetch starting at offset 0.
// A non-positive limit falls back to DefaultPageSize.
func NewPaginator[T any](fetch PageFetcher[T], limit int) *Paginator[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	return &Paginator[T]{
		fetch: fetch,
		limit: limit,
	}
}

// HasMore reports whether another page may be available.
func (p *Paginator[T]) HasMore() bool {
	return !p.done
}

// NextPage fetches the next page. It returns ErrNoMorePages once the
// listing is exhausted: the previous page was empty or the offset reached
// the last observed totalCount (an empty page is terminal, never retried).
//
// On a fetch error the paginator state is unchanged, so the same offset is
// requested again on the next call.
func (p *Paginator[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if p.done {
		return nil, ErrNoMorePages
	}

	page, err := p.fetch(ctx, p.offset, p.limit)
	if err != nil {
		return nil, err
	}

	if page.Count != len(page.Data) {
		return nil, newDecodeError(nil, "",
			fmt.Sprintf("page count %d does not match data length %d", page.Count, len(page.Data)))
	}

	p.offset += page.Count
	if page.Count == 0 || p.offset >= page.TotalCount {
		p.done = true
	}

	return page, nil
}

// All drains the remaining pages and returns the concatenated items.
// Items from pages already consumed via NextPage are not included.
func (p *Paginator[T]) All(ctx context.Context) ([]T, error) {
	var items []T

	for p.HasMore() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Data...)
	}

	return items, nil
}
