package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domalab/go-unifi-insights/internal/testutil"
)

// pagedFetcher simulates a server-side listing of total items, returning at
// most limit items per page and recording the offsets it was asked for.
func pagedFetcher(total int, offsets *[]int) PageFetcher[int] {
	return func(_ context.Context, offset, limit int) (*Page[int], error) {
		*offsets = append(*offsets, offset)

		var data []int
		for i := offset; i < total && i < offset+limit; i++ {
			data = append(data, i)
		}

		return &Page[int]{
			Offset:     offset,
			Limit:      limit,
			Count:      len(data),
			TotalCount: total,
			Data:       data,
		}, nil
	}
}

func TestPaginatorWalksAllPages(t *testing.T) {
	t.Parallel()

	var offsets []int
	pager := NewPaginator(pagedFetcher(60, &offsets), 25)

	items, err := pager.All(context.Background())
	require.NoError(t, err)

	// Three pages: 25 + 25 + 10.
	assert.Len(t, items, 60)
	assert.Equal(t, []int{0, 25, 50}, offsets)
	assert.False(t, pager.HasMore())

	_, err = pager.NextPage(context.Background())
	assert.ErrorIs(t, err, ErrNoMorePages)
}

func TestPaginatorAdvancesByObservedCount(t *testing.T) {
	t.Parallel()

	// Server caps pages at 10 items even though 25 were requested. A naive
	// offset += limit stride would skip items 10-24 of every window.
	var offsets []int
	fetch := func(_ context.Context, offset, _ int) (*Page[int], error) {
		return pagedFetcher(30, &offsets)(context.Background(), offset, 10)
	}

	pager := NewPaginator(fetch, 25)

	items, err := pager.All(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 30)
	assert.Equal(t, []int{0, 10, 20}, offsets)
}

func TestPaginatorEmptyPageIsTerminal(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(_ context.Context, offset, limit int) (*Page[int], error) {
		calls++
		// totalCount claims more items exist, but the page is empty.
		return &Page[int]{Offset: offset, Limit: limit, Count: 0, TotalCount: 100, Data: nil}, nil
	}

	pager := NewPaginator(fetch, 25)

	items, err := pager.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, calls)
	assert.False(t, pager.HasMore())
}

func TestPaginatorTotalCountShrinks(t *testing.T) {
	t.Parallel()

	// Items are deleted server-side between pages: totalCount drops from 50
	// to 30 and the second page comes back short.
	pages := []*Page[int]{
		{Offset: 0, Limit: 25, Count: 25, TotalCount: 50, Data: make([]int, 25)},
		{Offset: 25, Limit: 25, Count: 5, TotalCount: 30, Data: make([]int, 5)},
	}

	calls := 0
	fetch := func(_ context.Context, _, _ int) (*Page[int], error) {
		page := pages[calls]
		calls++
		return page, nil
	}

	pager := NewPaginator(fetch, 25)

	items, err := pager.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 30)
	assert.Equal(t, 2, calls)
}

func TestPaginatorDefaultLimit(t *testing.T) {
	t.Parallel()

	var gotLimit int
	fetch := func(_ context.Context, offset, limit int) (*Page[int], error) {
		gotLimit = limit
		return &Page[int]{Offset: offset, Limit: limit, Count: 0, TotalCount: 0}, nil
	}

	_, err := NewPaginator(fetch, 0).NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, gotLimit)
}

func TestPaginatorRetriesSameOffsetAfterError(t *testing.T) {
	t.Parallel()

	var offsets []int
	failed := false
	fetch := func(ctx context.Context, offset, limit int) (*Page[int], error) {
		if offset == 25 && !failed {
			failed = true
			return nil, errors.New("transient failure")
		}
		return pagedFetcher(30, &offsets)(ctx, offset, limit)
	}

	pager := NewPaginator(fetch, 25)

	page, err := pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, page.Count)

	// Failed fetch leaves the cursor in place.
	_, err = pager.NextPage(context.Background())
	require.Error(t, err)
	assert.True(t, pager.HasMore())

	page, err = pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, page.Offset)
	assert.Equal(t, 5, page.Count)
	assert.False(t, pager.HasMore())
}

func TestPaginatorCountMismatch(t *testing.T) {
	t.Parallel()

	fetch := func(_ context.Context, offset, limit int) (*Page[int], error) {
		return &Page[int]{Offset: offset, Limit: limit, Count: 10, TotalCount: 10, Data: []int{1, 2}}, nil
	}

	_, err := NewPaginator(fetch, 25).NextPage(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestPaginatorCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(ctx context.Context, offset, limit int) (*Page[int], error) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "fetch canceled")
		}
		return &Page[int]{Offset: offset, Limit: limit, Count: 0, TotalCount: 0}, nil
	}

	_, err := NewPaginator(fetch, 25).NextPage(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestSitesPaginatorEndToEnd walks a three-page listing through the full
// client stack: 25 + 25 + 10 sites with totalCount 60.
func TestSitesPaginatorEndToEnd(t *testing.T) {
	t.Parallel()

	const total = 60

	requests := 0
	server := testutil.NewMockServerWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		requests++

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		count := min(limit, total-offset)
		sites := make([]Site, 0, count)
		for i := 0; i < count; i++ {
			sites = append(sites, Site{
				ID:   fmt.Sprintf("site-%03d", offset+i),
				Name: fmt.Sprintf("Site %d", offset+i),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"offset":%d,"limit":%d,"count":%d,"totalCount":%d,"data":%s}`,
			offset, limit, count, total, mustJSON(t, sites))
	})
	defer server.Close()

	client := fastClient(t, server.URL, 1)

	sites, err := client.SitesPaginator(25).All(context.Background())
	require.NoError(t, err)

	assert.Len(t, sites, total)
	assert.Equal(t, 3, requests)
	assert.Equal(t, "site-000", sites[0].ID)
	assert.Equal(t, "site-059", sites[total-1].ID)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return string(data)
}
