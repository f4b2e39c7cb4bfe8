package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/upstream"
)

// fakeSource records every query it serves and lets tests stall individual
// responses to exercise the request-ordering rules.
type fakeSource struct {
	mu      sync.Mutex
	queries []Query
	deletes []string

	listFn   func(call int, q Query) (upstream.Page[models.Tag], error)
	deleteFn func(id string) (string, error)
}

func (f *fakeSource) List(_ context.Context, q Query) (upstream.Page[models.Tag], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	call := len(f.queries)
	f.mu.Unlock()

	if f.listFn != nil {
		return f.listFn(call, q)
	}
	return upstream.Page[models.Tag]{}, nil
}

func (f *fakeSource) Delete(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	f.mu.Unlock()

	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return "", nil
}

func (f *fakeSource) queryLog() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Query, len(f.queries))
	copy(out, f.queries)
	return out
}

func tagRows(n int) []models.Tag {
	out := make([]models.Tag, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Tag{ID: fmt.Sprintf("t%d", i), Name: fmt.Sprintf("Tag %d", i)})
	}
	return out
}

func newTagController(src Source[models.Tag], notices notice.Notifier, opts ...func(*Config[models.Tag])) *Controller[models.Tag] {
	cfg := Config[models.Tag]{
		Log:      slog.Default(),
		Source:   src,
		Notices:  notices,
		Resource: "tag",
		Columns: []ColumnSpec[models.Tag]{
			{Title: "Name", Key: "name", Sortable: true, Render: func(t models.Tag) string { return t.Name }},
			{Title: "Value", Key: "value", Sortable: true, Render: func(t models.Tag) string { return t.Value }},
			{Title: "Actions"},
		},
		ID:             func(t models.Tag) string { return t.ID },
		Label:          func(t models.Tag) string { return t.Name },
		PageSize:       5,
		SortKey:        "createdAt",
		SortDirection:  OrderDesc,
		SearchDebounce: 25 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewController(cfg)
}

func TestRangeLabel(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		count    int
		loading  bool
		expected string
	}{
		{name: "first page of 12", page: 0, pageSize: 5, count: 12, expected: "Showing 1-5 from 12"},
		{name: "last short page", page: 2, pageSize: 5, count: 12, expected: "Showing 11-12 from 12"},
		{name: "exact fit", page: 1, pageSize: 5, count: 10, expected: "Showing 6-10 from 10"},
		{name: "single row", page: 0, pageSize: 10, count: 1, expected: "Showing 1-1 from 1"},
		{name: "zero count", page: 0, pageSize: 10, count: 0, expected: "No records"},
		{name: "zero count while loading", page: 0, pageSize: 10, count: 0, loading: true, expected: "Please wait..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RangeLabel(tt.page, tt.pageSize, tt.count, tt.loading))
		})
	}
}

func TestRangeLabel_BoundsProperty(t *testing.T) {
	for page := 0; page < 8; page++ {
		for _, pageSize := range []int{1, 3, 5, 10} {
			for _, count := range []int{1, 4, 7, 23, 100} {
				from := page*pageSize + 1
				to := (page + 1) * pageSize
				if to > count {
					to = count
				}
				if from > to {
					from = to
				}
				assert.GreaterOrEqual(t, from, 1)
				assert.LessOrEqual(t, from, to)
				assert.LessOrEqual(t, to, count)
				assert.Equal(t, fmt.Sprintf("Showing %d-%d from %d", from, to, count),
					RangeLabel(page, pageSize, count, false))
			}
		}
	}
}

func TestSortToggle(t *testing.T) {
	src := &fakeSource{}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	ctx := context.Background()
	c.Load(ctx)

	// different column always starts ascending
	c.ToggleSort(ctx, "name")
	assert.Equal(t, Query{Page: 0, PageSize: 5, SortKey: "name", SortDirection: OrderAsc}, c.Snapshot().Query)

	// same column flips
	c.ToggleSort(ctx, "name")
	assert.Equal(t, OrderDesc, c.Snapshot().Query.SortDirection)
	c.ToggleSort(ctx, "name")
	assert.Equal(t, OrderAsc, c.Snapshot().Query.SortDirection)

	// switching away resets to ascending
	c.ToggleSort(ctx, "value")
	q := c.Snapshot().Query
	assert.Equal(t, "value", q.SortKey)
	assert.Equal(t, OrderAsc, q.SortDirection)
}

func TestSortToggle_ResetsPage(t *testing.T) {
	src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
		return upstream.Page[models.Tag]{Items: tagRows(5), Count: 50}, nil
	}}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	ctx := context.Background()
	c.Load(ctx)
	c.SetPage(ctx, 3)
	require.Equal(t, 3, c.Snapshot().Query.Page)

	c.ToggleSort(ctx, "name")
	assert.Equal(t, 0, c.Snapshot().Query.Page)
}

func TestSearch_OnlyFinalTermRequested(t *testing.T) {
	src := &fakeSource{}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	c.Load(context.Background())
	before := len(src.queryLog())

	for _, term := range []string{"m", "mo", "mod", "modern"} {
		c.SetSearch(term)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	queries := src.queryLog()
	require.Len(t, queries, before+1, "intermediate terms must not trigger requests")
	last := queries[len(queries)-1]
	assert.Equal(t, "modern", last.SearchTerm)
	assert.Equal(t, 0, last.Page, "settled search resets to first page")
}

func TestSearch_SameSettledTermDoesNotReload(t *testing.T) {
	src := &fakeSource{}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	c.Load(context.Background())
	c.SetSearch("modern")
	time.Sleep(60 * time.Millisecond)
	n := len(src.queryLog())

	// same effective value settling again is a no-op
	c.SetSearch("modern")
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, src.queryLog(), n)
}

func TestDelete_CancelLeavesStateUntouched(t *testing.T) {
	rows := tagRows(3)
	src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
		return upstream.Page[models.Tag]{Items: rows, Count: 3}, nil
	}}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	c.Load(context.Background())
	loads := len(src.queryLog())

	require.True(t, c.OpenDeleteByID("t1"))
	st := c.Snapshot()
	require.True(t, st.Confirmation.IsOpen)
	require.NotNil(t, st.Confirmation.Target)
	assert.Equal(t, "t1", st.Confirmation.Target.ID)

	c.CancelDelete()
	st = c.Snapshot()
	assert.False(t, st.Confirmation.IsOpen)
	assert.Len(t, src.deletes, 0)
	assert.Len(t, src.queryLog(), loads, "cancel must not reload")
	assert.Equal(t, 3, st.TotalCount)
}

func TestDelete_ConfirmReloadsOnSuccessAndFailure(t *testing.T) {
	tests := []struct {
		name       string
		deleteFn   func(id string) (string, error)
		wantKind   notice.Kind
		wantNotice string
	}{
		{
			name:       "success with server message",
			deleteFn:   func(string) (string, error) { return "Tag deleted successfully.", nil },
			wantKind:   notice.KindSuccess,
			wantNotice: "Tag deleted successfully.",
		},
		{
			name:       "success without message falls back",
			deleteFn:   func(string) (string, error) { return "", nil },
			wantKind:   notice.KindSuccess,
			wantNotice: "Tag deleted successfully.",
		},
		{
			name: "failure surfaces server message",
			deleteFn: func(string) (string, error) {
				return "", &upstream.APIError{Status: http.StatusConflict, Message: "Tag is in use"}
			},
			wantKind:   notice.KindError,
			wantNotice: "Tag is in use",
		},
		{
			name: "failure without message uses fallback",
			deleteFn: func(string) (string, error) {
				return "", &upstream.TransportError{Err: errors.New("dial tcp: refused")}
			},
			wantKind:   notice.KindError,
			wantNotice: "Failed to delete tag. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
					return upstream.Page[models.Tag]{Items: tagRows(2), Count: 2}, nil
				},
				deleteFn: tt.deleteFn,
			}
			center := notice.NewCenter()
			c := newTagController(src, center)
			defer c.Close()

			c.Load(context.Background())
			loads := len(src.queryLog())

			require.True(t, c.OpenDeleteByID("t0"))
			c.ConfirmDelete(context.Background())

			st := c.Snapshot()
			assert.False(t, st.Confirmation.IsOpen, "confirmation closes after the action settles")
			assert.Equal(t, []string{"t0"}, src.deletes)
			assert.Len(t, src.queryLog(), loads+1, "exactly one reload regardless of outcome")

			notices := center.Drain()
			require.Len(t, notices, 1)
			assert.Equal(t, tt.wantKind, notices[0].Kind)
			assert.Equal(t, tt.wantNotice, notices[0].Message)
		})
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{}
	src.listFn = func(call int, q Query) (upstream.Page[models.Tag], error) {
		if call == 1 {
			// first request resolves only after the second one already has
			<-release
			return upstream.Page[models.Tag]{Items: []models.Tag{{ID: "stale"}}, Count: 99}, nil
		}
		return upstream.Page[models.Tag]{Items: []models.Tag{{ID: "fresh"}}, Count: 1}, nil
	}

	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Load(context.Background())
	}()

	// wait for the first request to be in flight, then issue a newer one
	require.Eventually(t, func() bool { return len(src.queryLog()) == 1 }, time.Second, time.Millisecond)
	c.SetPage(context.Background(), 1)

	close(release)
	wg.Wait()

	st := c.Snapshot()
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "fresh", st.Rows[0].ID, "older response must not clobber the newer one")
	assert.Equal(t, 1, st.TotalCount)
}

func TestSnapshot_EmptyVersusLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
		close(started)
		<-release
		return upstream.Page[models.Tag]{}, nil
	}}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	done := make(chan struct{})
	go func() {
		c.Load(context.Background())
		close(done)
	}()

	<-started
	st := c.Snapshot()
	assert.True(t, st.Loading)
	assert.False(t, st.Empty, "loading suppresses the no-data state")
	assert.Equal(t, "Please wait...", st.RangeLabel)

	close(release)
	<-done

	st = c.Snapshot()
	assert.False(t, st.Loading)
	assert.True(t, st.Empty)
	assert.Equal(t, "No records", st.RangeLabel)
}

func TestLoadFailure_NoticeAndUnauthorizedHook(t *testing.T) {
	t.Run("generic failure goes to the notice channel", func(t *testing.T) {
		src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
			return upstream.Page[models.Tag]{}, &upstream.APIError{Status: 500, Message: "boom"}
		}}
		center := notice.NewCenter()
		c := newTagController(src, center)
		defer c.Close()

		c.Load(context.Background())

		notices := center.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, notice.KindError, notices[0].Kind)
		assert.Equal(t, "boom", notices[0].Message)
	})

	t.Run("401 triggers the session-expiry hook instead", func(t *testing.T) {
		src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
			return upstream.Page[models.Tag]{}, &upstream.APIError{Status: http.StatusUnauthorized}
		}}
		center := notice.NewCenter()
		expired := false
		c := newTagController(src, center, func(cfg *Config[models.Tag]) {
			cfg.OnUnauthorized = func() { expired = true }
		})
		defer c.Close()

		c.Load(context.Background())

		assert.True(t, expired)
		assert.Empty(t, center.Drain())
	})
}

func TestSnapshot_CellsFollowColumnSpecs(t *testing.T) {
	src := &fakeSource{listFn: func(_ int, _ Query) (upstream.Page[models.Tag], error) {
		return upstream.Page[models.Tag]{
			Items: []models.Tag{{ID: "t1", Name: "Modern", Value: "modern"}},
			Count: 1,
		}, nil
	}}
	c := newTagController(src, notice.NewCenter())
	defer c.Close()

	c.Load(context.Background())
	st := c.Snapshot()

	require.Len(t, st.Headers, 3)
	assert.True(t, st.Headers[0].Sortable)
	assert.False(t, st.Headers[2].Sortable)

	require.Len(t, st.Cells, 1)
	assert.Equal(t, []string{"Modern", "modern", ""}, st.Cells[0])
}
