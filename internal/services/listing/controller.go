// Package listing owns the sortable/searchable/paginated table state for one
// resource type: sort key and direction, zero-based page plus page size and
// total count, a debounced search term, and the delete-confirmation flow.
// Rows are always re-derived from the server, never spliced locally.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode"

	"catalog_admin/internal/lib/debounce"
	"catalog_admin/internal/lib/logger/sl"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/upstream"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query is the controller-owned list state. Page resets to 0 whenever the
// sort key, sort direction or the effective (debounced) search term changes.
type Query struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	SortKey       string `json:"sortKey"`
	SortDirection string `json:"sortDirection"`
	SearchTerm    string `json:"searchTerm"`
}

// Source is the read/delete surface a controller drives. Delete returns the
// server-supplied message when there is one.
type Source[T any] interface {
	List(ctx context.Context, q Query) (upstream.Page[T], error)
	Delete(ctx context.Context, id string) (string, error)
}

// Confirmation is the transient delete-confirmation state.
type Confirmation[T any] struct {
	IsOpen bool `json:"isOpen"`
	Target *T   `json:"target,omitempty"`
}

// Config assembles a controller. Resource is the singular display name used
// in fallback messages ("product" -> "Failed to delete product. ...").
type Config[T any] struct {
	Log      *slog.Logger
	Source   Source[T]
	Notices  notice.Notifier
	Resource string
	Columns  []ColumnSpec[T]
	ID       func(T) string
	Label    func(T) string

	PageSize       int
	SortKey        string
	SortDirection  string
	SearchDebounce time.Duration

	// OnUnauthorized fires when the upstream rejects the session token.
	OnUnauthorized func()
}

type Controller[T any] struct {
	log     *slog.Logger
	source  Source[T]
	notices notice.Notifier
	cfg     Config[T]
	deb     *debounce.Debouncer

	mu         sync.Mutex
	query      Query
	rows       []T
	totalCount int
	inflight   int
	issued     uint64
	applied    uint64
	rawSearch  string
	confirm    Confirmation[T]
	closed     bool
}

func NewController[T any](cfg Config[T]) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.SortKey == "" {
		cfg.SortKey = "createdAt"
	}
	if cfg.SortDirection == "" {
		cfg.SortDirection = OrderDesc
	}
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = 500 * time.Millisecond
	}

	return &Controller[T]{
		log:     cfg.Log,
		source:  cfg.Source,
		notices: cfg.Notices,
		cfg:     cfg,
		deb:     debounce.New(cfg.SearchDebounce),
		query: Query{
			PageSize:      cfg.PageSize,
			SortKey:       cfg.SortKey,
			SortDirection: cfg.SortDirection,
		},
	}
}

// Close cancels any pending debounced search. In-flight loads resolve but a
// closed controller discards their results.
func (c *Controller[T]) Close() {
	c.deb.Stop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Load issues the initial list request (the mount trigger).
func (c *Controller[T]) Load(ctx context.Context) {
	c.mu.Lock()
	c.reloadLocked(ctx)
	c.mu.Unlock()
}

// SetPage navigates to a zero-based page and reloads.
func (c *Controller[T]) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page < 0 {
		page = 0
	}
	if page == c.query.Page {
		return
	}
	c.query.Page = page
	c.reloadLocked(ctx)
}

// SetPageSize changes the rows-per-page and reloads from the first page.
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if size <= 0 || size == c.query.PageSize {
		return
	}
	c.query.PageSize = size
	c.query.Page = 0
	c.reloadLocked(ctx)
}

// ToggleSort applies the column-click rule: the active column flips its
// direction, any other column becomes active ascending. Page resets to 0.
func (c *Controller[T]) ToggleSort(ctx context.Context, key string) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.query.SortKey == key {
		if c.query.SortDirection == OrderAsc {
			c.query.SortDirection = OrderDesc
		} else {
			c.query.SortDirection = OrderAsc
		}
	} else {
		c.query.SortKey = key
		c.query.SortDirection = OrderAsc
	}
	c.query.Page = 0
	c.reloadLocked(ctx)
}

// SetSearch records the raw term and arms the debouncer; only the settled
// value triggers a request. Intermediate terms never reach the server.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	c.rawSearch = term
	c.mu.Unlock()

	c.deb.Trigger(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || term == c.query.SearchTerm {
			return
		}
		c.query.SearchTerm = term
		c.query.Page = 0
		c.reloadLocked(context.Background())
	})
}

// OpenDelete opens the confirmation dialog for one row.
func (c *Controller[T]) OpenDelete(row T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.confirm = Confirmation[T]{IsOpen: true, Target: &row}
}

// OpenDeleteByID looks the row up in the current page.
func (c *Controller[T]) OpenDeleteByID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range c.rows {
		if c.cfg.ID(row) == id {
			row := row
			c.confirm = Confirmation[T]{IsOpen: true, Target: &row}
			return true
		}
	}
	return false
}

// CancelDelete closes the dialog leaving rows and pagination untouched.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.confirm = Confirmation[T]{}
}

// ConfirmDelete performs the pending delete. Whatever the outcome, the
// confirmation closes and exactly one reload is issued; the displayed count
// and rows always come back from the server.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) {
	const op = "listing.Controller.ConfirmDelete"

	c.mu.Lock()
	if !c.confirm.IsOpen || c.confirm.Target == nil {
		c.mu.Unlock()
		return
	}
	target := *c.confirm.Target
	id := c.cfg.ID(target)
	c.mu.Unlock()

	msg, err := c.source.Delete(ctx, id)

	c.mu.Lock()
	c.confirm = Confirmation[T]{}
	if err != nil {
		if c.log != nil {
			c.log.Error("delete failed", slog.String("op", op), slog.String("id", id), sl.Err(err))
		}
		c.fail(err, fmt.Sprintf("Failed to delete %s. Please try again.", c.cfg.Resource))
	} else {
		if msg == "" {
			msg = fmt.Sprintf("%s deleted successfully.", capitalize(c.cfg.Resource))
		}
		c.notices.Success(msg)
	}
	c.reloadLocked(ctx)
	c.mu.Unlock()
}

// reloadLocked issues one list request tagged with a monotonically
// increasing sequence number. Only the response matching the latest issued
// number is applied, so a slow older response can never clobber a newer one.
// The caller holds c.mu.
func (c *Controller[T]) reloadLocked(ctx context.Context) {
	const op = "listing.Controller.reload"

	if c.closed {
		return
	}

	c.issued++
	seq := c.issued
	q := c.query
	c.inflight++

	c.mu.Unlock()
	page, err := c.source.List(ctx, q)
	c.mu.Lock()

	c.inflight--
	if c.closed || seq != c.issued || seq <= c.applied {
		return
	}
	c.applied = seq

	if err != nil {
		if c.log != nil {
			c.log.Error("list failed", slog.String("op", op), sl.Err(err))
		}
		c.fail(err, fmt.Sprintf("Failed to load %ss. Please try again.", c.cfg.Resource))
		return
	}

	// full replacement only, no merging of previous results
	c.rows = page.Items
	c.totalCount = page.Count
}

// fail routes a normalized upstream failure to the notice channel and the
// session-expiry hook. Caller holds c.mu.
func (c *Controller[T]) fail(err error, fallback string) {
	if upstream.IsUnauthorized(err) && c.cfg.OnUnauthorized != nil {
		c.cfg.OnUnauthorized()
		return
	}
	f := upstream.Normalize(err, fallback)
	c.notices.Error(f.Message)
}

// State is a render-ready snapshot of the controller.
type State[T any] struct {
	Query        Query           `json:"query"`
	Headers      []HeaderCell    `json:"headers"`
	Rows         []T             `json:"rows"`
	Cells        [][]string      `json:"cells"`
	TotalCount   int             `json:"totalCount"`
	Loading      bool            `json:"loading"`
	Empty        bool            `json:"empty"`
	RangeLabel   string          `json:"rangeLabel"`
	Confirmation Confirmation[T] `json:"confirmation"`
}

// Snapshot copies the current state. While loading, Empty stays false so
// the caller renders a loading indicator instead of "no data".
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]T, len(c.rows))
	copy(rows, c.rows)

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, renderRow(c.cfg.Columns, row))
	}

	loading := c.inflight > 0
	return State[T]{
		Query:        c.query,
		Headers:      renderHeaders(c.cfg.Columns, c.query.SortKey, c.query.SortDirection),
		Rows:         rows,
		Cells:        cells,
		TotalCount:   c.totalCount,
		Loading:      loading,
		Empty:        !loading && len(rows) == 0,
		RangeLabel:   RangeLabel(c.query.Page, c.query.PageSize, c.totalCount, loading),
		Confirmation: c.confirm,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// RangeLabel computes the "Showing X-Y from Z" line. For a zero count the
// dedicated zero state is shown instead, and X can never exceed Y.
func RangeLabel(page, pageSize, count int, loading bool) string {
	if count == 0 {
		if loading {
			return "Please wait..."
		}
		return "No records"
	}

	from := page*pageSize + 1
	to := (page + 1) * pageSize
	if to > count {
		to = count
	}
	if from > to {
		from = to
	}
	return fmt.Sprintf("Showing %d-%d from %d", from, to, count)
}
