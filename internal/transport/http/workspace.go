package http

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"catalog_admin/internal/domain/models"
	"catalog_admin/internal/notice"
	"catalog_admin/internal/services/listing"
	"catalog_admin/internal/services/wizard"
	"catalog_admin/internal/upstream"
)

// Workspace is everything the panel holds for one signed-in admin: the typed
// upstream client bound to their token, one list controller per resource,
// the product wizard and the notice queue they all report into.
type Workspace struct {
	SID     string
	User    models.User
	Notices *notice.Center
	Client  *upstream.Client

	Products   *listing.Controller[models.Product]
	Categories *listing.Controller[models.Category]
	Tags       *listing.Controller[models.Tag]
	Wizard     *wizard.Wizard
}

func (w *Workspace) Close() {
	w.Products.Close()
	w.Categories.Close()
	w.Tags.Close()
}

// listView is the non-generic surface the view handlers drive, shared by all
// three resource controllers.
type listView interface {
	Load(ctx context.Context)
	SetPage(ctx context.Context, page int)
	SetPageSize(ctx context.Context, size int)
	ToggleSort(ctx context.Context, key string)
	SetSearch(term string)
	OpenDeleteByID(id string) bool
	CancelDelete()
	ConfirmDelete(ctx context.Context)
	StateJSON() any
}

type view[T any] struct {
	*listing.Controller[T]
}

func (v view[T]) StateJSON() any { return v.Snapshot() }

// View resolves a resource path segment to its controller.
func (w *Workspace) View(resource string) (listView, bool) {
	switch resource {
	case "products":
		return view[models.Product]{w.Products}, true
	case "categories":
		return view[models.Category]{w.Categories}, true
	case "tags":
		return view[models.Tag]{w.Tags}, true
	}
	return nil, false
}

// Registry maps session IDs to workspaces. Entries expire with the session
// TTL; eviction closes the workspace so debounce timers do not leak.
type Registry struct {
	cache *gocache.Cache
}

func NewRegistry(ttl time.Duration) *Registry {
	c := gocache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if ws, ok := v.(*Workspace); ok {
			ws.Close()
		}
	})
	return &Registry{cache: c}
}

func (r *Registry) Get(sid string) (*Workspace, bool) {
	v, ok := r.cache.Get(sid)
	if !ok {
		return nil, false
	}
	return v.(*Workspace), true
}

func (r *Registry) Put(sid string, ws *Workspace) {
	r.cache.SetDefault(sid, ws)
}

func (r *Registry) Drop(sid string) {
	r.cache.Delete(sid)
}

// resourceAPI is the part of an upstream resource client a list controller
// needs. The three resource clients all satisfy it.
type resourceAPI[T any] interface {
	List(ctx context.Context, q upstream.ListQuery) (upstream.Page[T], error)
	Delete(ctx context.Context, id string) (string, error)
}

type source[T any] struct {
	api resourceAPI[T]
}

func (s source[T]) List(ctx context.Context, q listing.Query) (upstream.Page[T], error) {
	return s.api.List(ctx, upstream.ListQuery{
		Page:   q.Page,
		Limit:  q.PageSize,
		SortBy: q.SortKey,
		Order:  q.SortDirection,
		Search: q.SearchTerm,
	})
}

func (s source[T]) Delete(ctx context.Context, id string) (string, error) {
	return s.api.Delete(ctx, id)
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func productColumns() []listing.ColumnSpec[models.Product] {
	return []listing.ColumnSpec[models.Product]{
		{Title: "Sku Id", Key: "skuId", Sortable: true, Render: func(p models.Product) string { return p.SkuID }},
		{Title: "Title", Key: "title", Sortable: true, Render: func(p models.Product) string { return p.Title }},
		{Title: "Price", Key: "price", Sortable: true, Render: func(p models.Product) string { return fmt.Sprintf("%.2f", p.Price) }},
		{Title: "Category", Render: func(p models.Product) string { return p.Category.Name }},
		{Title: "Status", Render: func(p models.Product) string { return activeLabel(p.IsActive) }},
		{Title: "Actions"},
	}
}

func categoryColumns() []listing.ColumnSpec[models.Category] {
	return []listing.ColumnSpec[models.Category]{
		{Title: "Name", Key: "name", Sortable: true, Render: func(c models.Category) string { return c.Name }},
		{Title: "Slug", Key: "slug", Sortable: true, Render: func(c models.Category) string { return c.Slug }},
		{Title: "Status", Render: func(c models.Category) string { return activeLabel(c.IsActive) }},
		{Title: "Actions"},
	}
}

func tagColumns() []listing.ColumnSpec[models.Tag] {
	return []listing.ColumnSpec[models.Tag]{
		{Title: "Name", Key: "name", Sortable: true, Render: func(t models.Tag) string { return t.Name }},
		{Title: "Value", Key: "value", Sortable: true, Render: func(t models.Tag) string { return t.Value }},
		{Title: "Status", Render: func(t models.Tag) string { return activeLabel(t.IsActive) }},
		{Title: "Actions"},
	}
}
