package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"catalog_admin/internal/domain/models"
)

// ListQuery is the server-side list contract shared by every resource:
// zero-based page, page size, sort column + direction and an optional
// search term.
type ListQuery struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
	Search string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("sortBy", q.SortBy)
	v.Set("order", q.Order)
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// Page is one page of a listing plus the total row count the pagination is
// derived from.
type Page[T any] struct {
	Items []T
	Count int
}

// listResource fetches one page. The envelope keys the item array by the
// plural resource name, so the caller passes it in.
func listResource[T any](ctx context.Context, c *Client, path, key string, q ListQuery) (Page[T], error) {
	status, env, err := c.getJSON(ctx, path, q.values())
	env, err = expect(status, env, err, http.StatusOK)
	if err != nil {
		return Page[T]{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(env.Response, &raw); err != nil {
		return Page[T]{}, &TransportError{Err: err}
	}

	var page Page[T]
	if items, ok := raw[key]; ok {
		if err := json.Unmarshal(items, &page.Items); err != nil {
			return Page[T]{}, &TransportError{Err: err}
		}
	}
	if count, ok := raw["count"]; ok {
		if err := json.Unmarshal(count, &page.Count); err != nil {
			return Page[T]{}, &TransportError{Err: err}
		}
	}
	return page, nil
}

func getResource[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	status, env, err := c.getJSON(ctx, path, nil)
	env, err = expect(status, env, err, http.StatusOK)
	if err != nil {
		return zero, err
	}
	return decodeResponse[T](env)
}

func deleteResource(ctx context.Context, c *Client, path string) (string, error) {
	status, env, err := c.delete(ctx, path)
	env, err = expect(status, env, err, http.StatusOK)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ProductsClient covers /products.
type ProductsClient struct {
	c *Client
}

// ProductPayload is the step-1 form encoded for the wire. Tags marshal as a
// JSON array inside the form field, matching the upstream contract.
type ProductPayload struct {
	Title          string
	Desc           string
	Price          float64
	Discount       float64
	Category       string
	DefaultVariant models.Variant
	Tags           []string
	IsActive       bool
	Image          *FileUpload
}

func (p ProductPayload) fields() (map[string]string, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"title":          p.Title,
		"desc":           p.Desc,
		"price":          strconv.FormatFloat(p.Price, 'f', -1, 64),
		"discount":       strconv.FormatFloat(p.Discount, 'f', -1, 64),
		"category":       p.Category,
		"defaultVariant": string(p.DefaultVariant),
		"tags":           string(tags),
		"isActive":       strconv.FormatBool(p.IsActive),
	}, nil
}

func (p *ProductsClient) List(ctx context.Context, q ListQuery) (Page[models.Product], error) {
	return listResource[models.Product](ctx, p.c, "/products", "products", q)
}

func (p *ProductsClient) Get(ctx context.Context, id string) (models.Product, error) {
	return getResource[models.Product](ctx, p.c, "/products/"+url.PathEscape(id))
}

func (p *ProductsClient) Create(ctx context.Context, payload ProductPayload) (models.Product, string, error) {
	return p.save(ctx, http.MethodPost, "/products", payload)
}

func (p *ProductsClient) Update(ctx context.Context, id string, payload ProductPayload) (models.Product, string, error) {
	return p.save(ctx, http.MethodPut, "/products/"+url.PathEscape(id), payload)
}

func (p *ProductsClient) save(ctx context.Context, method, path string, payload ProductPayload) (models.Product, string, error) {
	const op = "upstream.ProductsClient.save"

	fields, err := payload.fields()
	if err != nil {
		return models.Product{}, "", fmt.Errorf("%s: %w", op, err)
	}

	// binary field present -> multipart; otherwise plain form fields as JSON
	var (
		status int
		env    Envelope
	)
	if payload.Image != nil {
		status, env, err = p.c.sendForm(ctx, method, path, fields, payload.Image)
	} else {
		status, env, err = p.c.sendJSON(ctx, method, path, fields)
	}
	env, err = expect(status, env, err, http.StatusOK, http.StatusCreated)
	if err != nil {
		return models.Product{}, "", err
	}

	product, err := decodeResponse[models.Product](env)
	if err != nil {
		return models.Product{}, "", err
	}
	return product, env.Message, nil
}

func (p *ProductsClient) Delete(ctx context.Context, id string) (string, error) {
	return deleteResource(ctx, p.c, "/products/"+url.PathEscape(id))
}

// UpdateVariants replaces the product's full variant image map.
func (p *ProductsClient) UpdateVariants(ctx context.Context, id string, variants map[models.Variant]models.VariantImageSet) (string, error) {
	path := "/products/" + url.PathEscape(id) + "/variants"
	status, env, err := p.c.sendJSON(ctx, http.MethodPut, path, variants)
	env, err = expect(status, env, err, http.StatusOK)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CategoriesClient covers /categories.
type CategoriesClient struct {
	c *Client
}

type CategoryPayload struct {
	Name      string
	Desc      string
	Slug      string
	SortOrder int
	IsActive  bool
	Image     *FileUpload
}

func (p CategoryPayload) fields() map[string]string {
	return map[string]string{
		"name":      p.Name,
		"desc":      p.Desc,
		"slug":      p.Slug,
		"sortOrder": strconv.Itoa(p.SortOrder),
		"isActive":  strconv.FormatBool(p.IsActive),
	}
}

func (cc *CategoriesClient) List(ctx context.Context, q ListQuery) (Page[models.Category], error) {
	return listResource[models.Category](ctx, cc.c, "/categories", "categories", q)
}

func (cc *CategoriesClient) Get(ctx context.Context, id string) (models.Category, error) {
	return getResource[models.Category](ctx, cc.c, "/categories/"+url.PathEscape(id))
}

func (cc *CategoriesClient) Create(ctx context.Context, payload CategoryPayload) (models.Category, string, error) {
	return cc.save(ctx, http.MethodPost, "/categories", payload)
}

func (cc *CategoriesClient) Update(ctx context.Context, id string, payload CategoryPayload) (models.Category, string, error) {
	return cc.save(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), payload)
}

func (cc *CategoriesClient) save(ctx context.Context, method, path string, payload CategoryPayload) (models.Category, string, error) {
	var (
		status int
		env    Envelope
		err    error
	)
	if payload.Image != nil {
		status, env, err = cc.c.sendForm(ctx, method, path, payload.fields(), payload.Image)
	} else {
		status, env, err = cc.c.sendJSON(ctx, method, path, payload.fields())
	}
	env, err = expect(status, env, err, http.StatusOK, http.StatusCreated)
	if err != nil {
		return models.Category{}, "", err
	}

	category, err := decodeResponse[models.Category](env)
	if err != nil {
		return models.Category{}, "", err
	}
	return category, env.Message, nil
}

func (cc *CategoriesClient) Delete(ctx context.Context, id string) (string, error) {
	return deleteResource(ctx, cc.c, "/categories/"+url.PathEscape(id))
}

// Options returns the flat id/name list used to populate form selects.
func (cc *CategoriesClient) Options(ctx context.Context) ([]models.Option, error) {
	out, err := getResource[struct {
		Categories []models.Option `json:"categories"`
	}](ctx, cc.c, "/categories/get-list")
	if err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// TagsClient covers /tags.
type TagsClient struct {
	c *Client
}

type TagPayload struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Value    string `json:"value"`
	IsActive bool   `json:"isActive"`
}

func (tc *TagsClient) List(ctx context.Context, q ListQuery) (Page[models.Tag], error) {
	return listResource[models.Tag](ctx, tc.c, "/tags", "tags", q)
}

func (tc *TagsClient) Get(ctx context.Context, id string) (models.Tag, error) {
	return getResource[models.Tag](ctx, tc.c, "/tags/"+url.PathEscape(id))
}

func (tc *TagsClient) Create(ctx context.Context, payload TagPayload) (models.Tag, string, error) {
	return tc.save(ctx, http.MethodPost, "/tags", payload)
}

func (tc *TagsClient) Update(ctx context.Context, id string, payload TagPayload) (models.Tag, string, error) {
	return tc.save(ctx, http.MethodPut, "/tags/"+url.PathEscape(id), payload)
}

func (tc *TagsClient) save(ctx context.Context, method, path string, payload TagPayload) (models.Tag, string, error) {
	status, env, err := tc.c.sendJSON(ctx, method, path, payload)
	env, err = expect(status, env, err, http.StatusOK, http.StatusCreated)
	if err != nil {
		return models.Tag{}, "", err
	}

	tag, err := decodeResponse[models.Tag](env)
	if err != nil {
		return models.Tag{}, "", err
	}
	return tag, env.Message, nil
}

func (tc *TagsClient) Delete(ctx context.Context, id string) (string, error) {
	return deleteResource(ctx, tc.c, "/tags/"+url.PathEscape(id))
}

// Options returns the flat tag list for the product form. The odd path
// casing is the upstream contract, not a typo.
func (tc *TagsClient) Options(ctx context.Context) ([]models.Option, error) {
	out, err := getResource[struct {
		Tags []models.Option `json:"tags"`
	}](ctx, tc.c, "/tags/get-List")
	if err != nil {
		return nil, err
	}
	return out.Tags, nil
}
