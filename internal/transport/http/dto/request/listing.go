package request

// SortRequest toggles the sort on a column key. Toggling the active key
// flips direction; a new key starts ascending.
type SortRequest struct {
	Key string `json:"key" validate:"required"`
}

type PageRequest struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"pageSize" validate:"gte=0"`
}

// SearchRequest carries the raw input value; the server debounces it, so an
// empty term is valid (it clears the filter).
type SearchRequest struct {
	Term string `json:"term"`
}

type DeleteOpenRequest struct {
	ID string `json:"id" validate:"required"`
}
