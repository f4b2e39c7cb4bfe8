package models

import "time"

type Category struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	Slug      string    `json:"slug"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Option is a flat id/name pair returned by the upstream option-list
// endpoints, used to populate form selects.
type Option struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
