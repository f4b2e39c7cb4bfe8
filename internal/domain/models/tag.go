package models

import "time"

type Tag struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	Value     string    `json:"value"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
