package models

import "time"

// Variant is one of the fixed image aspect-ratio classes a product can
// present images in.
type Variant string

const (
	VariantVertical   Variant = "vertical"
	VariantHorizontal Variant = "horizontal"
	VariantSquare     Variant = "square"
)

// Variants lists every variant in display order.
var Variants = []Variant{VariantVertical, VariantHorizontal, VariantSquare}

func (v Variant) Valid() bool {
	switch v {
	case VariantVertical, VariantHorizontal, VariantSquare:
		return true
	}
	return false
}

// CategoryRef is the populated category reference the upstream API embeds
// into product records.
type CategoryRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Product struct {
	ID             string                      `json:"_id"`
	SkuID          string                      `json:"skuId"`
	Title          string                      `json:"title"`
	Desc           string                      `json:"desc"`
	Price          float64                     `json:"price"`
	Discount       float64                     `json:"discount"`
	Category       CategoryRef                 `json:"category"`
	DefaultVariant Variant                     `json:"defaultVariant"`
	Tags           []string                    `json:"tags"`
	IsActive       bool                        `json:"isActive"`
	Image          string                      `json:"image"`
	Variants       map[Variant]VariantImageSet `json:"variants,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}
