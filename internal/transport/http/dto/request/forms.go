package request

// TagForm creates or updates a tag. A blank Value is derived from the
// name server side.
type TagForm struct {
	Name     string `json:"name" validate:"required"`
	Desc     string `json:"desc"`
	Value    string `json:"value"`
	IsActive bool   `json:"isActive"`
}

// CategoryForm creates or updates a category. A blank Slug is derived from
// the name server side.
type CategoryForm struct {
	Name      string `json:"name" validate:"required"`
	Desc      string `json:"desc"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

// WizardStartRequest opens the product wizard. With an ID it loads that
// product for editing, otherwise it starts a blank create form.
type WizardStartRequest struct {
	ID string `json:"id"`
}

// ImageRef addresses one image inside a variant collection.
type ImageRef struct {
	PublicID string `json:"public_id" validate:"required"`
}
