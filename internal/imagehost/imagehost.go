// Package imagehost is the upload/delete side channel for product images.
// Failures here are best effort for callers: a failed upload simply never
// enters a variant's image collection.
package imagehost

import "context"

// Hosted describes one image living on the host.
type Hosted struct {
	URL         string `json:"url"`
	PublicID    string `json:"public_id"`
	Alt         string `json:"alt"`
	DeleteToken string `json:"token"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
}

// Host uploads a raster to a deterministic destination folder and removes
// it again by public ID.
type Host interface {
	Upload(ctx context.Context, data []byte, filename, folder string) (Hosted, error)
	Delete(ctx context.Context, publicID string) error
}
