package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Cloudinary hosts images on a Cloudinary account. Public IDs are generated
// server side so a re-uploaded crop never overwrites a prior asset.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	const op = "imagehost.NewCloudinary"

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, data []byte, filename, folder string) (Hosted, error) {
	const op = "imagehost.Cloudinary.Upload"

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID(filename),
		ResourceType: "image",
	})
	if err != nil {
		return Hosted{}, fmt.Errorf("%s: %w", op, err)
	}

	return Hosted{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Alt:      filename,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, id string) error {
	const op = "imagehost.Cloudinary.Delete"

	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// publicID derives a unique asset name from the original filename, keeping
// the base name around for readability in the media library.
func publicID(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if base == "" || base == "." {
		base = "img"
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}
