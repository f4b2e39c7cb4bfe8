package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
)

// Local keeps images on the local filesystem. Used in local/dev environments
// where no Cloudinary account is configured; public IDs are relative paths
// under the base directory.
type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) (*Local, error) {
	const op = "imagehost.NewLocal"

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Local{baseDir: baseDir, baseURL: baseURL}, nil
}

func (s *Local) Upload(ctx context.Context, data []byte, filename, folder string) (Hosted, error) {
	const op = "imagehost.Local.Upload"

	if err := ctx.Err(); err != nil {
		return Hosted{}, fmt.Errorf("%s: %w", op, err)
	}

	ext := path.Ext(filename)
	name := publicID(filename) + ext
	rel := filepath.Join(folder, name)
	full := filepath.Join(s.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return Hosted{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(full, data, 0644); err != nil {
		return Hosted{}, fmt.Errorf("%s: %w", op, err)
	}

	hosted := Hosted{
		URL:      s.baseURL + "/" + filepath.ToSlash(rel),
		PublicID: filepath.ToSlash(rel),
		Alt:      filename,
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		hosted.Width = cfg.Width
		hosted.Height = cfg.Height
		hosted.Format = format
	}

	return hosted, nil
}

func (s *Local) Delete(ctx context.Context, id string) error {
	const op = "imagehost.Local.Delete"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(id))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
