package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// allowedImageTypes maps accepted upload MIME types to file extensions.
var allowedImageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// ImageExtension returns the extension for an accepted image MIME type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	return ext, ok
}

// imageObjectName builds a unique, URL-safe name from the uploaded file name.
func imageObjectName(original, contentType string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." {
		base = "image"
	}
	ext, ok := ImageExtension(contentType)
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("%s-%d-%s.%s", base, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// LocalImageStore writes uploads to a directory served at /public/uploads.
// It is used when no S3 bucket is configured.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, publicBaseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir, baseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

func (s *LocalImageStore) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return s.baseURL + "/public/uploads/" + filepath.Base(name), nil
}
