// Package media stores images attached to posts.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize bounds uploaded images.
const MaxImageSize = 10 << 20

var (
	ErrNotImage = errors.New("upload a valid image: the file is either not an image or corrupted")
	ErrTooLarge = errors.New("image is too large")
)

var imageExt = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// URL is where browsers fetch the object from.
	URL(ctx context.Context, key string) (string, error)
}

// NewKey returns a fresh object key under posts/ with the extension of
// the content type.
func NewKey(contentType string) string {
	return path.Join("posts", uuid.NewString()+imageExt[contentType])
}

// SaveUpload checks that fh holds an image and stores it, returning the key.
func SaveUpload(ctx context.Context, s Store, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExt[contentType]; !ok {
		return "", ErrNotImage
	}

	key := NewKey(contentType)
	if err := s.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("error storing image: %w", err)
	}
	return key, nil
}

func validKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "/") && !strings.Contains(key, "..")
}
