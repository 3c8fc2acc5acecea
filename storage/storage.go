// Package storage keeps uploaded listing images somewhere that can hand back a URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ErrNotManaged is returned by Delete for URLs the store did not hand out.
var ErrNotManaged = errors.New("storage: url not managed by this store")

type ImageStore interface {
	// Put stores body under key and returns the public URL of the object.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ObjectKey builds a readable, collision free key for an uploaded image,
// e.g. listings/sunny-flat-3b1f....jpg
func ObjectKey(title, filename string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	name := id.String()
	if s := slug.Make(title); s != "" {
		name = fmt.Sprintf("%s-%s", s, name)
	}

	ext := strings.ToLower(path.Ext(filename))
	return "listings/" + name + ext, nil
}
