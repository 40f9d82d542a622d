package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnknownProvider = errors.New("unknown media provider")

// Object is a stored asset
type Object struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

// Uploader stores binary assets with one hosting provider
type Uploader interface {
	Name() string
	Upload(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key under prefix keeping the file extension
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// FallbackUploader tries each provider in order until one accepts the upload
type FallbackUploader struct {
	providers []Uploader
}

func NewFallbackUploader(providers ...Uploader) *FallbackUploader {
	return &FallbackUploader{providers: providers}
}

func (f *FallbackUploader) Name() string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, ",")
}

func (f *FallbackUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (*Object, error) {
	if len(f.providers) == 0 {
		return nil, errors.New("no media providers configured")
	}

	var errs []error
	for _, p := range f.providers {
		obj, err := p.Upload(ctx, key, data, contentType)
		if err == nil {
			return obj, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("all media providers failed: %w", errors.Join(errs...))
}

// Delete removes key from the provider that stored it
func (f *FallbackUploader) DeleteFrom(ctx context.Context, provider, key string) error {
	for _, p := range f.providers {
		if p.Name() == provider {
			return p.Delete(ctx, key)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
}
