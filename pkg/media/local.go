package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ProviderLocal = "local"

// LocalUploader writes assets below root and serves them from baseURL
type LocalUploader struct {
	root    string
	baseURL string
}

func NewLocalUploader(root, baseURL string) *LocalUploader {
	return &LocalUploader{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *LocalUploader) Name() string { return ProviderLocal }

func (u *LocalUploader) Upload(ctx context.Context, key string, data []byte, _ string) (*Object, error) {
	dest, err := u.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &Object{URL: u.baseURL + "/" + filepath.ToSlash(key), Provider: ProviderLocal, Key: key}, nil
}

func (u *LocalUploader) Delete(_ context.Context, key string) error {
	dest, err := u.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// resolve rejects keys that would escape root
func (u *LocalUploader) resolve(key string) (string, error) {
	root, err := filepath.Abs(u.root)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(dest, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return dest, nil
}
