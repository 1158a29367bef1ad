package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Manushivuz/IISPPR-MainSite/pkg/metrics"
)

// LocalStorage keeps assets on the local disk and serves them under URLPrefix.
// It is the development fallback when no remote asset host is configured.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (l *LocalStorage) Backend() string { return "local" }

// Dir is the directory to expose under the URL prefix.
func (l *LocalStorage) Dir() string { return l.dir }

func (l *LocalStorage) Upload(ctx context.Context, folder, localPath, contentType string) (Asset, error) {
	key := objectKey(folder, localPath)
	dst := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Asset{}, fmt.Errorf("create asset folder: %w", err)
	}
	if err := moveFile(localPath, dst); err != nil {
		metrics.AssetOperations.WithLabelValues(l.Backend(), "upload", "error").Inc()
		return Asset{}, err
	}
	metrics.AssetOperations.WithLabelValues(l.Backend(), "upload", "ok").Inc()
	return Asset{URL: l.urlPrefix + "/" + key, Key: key}, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		metrics.AssetOperations.WithLabelValues(l.Backend(), "delete", "error").Inc()
		return fmt.Errorf("delete asset: %w", err)
	}
	metrics.AssetOperations.WithLabelValues(l.Backend(), "delete", "ok").Inc()
	return nil
}

func (l *LocalStorage) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := l.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *LocalStorage) KeyFromURL(url string) (string, bool) {
	return keyUnder(l.urlPrefix, url)
}

// moveFile renames src to dst, copying when the rename crosses devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy asset: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}
