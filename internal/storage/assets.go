package storage

import (
	"context"
	"path"
	"path/filepath"
	"strings"
)

// Asset is the result of an upload: a durable URL and the identifier used to delete it later.
type Asset struct {
	URL string
	Key string
}

// Assets is the asset host used by the stores. Upload consumes the local file.
type Assets interface {
	Upload(ctx context.Context, folder, localPath, contentType string) (Asset, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	// KeyFromURL recovers the deletable key of a URL produced by Upload.
	KeyFromURL(url string) (string, bool)
	Backend() string
}

func objectKey(folder, localPath string) string {
	name := filepath.Base(localPath)
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// keyUnder strips prefix+"/" from url and rejects keys escaping the prefix.
func keyUnder(prefix, url string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(url, prefix+"/") {
		return "", false
	}
	key := path.Clean(strings.TrimPrefix(url, prefix+"/"))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") || strings.HasPrefix(key, "/") {
		return "", false
	}
	return key, true
}
