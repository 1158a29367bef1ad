package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Manushivuz/IISPPR-MainSite/pkg/metrics"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinIOStorage is the remote asset host backed by a MinIO/S3 bucket.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	base   string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, base: cfg.baseURL()}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}
	// asset URLs are embedded in public pages
	if cfg.PublicRead {
		if err := mc.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
			return nil, fmt.Errorf("minio bucket policy: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStorage) Backend() string { return "minio" }

// Upload puts the local file into the bucket and removes the local copy on success.
func (s *MinIOStorage) Upload(ctx context.Context, folder, localPath, contentType string) (Asset, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Asset{}, fmt.Errorf("stat upload: %w", err)
	}
	key := objectKey(folder, localPath)
	if _, err := s.client.PutObject(ctx, s.bucket, key, f, st.Size(), minio.PutObjectOptions{ContentType: contentType}); err != nil {
		metrics.AssetOperations.WithLabelValues(s.Backend(), "upload", "error").Inc()
		return Asset{}, fmt.Errorf("put object: %w", err)
	}
	metrics.AssetOperations.WithLabelValues(s.Backend(), "upload", "ok").Inc()
	_ = os.Remove(localPath)
	return Asset{URL: s.base + "/" + key, Key: key}, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		metrics.AssetOperations.WithLabelValues(s.Backend(), "delete", "error").Inc()
		return fmt.Errorf("delete object: %w", err)
	}
	metrics.AssetOperations.WithLabelValues(s.Backend(), "delete", "ok").Inc()
	return nil
}

// DeleteMany issues one bulk remove call for all keys.
func (s *MinIOStorage) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)
	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	result := "ok"
	if len(errs) > 0 {
		result = "error"
	}
	metrics.AssetOperations.WithLabelValues(s.Backend(), "delete_many", result).Inc()
	return errors.Join(errs...)
}

func (s *MinIOStorage) KeyFromURL(url string) (string, bool) {
	return keyUnder(s.base, url)
}
