// Package storage resolves dataset and model locations to readers and writers.
// Plain paths are local files; s3://bucket/key locations go to an
// S3-compatible object store.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/rainfall-features/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3Scheme = "s3://"

// ErrS3Disabled is returned for s3:// locations when no endpoint is configured.
var ErrS3Disabled = errors.New("s3 location requires S3_ENDPOINT")

// Store opens locations for reading and writing.
type Store struct {
	client *minio.Client
	logger *slog.Logger
}

// New creates a Store. The object-store client is only built when S3 is configured.
func New(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	s := &Store{logger: logger}
	if !cfg.S3Enabled() {
		return s, nil
	}

	endpoint := strings.TrimPrefix(cfg.S3Endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	s.client = client
	return s, nil
}

// ParseS3 splits an s3://bucket/key location. ok is false for local paths.
func ParseS3(location string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return "", "", false, nil
	}
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("invalid s3 location %q: want s3://bucket/key", location)
	}
	return bucket, key, true, nil
}

// Open returns a reader for the location. The caller closes it.
func (s *Store) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, isS3, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	if !isS3 {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		return f, nil
	}
	if s.client == nil {
		return nil, ErrS3Disabled
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", location, err)
	}
	// GetObject is lazy; Stat surfaces a missing object before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %s: %w", location, err)
	}
	return obj, nil
}

// Create returns a writer for the location. Data reaches its destination
// when Close returns nil.
func (s *Store) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	bucket, key, isS3, err := ParseS3(location)
	if err != nil {
		return nil, err
	}
	if !isS3 {
		if dir := filepath.Dir(location); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create directory for %s: %w", location, err)
			}
		}
		f, err := os.Create(location)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", location, err)
		}
		return f, nil
	}
	if s.client == nil {
		return nil, ErrS3Disabled
	}
	return &objectWriter{ctx: ctx, store: s, bucket: bucket, key: key}, nil
}

// objectWriter buffers the whole object and uploads it on Close.
type objectWriter struct {
	ctx    context.Context
	store  *Store
	bucket string
	key    string
	buf    bytes.Buffer
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	size := int64(w.buf.Len())
	_, err := w.store.client.PutObject(w.ctx, w.bucket, w.key, &w.buf, size, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("put object s3://%s/%s: %w", w.bucket, w.key, err)
	}
	w.store.logger.Info("uploaded object", "bucket", w.bucket, "key", w.key, "bytes", size)
	return nil
}
