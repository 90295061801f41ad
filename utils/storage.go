// nationportal/utils/storage.go
package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// emblemPrefix namespaces emblem objects inside a shared bucket.
const emblemPrefix = "emblems/"

// LocalStorage keeps emblem images in a directory served under /uploads/.
type LocalStorage struct {
	UploadDir string
}

// Put writes the image and returns its public path. Directory parts of name are dropped.
func (ls *LocalStorage) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(ls.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	base := filepath.Base(name)
	if err := os.WriteFile(filepath.Join(ls.UploadDir, base), data, 0644); err != nil {
		return "", fmt.Errorf("write emblem %s: %w", base, err)
	}
	return "/uploads/" + base, nil
}

// Remove deletes an image previously returned by Put. A missing file is not an error.
func (ls *LocalStorage) Remove(_ context.Context, url string) error {
	err := os.Remove(filepath.Join(ls.UploadDir, filepath.Base(url)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// S3Config describes an S3-compatible bucket for emblem images.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string
	UseSSL    bool
}

// S3Storage keeps emblem images in an S3-compatible bucket.
type S3Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewS3Storage connects to the bucket described by cfg and checks that it exists.
// Empty keys fall back to IAM credentials.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	if endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 endpoint and bucket are required")
	}

	creds := credentials.NewIAM("")
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s.%s", scheme, cfg.Bucket, endpoint)
	}
	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// PublicURL is the origin images are served from.
func (s *S3Storage) PublicURL() string { return s.publicURL }

func (s *S3Storage) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := emblemPrefix + filepath.Base(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.urlFor(key), nil
}

func (s *S3Storage) Remove(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *S3Storage) urlFor(key string) string { return s.publicURL + "/" + key }

// keyFor maps a public URL back to its object key. URLs outside the emblem prefix are ignored.
func (s *S3Storage) keyFor(url string) (string, bool) {
	key := strings.TrimPrefix(strings.TrimPrefix(url, s.publicURL), "/")
	if !strings.HasPrefix(key, emblemPrefix) || key == emblemPrefix {
		return "", false
	}
	return key, true
}
