package wildcardstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/imagegen/paramweave/paramcore"
)

// S3Credentials holds the connection details for an S3-compatible bucket.
type S3Credentials struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// NewMinioClient builds a minio.Client from these credentials.
func (c S3Credentials) NewMinioClient() (*minio.Client, error) {
	return minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKeyID, c.SecretAccessKey, ""),
		Secure: c.UseSSL,
	})
}

// S3Config holds configuration for an S3Store.
type S3Config struct {
	Credentials S3Credentials
	Bucket      string
	// Prefix is stripped from object keys before they become wildcard
	// names; objects not ending in ".txt" are ignored.
	Prefix          string
	IncludePatterns []string
	ExcludePatterns []string
}

// S3Store is a paramcore.WildcardStore backed by objects in an
// S3-compatible bucket.
type S3Store struct {
	config S3Config
	client *minio.Client
}

// NewS3Store creates an S3-backed wildcard store.
func NewS3Store(config S3Config) (*S3Store, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	client, err := config.Credentials.NewMinioClient()
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	if config.Prefix != "" && !strings.HasSuffix(config.Prefix, "/") {
		config.Prefix += "/"
	}
	return &S3Store{config: config, client: client}, nil
}

// ListFiles lists every ".txt" object under Prefix, matching include/
// exclude glob patterns against the key with the prefix stripped.
func (s *S3Store) ListFiles(ctx context.Context) ([]string, error) {
	var names []string
	for object := range s.client.ListObjects(ctx, s.config.Bucket, minio.ListObjectsOptions{
		Prefix:    s.config.Prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("listing s3 objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, "/") || !strings.HasSuffix(object.Key, ".txt") {
			continue
		}
		relKey := strings.TrimPrefix(object.Key, s.config.Prefix)
		if s.excluded(relKey) || !s.included(relKey) {
			continue
		}
		names = append(names, strings.TrimSuffix(relKey, ".txt"))
	}
	return names, nil
}

// Get downloads Prefix+name+".txt" and splits it into options.
func (s *S3Store) Get(ctx context.Context, name string) (paramcore.WildcardFile, error) {
	key := s.config.Prefix + name + ".txt"
	obj, err := s.client.GetObject(ctx, s.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return paramcore.WildcardFile{}, fmt.Errorf("getting s3 object %s: %w", key, err)
	}
	defer obj.Close()
	content, err := io.ReadAll(obj)
	if err != nil {
		return paramcore.WildcardFile{}, fmt.Errorf("reading s3 object %s: %w", key, err)
	}
	return paramcore.WildcardFile{Name: name, Options: splitLines(content)}, nil
}

func (s *S3Store) excluded(path string) bool {
	for _, pattern := range s.config.ExcludePatterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

func (s *S3Store) included(path string) bool {
	if len(s.config.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range s.config.IncludePatterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
