// Package minio implements an artifact store on an S3 compatible object
// storage using the MinIO client.
package minio

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/slok/scraper/internal/artifact"
	"github.com/slok/scraper/internal/log"
)

// Client is the subset of the MinIO client used by the store.
type Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// StoreConfig is the configuration for the MinIO artifact store.
type StoreConfig struct {
	// Client is optional, when missing it's created from the endpoint and credentials.
	Client    Client
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
	Logger    log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Bucket == "" {
		c.Bucket = "scraper-artifacts"
	}
	if c.Client == nil {
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint is required")
		}
		cli, err := minio.New(c.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: c.Secure,
		})
		if err != nil {
			return fmt.Errorf("could not create MinIO client: %w", err)
		}
		c.Client = cli
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "artifact.MinIO"})
	return nil
}

// Store uploads artifacts to a bucket as `<task-id>/<file>`.
type Store struct {
	client Client
	bucket string
	logger log.Logger

	mu            sync.Mutex
	bucketEnsured bool
}

// NewStore returns a new MinIO artifact store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store{
		client: cfg.Client,
		bucket: cfg.Bucket,
		logger: cfg.Logger,
	}, nil
}

// Save uploads the file and returns an `s3://<bucket>/<key>` reference.
func (s *Store) Save(ctx context.Context, taskID, localPath string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("task id is required: %w", artifact.ErrArtifact)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("could not ensure bucket %s: %w: %w", s.bucket, err, artifact.ErrArtifact)
	}

	file := filepath.Base(localPath)
	key := taskID + "/" + file
	opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(filepath.Ext(file))}
	if _, err := s.client.FPutObject(ctx, s.bucket, key, localPath, opts); err != nil {
		return "", fmt.Errorf("could not upload artifact: %w: %w", err, artifact.ErrArtifact)
	}

	ref := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Debugf("Artifact for task %s uploaded to %s", taskID, ref)

	return ref, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		s.logger.Infof("Bucket %s created", s.bucket)
	}
	s.bucketEnsured = true

	return nil
}
