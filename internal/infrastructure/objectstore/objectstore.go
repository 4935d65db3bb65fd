// Package objectstore backs up generated key pairs to an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/config"
	"github.com/felixgeelhaar/sshscp/pkg/keys"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PutOptions are optional parameters for uploads.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Store is the subset of object storage used for key backups.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, opt PutOptions) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates a store backed by MinIO, AWS S3 or any S3-compatible
// endpoint, creating the bucket if it does not exist.
func NewMinIO(ctx context.Context, cfg config.ObjectStoreConfig) (Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStore{client: cli, bucket: cfg.Bucket}, nil
}

func (m *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, opt PutOptions) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	return err
}

func (m *minioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
}

func (m *minioStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// KeyObjectNames returns the object names used for a key pair under prefix.
func KeyObjectNames(prefix, id string) (private, public string) {
	return path.Join(prefix, id+".pem"), path.Join(prefix, id+".pub.b64")
}

// UploadKeyPair stores both halves of kp and returns the object names.
func UploadKeyPair(ctx context.Context, store Store, prefix string, kp *keys.KeyPair) ([]string, error) {
	privName, pubName := KeyObjectNames(prefix, kp.ID)
	meta := map[string]string{"key-id": kp.ID}

	objects := []struct {
		name string
		data []byte
	}{
		{privName, []byte(kp.PrivateKeyPEM)},
		{pubName, []byte(kp.PublicKeyBase64 + "\n")},
	}

	names := make([]string, 0, len(objects))
	for _, o := range objects {
		err := store.Put(ctx, o.name, bytes.NewReader(o.data), int64(len(o.data)), PutOptions{
			ContentType: "text/plain",
			Metadata:    meta,
		})
		if err != nil {
			return names, fmt.Errorf("upload %s: %w", o.name, err)
		}
		names = append(names, o.name)
	}
	return names, nil
}
