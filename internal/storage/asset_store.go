package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nahid-hossain/flocknet/backend/pkg/config"
)

// AssetStore is the external asset host: images go in as base64 data URIs
// and come back as stable public URLs.
type AssetStore interface {
	Upload(ctx context.Context, data string) (string, error)
	Destroy(ctx context.Context, assetID string) error
}

// MinioAssetStore implements AssetStore against an S3-compatible endpoint
type MinioAssetStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioAssetStore connects to MinIO and ensures the bucket exists
func NewMinioAssetStore(cfg *config.Config) (*MinioAssetStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioAssetStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimSuffix(cfg.MinioPublicURL, "/"),
	}, nil
}

// Upload stores a base64 data URI and returns its public URL. The object
// name is a fresh UUID plus the extension implied by the data URI's media
// type.
func (s *MinioAssetStore) Upload(ctx context.Context, data string) (string, error) {
	contentType, payload, err := decodeDataURI(data)
	if err != nil {
		return "", err
	}

	ext := ".jpg"
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	objectName := uuid.New().String() + ext

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}

// Destroy removes the stored object whose name starts with assetID. The
// asset id carries no extension, so matching is by prefix.
func (s *MinioAssetStore) Destroy(ctx context.Context, assetID string) error {
	if assetID == "" {
		return nil
	}
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: assetID}) {
		if object.Err != nil {
			return fmt.Errorf("failed to list assets: %w", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
	}
	return nil
}

// AssetIDFromURL extracts the asset id from a stored public URL: the last
// path segment without its extension.
func AssetIDFromURL(url string) string {
	name := path.Base(url)
	return strings.TrimSuffix(name, path.Ext(name))
}

// decodeDataURI splits an optional "data:<type>;base64," prefix off and
// decodes the payload. Bare base64 is accepted and treated as a JPEG.
func decodeDataURI(data string) (string, []byte, error) {
	contentType := "image/jpeg"
	encoded := data
	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, ",")
		if idx < 0 {
			return "", nil, fmt.Errorf("malformed data URI")
		}
		meta := data[len("data:"):idx]
		encoded = data[idx+1:]
		if ct := strings.TrimSuffix(meta, ";base64"); ct != "" {
			contentType = ct
		}
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode asset data: %w", err)
	}
	return contentType, payload, nil
}
