// Package archive keeps originals and their extracted text in S3-compatible
// object storage, one prefix per collection and document.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for document archiving.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new archive client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// objectPrefix is the per-document location: collections/<collection>/<document>/.
func objectPrefix(collection, documentName string) string {
	return path.Join("collections", collection, documentName)
}

// StoreDocument writes the original upload and its extracted text next to
// each other under the document's prefix.
func (c *Client) StoreDocument(ctx context.Context, collection, documentName string, original []byte, extractedText string) error {
	prefix := objectPrefix(collection, documentName)

	originalName := path.Join(prefix, "original", documentName)
	_, err := c.minioClient.PutObject(ctx, c.bucket, originalName,
		bytes.NewReader(original), int64(len(original)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(original)})
	if err != nil {
		return fmt.Errorf("failed to put original: %w", err)
	}

	textName := path.Join(prefix, "extracted.txt")
	_, err = c.minioClient.PutObject(ctx, c.bucket, textName,
		strings.NewReader(extractedText), int64(len(extractedText)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("failed to put extracted text: %w", err)
	}
	return nil
}

// GetExtractedText reads the archived extracted text for a document.
func (c *Client) GetExtractedText(ctx context.Context, collection, documentName string) (string, error) {
	objectName := path.Join(objectPrefix(collection, documentName), "extracted.txt")

	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get extracted text: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}
	return string(data), nil
}

// ListDocuments returns the document names archived under a collection.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]string, error) {
	prefix := path.Join("collections", collection) + "/"

	seen := make(map[string]bool)
	var documents []string
	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		rest := strings.TrimPrefix(object.Key, prefix)
		name, _, found := strings.Cut(rest, "/")
		if !found || seen[name] {
			continue
		}
		seen[name] = true
		documents = append(documents, name)
	}
	return documents, nil
}

// DeleteDocument removes every archived object for a document.
func (c *Client) DeleteDocument(ctx context.Context, collection, documentName string) error {
	prefix := objectPrefix(collection, documentName) + "/"

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if err := c.minioClient.RemoveObject(ctx, c.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", object.Key, err)
		}
	}
	return nil
}
