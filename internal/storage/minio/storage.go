// Package minio provides an S3-compatible storage backend for processed images.
package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage stores processed images as objects in a MinIO bucket, keyed by
// the same relative paths the local backend uses on disk.
type Storage struct {
	client     *minio.Client
	bucketName string
}

// NewStorage connects to the MinIO server and ensures the bucket exists.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Save uploads src under relPath in the bucket and returns the object name.
func (s *Storage) Save(ctx context.Context, relPath string, src io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, relPath, src, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to save object: %w", err)
	}

	return relPath, nil
}

// Load retrieves the object at relPath and returns a reader.
func (s *Storage) Load(ctx context.Context, relPath string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, relPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load object: %w", err)
	}

	return obj, nil
}

// Delete removes the object at relPath.
func (s *Storage) Delete(ctx context.Context, relPath string) error {
	return s.client.RemoveObject(ctx, s.bucketName, relPath, minio.RemoveObjectOptions{})
}
