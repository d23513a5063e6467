package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config holds object-storage configuration.
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	Region             string
	Bucket             string
}

// S3Store stores file bytes in an S3 bucket under generated keys and hands
// out public URLs. Only metadata lives in the relational store.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store creates an object store backed by S3.
func NewS3Store(cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// GenerateKey returns a collision-resistant object key preserving the
// original file extension.
func GenerateKey(originalName string) string {
	ext := strings.TrimPrefix(filepath.Ext(originalName), ".")
	key := fmt.Sprintf("knowledge-base/%d-%s", time.Now().UnixMilli(), uuid.NewString())
	if ext != "" {
		key += "." + ext
	}
	return key
}

// Upload stores the bytes under key and returns the public URL.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// Delete removes the object addressed by a key or a public URL.
func (s *S3Store) Delete(ctx context.Context, pathOrURL string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(KeyFromURL(pathOrURL)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PublicURL returns the fetchable URL of an object key. The bucket policy
// is expected to allow public reads.
func (s *S3Store) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// KeyFromURL extracts the object key from a public URL, passing through
// values that are already bare keys.
func KeyFromURL(pathOrURL string) string {
	if idx := strings.Index(pathOrURL, ".amazonaws.com/"); idx >= 0 {
		return pathOrURL[idx+len(".amazonaws.com/"):]
	}
	return pathOrURL
}
