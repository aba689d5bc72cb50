package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/panelmgmt/pms-core/config"
	"github.com/rs/zerolog/log"
)

// BlobStore persists derived JSON artifacts keyed by "panelId/name". The
// distribution and cluster snapshots go through here; they are written in a
// single put only after the full computation succeeds.
type BlobStore interface {
	PutJSON(ctx context.Context, key string, value any) error
	GetJSON(ctx context.Context, key string, dest any) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ErrBlobNotFound is returned when the requested artifact does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// S3BlobStore talks to S3/R2/MinIO compatible storage.
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

func NewS3BlobStore(cfg *config.Config) BlobStore {
	opts := func(o *s3.Options) {
		o.Region = cfg.S3.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	log.Info().Str("bucket", cfg.S3.Bucket).Str("endpoint", cfg.S3.Endpoint).Msg("S3 blob store initialized")
	return &S3BlobStore{client: client, bucket: cfg.S3.Bucket}
}

func (s *S3BlobStore) PutJSON(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put artifact %s: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) GetJSON(ctx context.Context, key string, dest any) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("failed to get artifact %s: %w", key, err)
	}
	defer out.Body.Close()

	if err := json.NewDecoder(out.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head artifact %s: %w", key, err)
	}
	return true, nil
}
