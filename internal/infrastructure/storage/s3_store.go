package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var ErrMissingBucket = errors.New("assets bucket not configured")

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps rendered proposal documents in a private bucket and hands out
// time-limited GET links.
type S3Store struct {
	client    s3PutAPI
	presigner *s3.PresignClient
	bucket    string
	logger    *zap.Logger
}

var _ interfaces.IAssetStore = (*S3Store)(nil)

// S3StoreConfig holds the bucket settings. Endpoint is optional (MinIO,
// LocalStack).
type S3StoreConfig struct {
	Bucket       string
	Endpoint     string
	UsePathStyle bool
}

func NewS3Store(awsCfg aws.Config, cfg S3StoreConfig, l *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, s3.NewPresignClient(client), cfg.Bucket, l), nil
}

func newS3Store(client s3PutAPI, presigner *s3.PresignClient, bucket string, l *zap.Logger) *S3Store {
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		logger:    logger.OrNop(l),
	}
}

// Upload writes data under key and returns key.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.Error("[storage][s3] upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	s.logger.Debug("[storage][s3] uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return req.URL, nil
}
