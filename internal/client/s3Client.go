package client

import (
	"context"
	"digital-storefront/internal/config"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AssetPresigner produces time-limited download URLs for product files.
type AssetPresigner interface {
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

type s3PresignerImpl struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

func NewS3Presigner(ctx context.Context, cfg *config.Storage) (AssetPresigner, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3PresignerImpl{
		presign: s3.NewPresignClient(s3Client),
		bucket:  cfg.Bucket,
		ttl:     cfg.PresignTTL,
		now:     time.Now,
	}, nil
}

func (p *s3PresignerImpl) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := p.now().Add(p.ttl).UTC()

	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign get object: %w", err)
	}

	return req.URL, expiresAt, nil
}
