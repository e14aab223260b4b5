package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3API is the subset of *s3.Client used here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options configures an S3Store. EndpointURL targets S3-compatible services
// (MinIO, Backblaze B2, Supabase storage) with path-style addressing.
type S3Options struct {
	Region          string
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL overrides the computed public URL prefix when set.
	PublicBaseURL string
	// Buckets are checked with HeadBucket at startup.
	Buckets []string
}

// S3Store stores objects in S3 or an S3-compatible service.
type S3Store struct {
	client s3API
	opts   S3Options
	logger *zap.Logger
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store builds the client from static credentials and checks that every bucket
// is reachable. An unreachable bucket is logged, not fatal: uploads will fail with a
// storage error instead.
func NewS3Store(ctx context.Context, opts S3Options, logger *zap.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
			o.UsePathStyle = true
		}
	})

	store := newS3StoreWithClient(client, opts, logger)
	for _, bucket := range opts.Buckets {
		if bucket == "" {
			continue
		}
		if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
			logger.Warn("S3 bucket not accessible", zap.String("bucket", bucket), zap.Error(err))
		}
	}
	logger.Info("S3 object store initialized", zap.String("region", opts.Region), zap.String("endpoint", opts.EndpointURL))
	return store, nil
}

func newS3StoreWithClient(client s3API, opts S3Options, logger *zap.Logger) *S3Store {
	return &S3Store{client: client, opts: opts, logger: logger.Named("s3_store")}
}

func (s *S3Store) Upload(ctx context.Context, bucket, key string, file *File) error {
	if file == nil || file.Content == nil {
		return fmt.Errorf("file cannot be nil")
	}
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(clean),
		Body:   file.Content,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", bucket), zap.String("key", clean), zap.Error(err))
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, clean, err)
	}
	return nil
}

func (s *S3Store) PublicURL(bucket, key string) string {
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimRight(s.opts.PublicBaseURL, "/") + "/" + bucket + "/" + escapeKey(key)
	case s.opts.EndpointURL != "":
		return strings.TrimRight(s.opts.EndpointURL, "/") + "/" + bucket + "/" + escapeKey(key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.opts.Region, escapeKey(key))
	}
}

func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.logger.Error("DeleteObject failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete %s/%s: %w", bucket, key, err)
	}
	return nil
}
