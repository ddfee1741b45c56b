package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"school-site-console/app/server/constants"
)

// Store talks to the storage gateway. Writes go through the S3 API mounted
// at {endpoint}/s3, reads are plain HTTP URLs under {endpoint}/object/...,
// either public or presigned.
type Store struct {
	l *zap.Logger

	client    *s3.Client        // write API
	presigner *s3.PresignClient // issues /object/sign/... URLs

	endpoint string
	bucket   string
}

type Options struct {
	Endpoint  string // gateway base URL, no trailing slash
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func New(ctx context.Context, opts Options, l *zap.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint + constants.StorageS3PathPrefix)
		o.UsePathStyle = true
	})

	// A separate client pointed at the read path, so presigned GET URLs come
	// out in the gateway's /object/sign/{bucket}/{key} shape.
	signClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint + strings.TrimSuffix(constants.StorageSignObjectPath, "/"))
		o.UsePathStyle = true
	})

	return &Store{
		l:         l,
		client:    client,
		presigner: s3.NewPresignClient(signClient),
		endpoint:  opts.Endpoint,
		bucket:    opts.Bucket,
	}, nil
}

// Upload writes an object. With upsert disabled an existing object under the
// same key is a conflict, not a silent overwrite.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string, upsert bool) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if !upsert {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

// PublicURL builds the public retrieval URL for a key. No network call, the
// bucket is assumed public-read.
func (s *Store) PublicURL(key string) string {
	return s.endpoint + constants.StoragePublicObjectPath + s.bucket + "/" + key
}

// SignedURL issues a time-limited retrieval URL. Returns nil on any provider
// error: callers degrade to showing no asset rather than failing the request.
func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) *string {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.l.Warn("failed to presign object url", zap.String("key", key), zap.Error(err))
		return nil
	}

	return &req.URL
}

// Remove deletes objects best-effort. Errors are logged and swallowed: an
// object left behind after a failed delete is an accepted outcome here, the
// cleanup queue is the path that retries.
func (s *Store) Remove(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}

	ids := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
	}

	res, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: ids,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		s.l.Warn("failed to remove objects", zap.Strings("keys", keys), zap.Error(err))
		return
	}
	for _, e := range res.Errors {
		s.l.Warn("failed to remove object",
			zap.String("key", aws.ToString(e.Key)),
			zap.String("message", aws.ToString(e.Message)),
		)
	}
}

// Delete removes a single object and reports the failure, for callers that
// retry (the sweeper). Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// ExtractKey recovers the object key behind a stored asset reference, see
// ParseAssetRef. Empty string when the value holds no usable key.
func (s *Store) ExtractKey(raw string) string {
	return ParseAssetRef(raw, s.bucket).Key
}
