package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client putObjectAPI
	bucket string
}

// NewS3Uploader resolves credentials from the default AWS chain.
func NewS3Uploader(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, errors.New("export: bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}
	return &S3Uploader{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("export: put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

func (u *S3Uploader) Bucket() string { return u.bucket }
