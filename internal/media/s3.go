// Package media stores uploaded product images in S3-compatible storage.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutAPI is the part of the S3 upload manager the uploader needs.
type PutAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Uploader struct {
	api     PutAPI
	bucket  string
	baseURL string
}

// NewS3Uploader loads the default AWS configuration (env, shared config,
// instance role) and returns an uploader for bucket. When baseURL is empty the
// upload manager's object location is returned as the public URL.
func NewS3Uploader(ctx context.Context, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return NewUploader(manager.NewUploader(client), bucket, baseURL), nil
}

func NewUploader(api PutAPI, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{api: api, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	out, err := u.api.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	if u.baseURL != "" {
		return u.baseURL + "/" + key, nil
	}
	return out.Location, nil
}
