package aws

import (
	"context"
	"fmt"
	"io"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores uploaded product images in a bucket and returns the
// public URL of each object.
type S3Uploader struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Client creates a path-style S3 client, which LocalStack requires.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// NewS3Uploader returns an uploader for bucket. publicBaseURL, when set
// (a CDN domain for example), replaces the default virtual-hosted S3 URL.
func NewS3Uploader(client s3API, region, bucket, prefix, publicBaseURL string) *S3Uploader {
	baseURL := strings.TrimSuffix(publicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	} else if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		baseURL: baseURL,
	}
}

// Upload writes body under prefix+name and returns the object URL.
func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := u.prefix + name
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(u.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}
	return u.baseURL + "/" + key, nil
}
