// Package media stores product images in S3-compatible object storage. The
// server never proxies image bytes; clients upload and download through
// presigned URLs.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/stockroom/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Presigner signs object URLs for the configured bucket.
type S3Presigner struct {
	config *sc.Config
}

func NewS3Presigner(cfg *sc.Config) *S3Presigner {
	return &S3Presigner{config: cfg}
}

func (p *S3Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.config.S3RootUser,
			p.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// TTL is how long presigned URLs stay valid.
func (p *S3Presigner) TTL() time.Duration {
	if p.config.S3PresignTTL <= 0 {
		return 15 * time.Minute
	}
	return p.config.S3PresignTTL
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.config.S3Bucket
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.TTL()))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	bucket := p.config.S3Bucket
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.TTL()))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// ProductImageKey returns a fresh object key for an image of productID.
func ProductImageKey(productID string, at time.Time) string {
	return fmt.Sprintf("products/%s/%d/%02d/%02d/%s", productID, at.Year(), at.Month(), at.Day(), uuid.New())
}
