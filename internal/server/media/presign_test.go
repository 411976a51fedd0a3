package media

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/stockroom/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "stockroom",
		S3PresignTTL:   5 * time.Minute,
	}
}

// restoreSeams puts the real SDK functions back after a test swaps them.
func restoreSeams(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})
}

func TestClient_AppliesConfig(t *testing.T) {
	restoreSeams(t)
	p := NewS3Presigner(testConfig())

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	pc, err := p.client(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pc)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestPresign_LoadError(t *testing.T) {
	restoreSeams(t)
	p := NewS3Presigner(testConfig())

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := p.PresignPut(context.Background(), "k")
	assert.EqualError(t, err, "load-fail")
	_, err = p.PresignGet(context.Background(), "k")
	assert.EqualError(t, err, "load-fail")
}

func TestPresign_SignerErrorsAndSuccess(t *testing.T) {
	restoreSeams(t)
	p := NewS3Presigner(testConfig())

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	_, err := p.PresignPut(context.Background(), "k")
	assert.EqualError(t, err, "presign-put-fail")

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "stockroom", *in.Bucket)
		assert.Equal(t, "products/a.png", *in.Key)
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 5*time.Minute, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://signed"}, nil
	}
	u, err := p.PresignGet(context.Background(), "products/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://signed", u)
}

func TestPresign_RealSigner(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	p := NewS3Presigner(testConfig())
	raw, err := p.PresignPut(context.Background(), "products/p1/img")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/stockroom/products/p1/img"), u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}

func TestTTL_Default(t *testing.T) {
	assert.Equal(t, 15*time.Minute, NewS3Presigner(&sc.Config{}).TTL())
}

func TestProductImageKey(t *testing.T) {
	at := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	k1 := ProductImageKey("p1", at)
	k2 := ProductImageKey("p1", at)
	assert.True(t, strings.HasPrefix(k1, "products/p1/2025/02/03/"), k1)
	assert.NotEqual(t, k1, k2)
}
