package storage

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/baechuer/go-api-starter/internal/domain"
)

// Config carries the S3/MinIO connection settings.
type Config struct {
	Endpoint string
	// ExternalEndpoint is what browsers can reach; presigned URLs are
	// signed against it. Falls back to Endpoint when empty.
	ExternalEndpoint string
	AccessKeyID      string
	SecretAccessKey  string
	Region           string
	UsePathStyle     bool
	Bucket           string
}

// S3Client wraps the AWS S3 client for MinIO/R2/AWS. Presigned GET URLs
// are signed against the external endpoint so they stay valid outside
// the compose network.
type S3Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	log       zerolog.Logger
}

func New(ctx context.Context, cfg Config, log zerolog.Logger) (*S3Client, error) {
	client, err := newClient(ctx, cfg, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	external := cfg.ExternalEndpoint
	if external == "" {
		external = cfg.Endpoint
	}
	externalClient, err := newClient(ctx, cfg, external)
	if err != nil {
		return nil, err
	}

	return &S3Client{
		client:    client,
		presigner: s3.NewPresignClient(externalClient),
		bucket:    cfg.Bucket,
		log:       log,
	}, nil
}

func newClient(ctx context.Context, cfg Config, endpoint string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
			}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Put uploads an object with its size and content type pinned.
func (c *S3Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return domain.ErrStorageUnavailable(err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for key.
func (c *S3Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", domain.ErrStorageUnavailable(err)
	}
	return req.URL, nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return domain.ErrStorageUnavailable(err)
	}
	return nil
}

// EnsureBucket creates the upload bucket if it does not exist.
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return nil
	}

	c.log.Info().Str("bucket", c.bucket).Msg("creating bucket")
	_, err = c.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return domain.ErrStorageUnavailable(err)
	}
	return nil
}
