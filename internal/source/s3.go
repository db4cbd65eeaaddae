package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of *s3.Client used for reads.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the S3 client. Endpoint is set for MinIO-style servers.
type S3Config struct {
	Region   string
	Endpoint string
	Key      string
	Secret   string
}

// S3Opener streams s3://bucket/key objects.
type S3Opener struct {
	client ObjectGetter
}

// NewS3Opener wraps an existing client.
func NewS3Opener(client ObjectGetter) *S3Opener {
	return &S3Opener{client: client}
}

// NewS3Client builds an S3 client from cfg and the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}

	// Static credentials (required for MinIO / R2 / Spaces)
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	clientOpts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(location string) (bucket, key string, err error) {
	if !strings.HasPrefix(strings.ToLower(location), "s3://") {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	rest := location[len("s3://"):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location must be s3://bucket/key, got %q", location)
	}
	return bucket, key, nil
}

func (o *S3Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(location)
	if err != nil {
		return nil, err
	}
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s: %w", location, err)
	}
	return out.Body, nil
}
