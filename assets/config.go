package assets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig describes how to reach the object store. Endpoint and
// the static credential pair are optional: left empty, the client uses
// the default AWS credential chain and endpoints. Setting Endpoint
// switches to path-style addressing for S3-compatible stores (MinIO,
// localstack).
type ClientConfig struct {
	Region    string
	Bucket    string
	BaseURL   string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3StoreFromConfig builds the S3 client from cfg and returns the
// avatar store.
func NewS3StoreFromConfig(ctx context.Context, cfg ClientConfig) (*S3Store, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("assets: region is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Store(client, cfg.Bucket, cfg.BaseURL)
}
