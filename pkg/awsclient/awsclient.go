// Package awsclient builds the shared aws.Config used by every AWS-backed
// driver (DynamoDB record store, S3 disk, SQS queue, SNS publisher).
package awsclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/shashiranjanraj/shopfront/config"
)

var (
	once   sync.Once
	cached aws.Config
	errCfg error
)

// Config loads the default AWS configuration once per process, applying the
// region, optional static credentials (AWS_KEY/AWS_SECRET) and honouring the
// standard SDK credential chain otherwise.
func Config(ctx context.Context) (aws.Config, error) {
	once.Do(func() {
		opts := []func(*awscfg.LoadOptions) error{
			awscfg.WithRegion(config.AWSRegion()),
		}

		// Static credentials are needed for LocalStack / MinIO.
		if key, secret := config.AWSKey(), config.AWSSecret(); key != "" && secret != "" {
			opts = append(opts, awscfg.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(key, secret, ""),
			))
		}

		cached, errCfg = awscfg.LoadDefaultConfig(ctx, opts...)
		if errCfg != nil {
			errCfg = fmt.Errorf("awsclient: load config: %w", errCfg)
		}
	})
	return cached, errCfg
}

// Endpoint returns the endpoint override (empty for real AWS).
func Endpoint() *string {
	if ep := config.AWSEndpoint(); ep != "" {
		return aws.String(ep)
	}
	return nil
}
