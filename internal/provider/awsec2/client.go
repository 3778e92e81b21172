package awsec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// Options configures the AWS EC2 client.
type Options struct {
	Region          string
	AccessKeyID     string // optional; default credential chain when empty
	SecretAccessKey string
}

// newEC2Client builds an EC2 client for the configured region. Static
// credentials take precedence over the default chain when both keys are set.
func newEC2Client(ctx context.Context, opts Options) (*ec2.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return ec2.NewFromConfig(cfg), nil
}

// aws.String is used pervasively below; alias the helpers for brevity.
var (
	strptr = aws.String
	strval = aws.ToString
)
