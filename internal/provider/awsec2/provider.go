package awsec2

import (
	"context"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// Provider implements provider.InstanceAPI against the AWS EC2 API.
type Provider struct {
	region string
	client ec2API
}

// compile-time check
var _ provider.InstanceAPI = (*Provider)(nil)

// New creates an EC2-backed provider for the given region and credentials.
func New(ctx context.Context, opts Options) (*Provider, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	client, err := newEC2Client(ctx, opts)
	if err != nil {
		return nil, err
	}

	logx.Info("AWS EC2 provider initialized, region %s", opts.Region)

	return &Provider{
		region: opts.Region,
		client: client,
	}, nil
}

// Region returns the region this provider operates in.
func (p *Provider) Region() string {
	return p.region
}
