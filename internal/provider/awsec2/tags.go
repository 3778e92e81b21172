package awsec2

import (
	"context"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetTags returns the instance's full tag map via a fresh describe call.
func (p *Provider) GetTags(ctx context.Context, id string) (map[string]string, error) {
	inst, err := p.Describe(ctx, id)
	if err != nil {
		return nil, err
	}
	return inst.Tags, nil
}

// CreateTags upserts tags on the instance.
func (p *Provider) CreateTags(ctx context.Context, id string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}

	ec2Tags := make([]ec2types.Tag, 0, len(tags))
	for k, v := range tags {
		ec2Tags = append(ec2Tags, ec2types.Tag{Key: strptr(k), Value: strptr(v)})
	}

	_, err := p.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      ec2Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to create tags on %s: %w", id, err)
	}

	logx.Debug("Created %d tag(s) on instance %s", len(tags), id)
	return nil
}

// DeleteTags removes the given tag keys from the instance. Absent keys are
// ignored by the API.
func (p *Provider) DeleteTags(ctx context.Context, id string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	ec2Tags := make([]ec2types.Tag, 0, len(keys))
	for _, k := range keys {
		ec2Tags = append(ec2Tags, ec2types.Tag{Key: strptr(k)})
	}

	_, err := p.client.DeleteTags(ctx, &ec2.DeleteTagsInput{
		Resources: []string{id},
		Tags:      ec2Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to delete tags on %s: %w", id, err)
	}

	logx.Debug("Deleted %d tag(s) on instance %s", len(keys), id)
	return nil
}
