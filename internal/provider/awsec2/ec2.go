package awsec2

import (
	"context"
	"errors"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// ec2API is the subset of the EC2 client this provider uses.
type ec2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, opts ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StartInstances(ctx context.Context, in *ec2.StartInstancesInput, opts ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, in *ec2.StopInstancesInput, opts ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	RebootInstances(ctx context.Context, in *ec2.RebootInstancesInput, opts ...func(*ec2.Options)) (*ec2.RebootInstancesOutput, error)
	CreateTags(ctx context.Context, in *ec2.CreateTagsInput, opts ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	DeleteTags(ctx context.Context, in *ec2.DeleteTagsInput, opts ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error)
}

// nonTerminatedStates is the instance-state-name filter applied to every
// listing; terminated instances are invisible to this service.
var nonTerminatedStates = []string{
	string(model.StatePending),
	string(model.StateRunning),
	string(model.StateStopping),
	string(model.StateStopped),
}

// Describe returns a single instance by ID.
func (p *Provider) Describe(ctx context.Context, id string) (*model.Instance, error) {
	out, err := p.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to describe instance %s: %w", id, err)
	}

	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			m := toModel(inst)
			if m.State == model.StateTerminated {
				continue
			}
			return m, nil
		}
	}
	return nil, provider.ErrInstanceNotFound
}

// DescribeByName returns all non-terminated instances whose Name tag equals
// name exactly.
func (p *Provider) DescribeByName(ctx context.Context, name string) ([]*model.Instance, error) {
	out, err := p.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: strptr("tag:" + model.TagName), Values: []string{name}},
			{Name: strptr("instance-state-name"), Values: nonTerminatedStates},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances by name %q: %w", name, err)
	}
	return collect(out), nil
}

// List returns all non-terminated instances in the region.
func (p *Provider) List(ctx context.Context) ([]*model.Instance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: strptr("instance-state-name"), Values: nonTerminatedStates},
		},
	}

	var instances []*model.Instance
	for {
		out, err := p.client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list instances: %w", err)
		}
		instances = append(instances, collect(out)...)

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	logx.Debug("Listed %d instances in region %s", len(instances), p.region)
	return instances, nil
}

// Start requests an instance start and returns the reported state change.
func (p *Provider) Start(ctx context.Context, id string) (*model.StateChange, error) {
	out, err := p.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start instance %s: %w", id, err)
	}

	logx.Info("Started instance %s", id)
	if len(out.StartingInstances) == 0 {
		return &model.StateChange{}, nil
	}
	return toStateChange(out.StartingInstances[0]), nil
}

// Stop requests an instance stop and returns the reported state change.
func (p *Provider) Stop(ctx context.Context, id string) (*model.StateChange, error) {
	out, err := p.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to stop instance %s: %w", id, err)
	}

	logx.Info("Stopped instance %s", id)
	if len(out.StoppingInstances) == 0 {
		return &model.StateChange{}, nil
	}
	return toStateChange(out.StoppingInstances[0]), nil
}

// Reboot requests an instance reboot. The EC2 API reports no state change
// for reboots.
func (p *Provider) Reboot(ctx context.Context, id string) error {
	_, err := p.client.RebootInstances(ctx, &ec2.RebootInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return fmt.Errorf("failed to reboot instance %s: %w", id, err)
	}

	logx.Info("Rebooted instance %s", id)
	return nil
}

// collect flattens reservations into model instances.
func collect(out *ec2.DescribeInstancesOutput) []*model.Instance {
	var instances []*model.Instance
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			instances = append(instances, toModel(inst))
		}
	}
	return instances
}

// toModel converts an SDK instance to the service model.
func toModel(inst ec2types.Instance) *model.Instance {
	tags := make(map[string]string, len(inst.Tags))
	for _, t := range inst.Tags {
		tags[strval(t.Key)] = strval(t.Value)
	}

	m := &model.Instance{
		ID:   strval(inst.InstanceId),
		Name: tags[model.TagName],
		Tags: tags,
	}
	if inst.State != nil {
		m.State = model.LifecycleState(inst.State.Name)
	}
	return m
}

// toStateChange converts the SDK's previous/current pair.
func toStateChange(sc ec2types.InstanceStateChange) *model.StateChange {
	change := &model.StateChange{}
	if sc.PreviousState != nil {
		change.Previous = model.LifecycleState(sc.PreviousState.Name)
	}
	if sc.CurrentState != nil {
		change.Current = model.LifecycleState(sc.CurrentState.Name)
	}
	return change
}

// isNotFound reports whether err is the EC2 API's unknown-instance error.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "InvalidInstanceID.NotFound" || code == "InvalidInstanceID.Malformed"
	}
	return false
}
