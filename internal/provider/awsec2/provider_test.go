package awsec2

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// stubClient answers from canned pages and records the last inputs.
type stubClient struct {
	pages       []*ec2.DescribeInstancesOutput
	describeErr error
	page        int

	lastDescribe *ec2.DescribeInstancesInput
	lastCreate   *ec2.CreateTagsInput
	lastDelete   *ec2.DeleteTagsInput
}

func (s *stubClient) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, opts ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	s.lastDescribe = in
	if s.describeErr != nil {
		return nil, s.describeErr
	}
	out := s.pages[s.page]
	if s.page < len(s.pages)-1 {
		s.page++
	}
	return out, nil
}

func (s *stubClient) StartInstances(ctx context.Context, in *ec2.StartInstancesInput, opts ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	return &ec2.StartInstancesOutput{
		StartingInstances: []ec2types.InstanceStateChange{{
			InstanceId:    strptr(in.InstanceIds[0]),
			PreviousState: &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
			CurrentState:  &ec2types.InstanceState{Name: ec2types.InstanceStateNamePending},
		}},
	}, nil
}

func (s *stubClient) StopInstances(ctx context.Context, in *ec2.StopInstancesInput, opts ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	return &ec2.StopInstancesOutput{
		StoppingInstances: []ec2types.InstanceStateChange{{
			InstanceId:    strptr(in.InstanceIds[0]),
			PreviousState: &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
			CurrentState:  &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopping},
		}},
	}, nil
}

func (s *stubClient) RebootInstances(ctx context.Context, in *ec2.RebootInstancesInput, opts ...func(*ec2.Options)) (*ec2.RebootInstancesOutput, error) {
	return &ec2.RebootInstancesOutput{}, nil
}

func (s *stubClient) CreateTags(ctx context.Context, in *ec2.CreateTagsInput, opts ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	s.lastCreate = in
	return &ec2.CreateTagsOutput{}, nil
}

func (s *stubClient) DeleteTags(ctx context.Context, in *ec2.DeleteTagsInput, opts ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error) {
	s.lastDelete = in
	return &ec2.DeleteTagsOutput{}, nil
}

// apiError is a minimal smithy.APIError for error-mapping tests.
type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func sdkInstance(id, name string, state ec2types.InstanceStateName) ec2types.Instance {
	inst := ec2types.Instance{
		InstanceId: strptr(id),
		State:      &ec2types.InstanceState{Name: state},
		Tags: []ec2types.Tag{
			{Key: strptr(model.TagControlsEnabled), Value: strptr("true")},
		},
	}
	if name != "" {
		inst.Tags = append(inst.Tags, ec2types.Tag{Key: strptr(model.TagName), Value: strptr(name)})
	}
	return inst
}

func page(instances ...ec2types.Instance) *ec2.DescribeInstancesOutput {
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: instances}},
	}
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the SDK instance", func(t *testing.T) {
		stub := &stubClient{pages: []*ec2.DescribeInstancesOutput{
			page(sdkInstance("i-0df9c53001c5c837d", "web-1", ec2types.InstanceStateNameRunning)),
		}}
		p := &Provider{region: "us-west-2", client: stub}

		inst, err := p.Describe(ctx, "i-0df9c53001c5c837d")
		require.NoError(t, err)
		assert.Equal(t, "i-0df9c53001c5c837d", inst.ID)
		assert.Equal(t, "web-1", inst.Name)
		assert.Equal(t, model.StateRunning, inst.State)
		assert.Equal(t, "true", inst.Tags[model.TagControlsEnabled])
	})

	t.Run("unknown ID maps to the not-found sentinel", func(t *testing.T) {
		stub := &stubClient{describeErr: &apiError{code: "InvalidInstanceID.NotFound"}}
		p := &Provider{region: "us-west-2", client: stub}

		_, err := p.Describe(ctx, "i-0000000000000099")
		assert.ErrorIs(t, err, provider.ErrInstanceNotFound)
	})

	t.Run("malformed ID also maps to not found", func(t *testing.T) {
		stub := &stubClient{describeErr: &apiError{code: "InvalidInstanceID.Malformed"}}
		p := &Provider{region: "us-west-2", client: stub}

		_, err := p.Describe(ctx, "i-0000000000000099")
		assert.ErrorIs(t, err, provider.ErrInstanceNotFound)
	})

	t.Run("other API errors pass through wrapped", func(t *testing.T) {
		stub := &stubClient{describeErr: errors.New("throttled")}
		p := &Provider{region: "us-west-2", client: stub}

		_, err := p.Describe(ctx, "i-0000000000000001")
		require.Error(t, err)
		assert.NotErrorIs(t, err, provider.ErrInstanceNotFound)
	})

	t.Run("terminated instances are invisible", func(t *testing.T) {
		stub := &stubClient{pages: []*ec2.DescribeInstancesOutput{
			page(sdkInstance("i-0000000000000001", "gone", ec2types.InstanceStateNameTerminated)),
		}}
		p := &Provider{region: "us-west-2", client: stub}

		_, err := p.Describe(ctx, "i-0000000000000001")
		assert.ErrorIs(t, err, provider.ErrInstanceNotFound)
	})
}

func TestDescribeByName(t *testing.T) {
	stub := &stubClient{pages: []*ec2.DescribeInstancesOutput{
		page(
			sdkInstance("i-0000000000000001", "db-1", ec2types.InstanceStateNameStopped),
			sdkInstance("i-0000000000000002", "db-1", ec2types.InstanceStateNameRunning),
		),
	}}
	p := &Provider{region: "us-west-2", client: stub}

	instances, err := p.DescribeByName(context.Background(), "db-1")
	require.NoError(t, err)
	assert.Len(t, instances, 2)

	// The lookup filters server-side on the Name tag and live states.
	require.NotNil(t, stub.lastDescribe)
	require.Len(t, stub.lastDescribe.Filters, 2)
	assert.Equal(t, "tag:Name", strval(stub.lastDescribe.Filters[0].Name))
	assert.Equal(t, []string{"db-1"}, stub.lastDescribe.Filters[0].Values)
	assert.Equal(t, "instance-state-name", strval(stub.lastDescribe.Filters[1].Name))
}

func TestListFollowsPagination(t *testing.T) {
	stub := &stubClient{pages: []*ec2.DescribeInstancesOutput{
		{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{
				sdkInstance("i-0000000000000001", "web-1", ec2types.InstanceStateNameRunning),
			}}},
			NextToken: strptr("page-2"),
		},
		page(sdkInstance("i-0000000000000002", "web-2", ec2types.InstanceStateNameStopped)),
	}}
	p := &Provider{region: "us-west-2", client: stub}

	instances, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "i-0000000000000001", instances[0].ID)
	assert.Equal(t, "i-0000000000000002", instances[1].ID)
}

func TestStartStopReportStateChange(t *testing.T) {
	ctx := context.Background()
	p := &Provider{region: "us-west-2", client: &stubClient{}}

	change, err := p.Start(ctx, "i-0000000000000001")
	require.NoError(t, err)
	assert.Equal(t, model.StateStopped, change.Previous)
	assert.Equal(t, model.StatePending, change.Current)

	change, err = p.Stop(ctx, "i-0000000000000001")
	require.NoError(t, err)
	assert.Equal(t, model.StateRunning, change.Previous)
	assert.Equal(t, model.StateStopping, change.Current)

	assert.NoError(t, p.Reboot(ctx, "i-0000000000000001"))
}

func TestTagCalls(t *testing.T) {
	ctx := context.Background()

	t.Run("create sends key value pairs", func(t *testing.T) {
		stub := &stubClient{}
		p := &Provider{region: "us-west-2", client: stub}

		err := p.CreateTags(ctx, "i-0000000000000001", map[string]string{"ScheduleStartTime": "08:00"})
		require.NoError(t, err)
		require.NotNil(t, stub.lastCreate)
		assert.Equal(t, []string{"i-0000000000000001"}, stub.lastCreate.Resources)
		require.Len(t, stub.lastCreate.Tags, 1)
		assert.Equal(t, "ScheduleStartTime", strval(stub.lastCreate.Tags[0].Key))
		assert.Equal(t, "08:00", strval(stub.lastCreate.Tags[0].Value))
	})

	t.Run("empty maps are a no-op", func(t *testing.T) {
		stub := &stubClient{}
		p := &Provider{region: "us-west-2", client: stub}

		require.NoError(t, p.CreateTags(ctx, "i-0000000000000001", nil))
		assert.Nil(t, stub.lastCreate)
		require.NoError(t, p.DeleteTags(ctx, "i-0000000000000001", nil))
		assert.Nil(t, stub.lastDelete)
	})

	t.Run("delete sends keys only", func(t *testing.T) {
		stub := &stubClient{}
		p := &Provider{region: "us-west-2", client: stub}

		err := p.DeleteTags(ctx, "i-0000000000000001", []string{"Stakeholders"})
		require.NoError(t, err)
		require.NotNil(t, stub.lastDelete)
		require.Len(t, stub.lastDelete.Tags, 1)
		assert.Equal(t, "Stakeholders", strval(stub.lastDelete.Tags[0].Key))
		assert.Nil(t, stub.lastDelete.Tags[0].Value)
	})
}
