package controls

import (
	"context"
	"sort"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// fakeAPI is an in-memory InstanceAPI for tests. Start/Stop report a state
// change without mutating the stored state, mirroring the provider's
// eventual-consistency window; tests flip states explicitly.
type fakeAPI struct {
	instances map[string]*model.Instance

	describeErr error
	listErr     error
	startErr    error
	stopErr     error
	rebootErr   error
	tagErr      error

	nameLookups int
	startCalls  int
	stopCalls   int
	rebootCalls int
}

var _ provider.InstanceAPI = (*fakeAPI)(nil)

func newFakeAPI(instances ...*model.Instance) *fakeAPI {
	f := &fakeAPI{instances: make(map[string]*model.Instance)}
	for _, inst := range instances {
		if inst.Tags == nil {
			inst.Tags = make(map[string]string)
		}
		f.instances[inst.ID] = inst
	}
	return f
}

// controllable builds a controllable instance for tests.
func controllable(id, name string, state model.LifecycleState) *model.Instance {
	tags := map[string]string{model.TagControlsEnabled: "true"}
	if name != "" {
		tags[model.TagName] = name
	}
	return &model.Instance{ID: id, Name: name, State: state, Tags: tags}
}

func (f *fakeAPI) Describe(ctx context.Context, id string) (*model.Instance, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	inst, ok := f.instances[id]
	if !ok || inst.State == model.StateTerminated {
		return nil, provider.ErrInstanceNotFound
	}
	return inst, nil
}

func (f *fakeAPI) DescribeByName(ctx context.Context, name string) ([]*model.Instance, error) {
	f.nameLookups++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matches []*model.Instance
	for _, inst := range f.instances {
		if inst.Name == name && inst.State != model.StateTerminated {
			matches = append(matches, inst)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (f *fakeAPI) List(ctx context.Context) ([]*model.Instance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var all []*model.Instance
	for _, inst := range f.instances {
		if inst.State != model.StateTerminated {
			all = append(all, inst)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (f *fakeAPI) Start(ctx context.Context, id string) (*model.StateChange, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	inst := f.instances[id]
	return &model.StateChange{Previous: inst.State, Current: model.StatePending}, nil
}

func (f *fakeAPI) Stop(ctx context.Context, id string) (*model.StateChange, error) {
	f.stopCalls++
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	inst := f.instances[id]
	return &model.StateChange{Previous: inst.State, Current: model.StateStopping}, nil
}

func (f *fakeAPI) Reboot(ctx context.Context, id string) error {
	f.rebootCalls++
	return f.rebootErr
}

func (f *fakeAPI) GetTags(ctx context.Context, id string) (map[string]string, error) {
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	inst, ok := f.instances[id]
	if !ok {
		return nil, provider.ErrInstanceNotFound
	}
	tags := make(map[string]string, len(inst.Tags))
	for k, v := range inst.Tags {
		tags[k] = v
	}
	return tags, nil
}

func (f *fakeAPI) CreateTags(ctx context.Context, id string, tags map[string]string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	inst, ok := f.instances[id]
	if !ok {
		return provider.ErrInstanceNotFound
	}
	for k, v := range tags {
		inst.Tags[k] = v
	}
	return nil
}

func (f *fakeAPI) DeleteTags(ctx context.Context, id string, keys []string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	inst, ok := f.instances[id]
	if !ok {
		return provider.ErrInstanceNotFound
	}
	for _, k := range keys {
		delete(inst.Tags, k)
	}
	return nil
}
