package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

type nopAPI struct{}

func (nopAPI) Describe(ctx context.Context, id string) (*model.Instance, error) {
	return nil, ErrInstanceNotFound
}
func (nopAPI) DescribeByName(ctx context.Context, name string) ([]*model.Instance, error) {
	return nil, nil
}
func (nopAPI) List(ctx context.Context) ([]*model.Instance, error)          { return nil, nil }
func (nopAPI) Start(ctx context.Context, id string) (*model.StateChange, error) { return nil, nil }
func (nopAPI) Stop(ctx context.Context, id string) (*model.StateChange, error)  { return nil, nil }
func (nopAPI) Reboot(ctx context.Context, id string) error                      { return nil }
func (nopAPI) GetTags(ctx context.Context, id string) (map[string]string, error) {
	return nil, nil
}
func (nopAPI) CreateTags(ctx context.Context, id string, tags map[string]string) error { return nil }
func (nopAPI) DeleteTags(ctx context.Context, id string, keys []string) error          { return nil }

func TestRegistry(t *testing.T) {
	t.Cleanup(UnregisterAll)
	UnregisterAll()

	Register("aws", nopAPI{})

	api, err := Get("aws")
	require.NoError(t, err)
	assert.NotNil(t, api)

	_, err = Get("gcp")
	assert.Error(t, err)

	assert.Equal(t, []string{"aws"}, List())

	assert.Panics(t, func() { Register("aws", nopAPI{}) })
	assert.Panics(t, func() { Register("nil", nil) })
}
