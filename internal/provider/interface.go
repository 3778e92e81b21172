package provider

import (
	"context"
	"errors"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

// ErrInstanceNotFound is returned by Describe when the provider has no
// instance with the given ID.
var ErrInstanceNotFound = errors.New("instance not found")

// InstanceAPI is the narrow port in front of the cloud provider's control
// plane. Every piece of service state is read and written through it; the
// store offers no transactions, so read-then-write sequences are
// last-writer-wins by design.
type InstanceAPI interface {
	// Describe returns a single instance by ID, ErrInstanceNotFound when it
	// does not exist or is terminated.
	Describe(ctx context.Context, id string) (*model.Instance, error)

	// DescribeByName returns all non-terminated instances whose Name tag
	// equals name exactly.
	DescribeByName(ctx context.Context, name string) ([]*model.Instance, error)

	// List returns all non-terminated instances in the configured region.
	List(ctx context.Context) ([]*model.Instance, error)

	// Start, Stop and Reboot request the corresponding power transition.
	// Start and Stop return the previous/current state pair the provider
	// reports; Reboot reports no state change.
	Start(ctx context.Context, id string) (*model.StateChange, error)
	Stop(ctx context.Context, id string) (*model.StateChange, error)
	Reboot(ctx context.Context, id string) error

	// GetTags returns the instance's full tag map.
	GetTags(ctx context.Context, id string) (map[string]string, error)

	// CreateTags upserts the given tags on the instance.
	CreateTags(ctx context.Context, id string, tags map[string]string) error

	// DeleteTags removes the given tag keys. Deleting an absent key is not
	// an error.
	DeleteTags(ctx context.Context, id string, keys []string) error
}
