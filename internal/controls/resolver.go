package controls

import (
	"context"
	"errors"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

var (
	// ErrNotFound means no controllable instance matched the token.
	ErrNotFound = errors.New("instance not found")

	// ErrAmbiguous means a name matched more than one controllable
	// instance. Ambiguity is always an error; the resolver never guesses.
	ErrAmbiguous = errors.New("instance name is ambiguous")
)

// Resolver turns a user-supplied token into exactly one instance ID.
type Resolver struct {
	api  provider.InstanceAPI
	gate *Gate
}

// NewResolver creates a resolver backed by the provider's name lookup.
func NewResolver(api provider.InstanceAPI, gate *Gate) *Resolver {
	return &Resolver{api: api, gate: gate}
}

// Resolve maps token to an instance ID. ID-shaped tokens are returned as-is
// without a lookup; existence surfaces at the next provider call. Anything
// else is treated as a Name tag value and must match exactly one
// controllable, non-terminated instance.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	if model.IsInstanceID(token) {
		return token, nil
	}

	instances, err := r.api.DescribeByName(ctx, token)
	if err != nil {
		return "", fmt.Errorf("name lookup for %q failed: %w", token, err)
	}

	var matches []*model.Instance
	for _, inst := range instances {
		if r.gate.Allows(inst) {
			matches = append(matches, inst)
		}
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0].ID, nil
	default:
		logx.Warn("Name %q matched %d instances, refusing to guess", token, len(matches))
		return "", ErrAmbiguous
	}
}
