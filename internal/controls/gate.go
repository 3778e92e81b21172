package controls

import (
	"context"
	"errors"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// ErrNotControllable means the instance has not opted in to control by this
// service. Every mutating operation refuses with it when the gate fails.
var ErrNotControllable = errors.New("instance is not controllable")

// falsyTagValues are the spellings of the controls-enabled tag that disable
// control. Any other non-empty value opts the instance in.
var falsyTagValues = map[string]struct{}{
	"false":    {},
	"0":        {},
	"no":       {},
	"disabled": {},
	"off":      {},
}

// Gate decides whether this service may act on an instance at all. The
// decision is recomputed from the tag on every check; a missing or empty tag
// means not controllable.
type Gate struct {
	api provider.InstanceAPI
}

// NewGate creates a controllability gate.
func NewGate(api provider.InstanceAPI) *Gate {
	return &Gate{api: api}
}

// Allows reports whether the instance's tags opt it in to control.
func (g *Gate) Allows(inst *model.Instance) bool {
	return ControlsEnabled(inst.Tags)
}

// AllowsID reports controllability for an instance ID, reading tags fresh.
// A lookup failure counts as not controllable.
func (g *Gate) AllowsID(ctx context.Context, id string) bool {
	tags, err := g.api.GetTags(ctx, id)
	if err != nil {
		logx.Warn("Controllability check failed for %s: %v", id, err)
		return false
	}
	return ControlsEnabled(tags)
}

// ControlsEnabled evaluates the controls-enabled tag value from a tag map.
func ControlsEnabled(tags map[string]string) bool {
	value, ok := tags[model.TagControlsEnabled]
	if !ok || value == "" {
		return false
	}
	_, falsy := falsyTagValues[strings.ToLower(strings.TrimSpace(value))]
	return !falsy
}
