package controls

import (
	"context"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// MaxStakeholders caps the stakeholder list per instance.
const MaxStakeholders = 10

// stakeholderSeparator delimits the list inside the tag value.
const stakeholderSeparator = ","

// StakeholderResult names the outcome of a registry mutation.
type StakeholderResult string

const (
	StakeholderAdded         StakeholderResult = "added"
	StakeholderAlreadyMember StakeholderResult = "already_member"
	StakeholderMaxReached    StakeholderResult = "max_reached"
	StakeholderRemoved       StakeholderResult = "removed"
	StakeholderTagDeleted    StakeholderResult = "removed_and_tag_deleted"
	StakeholderNotMember     StakeholderResult = "not_member"
)

// StakeholderRegistry maintains a small deduplicated, insertion-ordered
// caller list per instance, stored as one delimited tag value. Read-then-
// write is non-atomic; concurrent callers race with last-writer-wins.
type StakeholderRegistry struct {
	api  provider.InstanceAPI
	gate *Gate
}

// NewStakeholderRegistry creates a stakeholder registry.
func NewStakeholderRegistry(api provider.InstanceAPI, gate *Gate) *StakeholderRegistry {
	return &StakeholderRegistry{api: api, gate: gate}
}

// List returns the current stakeholders in insertion order.
func (r *StakeholderRegistry) List(ctx context.Context, id string) ([]string, error) {
	tags, err := r.api.GetTags(ctx, id)
	if err != nil {
		return nil, err
	}
	return parseStakeholders(tags[model.TagStakeholders]), nil
}

// Add appends caller to the list. Re-adding an existing member reports
// StakeholderAlreadyMember without mutating; a full list reports
// StakeholderMaxReached without mutating.
func (r *StakeholderRegistry) Add(ctx context.Context, id, caller string) (StakeholderResult, error) {
	if !r.gate.AllowsID(ctx, id) {
		return "", ErrNotControllable
	}

	current, err := r.List(ctx, id)
	if err != nil {
		return "", err
	}

	for _, member := range current {
		if member == caller {
			return StakeholderAlreadyMember, nil
		}
	}
	if len(current) >= MaxStakeholders {
		return StakeholderMaxReached, nil
	}

	updated := append(current, caller)
	err = r.api.CreateTags(ctx, id, map[string]string{
		model.TagStakeholders: strings.Join(updated, stakeholderSeparator),
	})
	if err != nil {
		return "", err
	}

	logx.Info("Stakeholder %s added to %s (%d total)", caller, id, len(updated))
	return StakeholderAdded, nil
}

// Remove takes caller off the list. Removing the last member deletes the
// tag entirely rather than writing an empty value.
func (r *StakeholderRegistry) Remove(ctx context.Context, id, caller string) (StakeholderResult, error) {
	if !r.gate.AllowsID(ctx, id) {
		return "", ErrNotControllable
	}

	current, err := r.List(ctx, id)
	if err != nil {
		return "", err
	}

	remaining := make([]string, 0, len(current))
	found := false
	for _, member := range current {
		if member == caller {
			found = true
			continue
		}
		remaining = append(remaining, member)
	}
	if !found {
		return StakeholderNotMember, nil
	}

	if len(remaining) == 0 {
		if err := r.api.DeleteTags(ctx, id, []string{model.TagStakeholders}); err != nil {
			return "", err
		}
		logx.Info("Stakeholder %s removed from %s, tag deleted", caller, id)
		return StakeholderTagDeleted, nil
	}

	err = r.api.CreateTags(ctx, id, map[string]string{
		model.TagStakeholders: strings.Join(remaining, stakeholderSeparator),
	})
	if err != nil {
		return "", err
	}

	logx.Info("Stakeholder %s removed from %s (%d remain)", caller, id, len(remaining))
	return StakeholderRemoved, nil
}

// Contains reports whether caller is a stakeholder. Read-only; no gate.
func (r *StakeholderRegistry) Contains(ctx context.Context, id, caller string) (bool, error) {
	current, err := r.List(ctx, id)
	if err != nil {
		return false, err
	}
	for _, member := range current {
		if member == caller {
			return true, nil
		}
	}
	return false, nil
}

// parseStakeholders splits the tag value into non-empty trimmed tokens,
// preserving order.
func parseStakeholders(value string) []string {
	if value == "" {
		return nil
	}
	var members []string
	for _, token := range strings.Split(value, stakeholderSeparator) {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			members = append(members, trimmed)
		}
	}
	return members
}
