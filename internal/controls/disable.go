package controls

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// ParseHours parses a duration expression of the form "<integer>h" with a
// minimum of 1 hour. There is no upper bound.
func ParseHours(text string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if !strings.HasSuffix(s, "h") {
		return 0, fmt.Errorf("duration %q must end with 'h'", text)
	}

	hours, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in duration %q", text)
	}
	if hours < 1 {
		return 0, fmt.Errorf("duration must be at least 1 hour, got %d", hours)
	}
	return hours, nil
}

// DisableScheduleManager stores a temporary "schedule suspended until T"
// marker as an instance tag. Expiry is computed at read time; an expired
// marker stays on the instance until something explicitly clears it.
type DisableScheduleManager struct {
	api  provider.InstanceAPI
	gate *Gate

	// now is swappable for tests.
	now func() time.Time
}

// NewDisableScheduleManager creates a disable-schedule manager.
func NewDisableScheduleManager(api provider.InstanceAPI, gate *Gate) *DisableScheduleManager {
	return &DisableScheduleManager{
		api:  api,
		gate: gate,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Set suspends schedule enforcement for the given number of hours from now,
// overwriting any prior marker.
func (m *DisableScheduleManager) Set(ctx context.Context, id string, hours int) (time.Time, error) {
	if !m.gate.AllowsID(ctx, id) {
		return time.Time{}, ErrNotControllable
	}

	until := m.now().Add(time.Duration(hours) * time.Hour)
	err := m.api.CreateTags(ctx, id, map[string]string{
		model.TagScheduleDisableUntil: until.Format(time.RFC3339),
	})
	if err != nil {
		return time.Time{}, err
	}

	logx.Info("Schedule disabled for %s until %s (%dh)", id, until.Format(time.RFC3339), hours)
	return until, nil
}

// Get returns the marker instant, or nil when the tag is missing or does
// not parse. A value without an offset is read as UTC.
func (m *DisableScheduleManager) Get(ctx context.Context, id string) (*time.Time, error) {
	tags, err := m.api.GetTags(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, ok := tags[model.TagScheduleDisableUntil]
	if !ok || raw == "" {
		return nil, nil
	}

	until, err := parseMarker(raw)
	if err != nil {
		logx.Warn("Unparseable disable marker on %s: %q", id, raw)
		return nil, nil
	}
	return &until, nil
}

// IsCurrentlyDisabled reports whether an unexpired marker exists.
func (m *DisableScheduleManager) IsCurrentlyDisabled(ctx context.Context, id string) (bool, error) {
	until, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return until != nil && m.now().Before(*until), nil
}

// Clear deletes the marker. Idempotent.
func (m *DisableScheduleManager) Clear(ctx context.Context, id string) error {
	if !m.gate.AllowsID(ctx, id) {
		return ErrNotControllable
	}

	err := m.api.DeleteTags(ctx, id, []string{model.TagScheduleDisableUntil})
	if err != nil {
		return err
	}

	logx.Info("Disable schedule cleared for %s", id)
	return nil
}

// FormatDisableSchedule renders the remaining suspension for chat display.
func (m *DisableScheduleManager) FormatDisableSchedule(until *time.Time) string {
	return FormatDisableScheduleAt(until, m.now())
}

// FormatDisableScheduleAt renders the suspension remaining at a given
// instant. Whole hours and minutes only.
func FormatDisableScheduleAt(until *time.Time, now time.Time) string {
	if until == nil {
		return "No disable schedule set"
	}

	remaining := until.Sub(now)
	if remaining <= 0 {
		return "No disable schedule set (expired)"
	}

	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("Disabled for %dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("Disabled for %dh", hours)
	default:
		return fmt.Sprintf("Disabled for %dm", minutes)
	}
}

// parseMarker reads an ISO-8601 instant, assuming UTC when the stored value
// carries no offset.
func parseMarker(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
