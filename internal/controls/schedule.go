package controls

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// TimeOfDay is a wall-clock time with no date and no zone. The schedule
// executor interprets it in its own zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// String renders the stored 24-hour HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Display renders the 12-hour form, e.g. "5:30 PM".
func (t TimeOfDay) Display() string {
	suffix := "AM"
	hour := t.Hour
	if hour >= 12 {
		suffix = "PM"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, suffix)
}

// ParseTime parses a human time-of-day expression: 12-hour forms with an
// am/pm suffix ("5am", "5:30pm") and 24-hour "HH:MM". 12am is midnight,
// 12pm is noon.
func ParseTime(text string) (TimeOfDay, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return TimeOfDay{}, fmt.Errorf("empty time")
	}

	var suffix string
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		suffix = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourPart, minutePart := s, "0"
	if h, m, ok := strings.Cut(s, ":"); ok {
		hourPart, minutePart = h, m
	} else if suffix == "" {
		// 24-hour input requires minutes; a bare number is ambiguous.
		return TimeOfDay{}, fmt.Errorf("invalid time %q", text)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", text)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q", text)
	}

	if suffix != "" {
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, fmt.Errorf("invalid hour in %q", text)
		}
		if suffix == "am" && hour == 12 {
			hour = 0
		} else if suffix == "pm" && hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", text)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", text)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Schedule is a daily start/stop time pair stored in two instance tags.
type Schedule struct {
	Start TimeOfDay
	Stop  TimeOfDay
}

// FormatSchedule renders a schedule for chat display.
func FormatSchedule(s *Schedule) string {
	if s == nil {
		return "No schedule set"
	}
	return s.Start.Display() + " to " + s.Stop.Display()
}

// ScheduleManager stores and retrieves daily power schedules as instance
// tags.
type ScheduleManager struct {
	api  provider.InstanceAPI
	gate *Gate
}

// NewScheduleManager creates a schedule manager.
func NewScheduleManager(api provider.InstanceAPI, gate *Gate) *ScheduleManager {
	return &ScheduleManager{api: api, gate: gate}
}

// Get reads the instance's schedule. A missing or unparseable tag on either
// side means no schedule; partial schedules are never returned.
func (m *ScheduleManager) Get(ctx context.Context, id string) (*Schedule, error) {
	tags, err := m.api.GetTags(ctx, id)
	if err != nil {
		return nil, err
	}

	start, err := ParseTime(tags[model.TagScheduleStart])
	if err != nil {
		return nil, nil
	}
	stop, err := ParseTime(tags[model.TagScheduleStop])
	if err != nil {
		return nil, nil
	}

	return &Schedule{Start: start, Stop: stop}, nil
}

// Set writes the schedule, overwriting any previous one. The pair must be
// strictly ordered within a single day; cross-midnight schedules are
// rejected, not wrapped.
func (m *ScheduleManager) Set(ctx context.Context, id string, start, stop TimeOfDay) error {
	if !m.gate.AllowsID(ctx, id) {
		return ErrNotControllable
	}
	if !start.Before(stop) {
		return fmt.Errorf("start time %s must be before stop time %s: cross-midnight schedules are not supported", start, stop)
	}

	err := m.api.CreateTags(ctx, id, map[string]string{
		model.TagScheduleStart: start.String(),
		model.TagScheduleStop:  stop.String(),
	})
	if err != nil {
		return err
	}

	logx.Info("Schedule set for %s: %s to %s", id, start, stop)
	return nil
}

// Clear deletes the schedule tags. Clearing an instance with no schedule is
// a no-op, not an error.
func (m *ScheduleManager) Clear(ctx context.Context, id string) error {
	if !m.gate.AllowsID(ctx, id) {
		return ErrNotControllable
	}

	err := m.api.DeleteTags(ctx, id, []string{model.TagScheduleStart, model.TagScheduleStop})
	if err != nil {
		return err
	}

	logx.Info("Schedule cleared for %s", id)
	return nil
}
