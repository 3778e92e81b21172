package model

// Reserved tag keys. All service state lives in these instance tags; the
// service keeps no store of its own.
const (
	// TagName is the provider's conventional display name tag.
	TagName = "Name"

	// TagControlsEnabled opts an instance in to being acted on by this
	// service. Absence means not controllable.
	TagControlsEnabled = "EC2ControlsEnabled"

	// TagScheduleStart and TagScheduleStop hold the daily power schedule as
	// 24-hour HH:MM times-of-day. Both present or neither.
	TagScheduleStart = "ScheduleStartTime"
	TagScheduleStop  = "ScheduleStopTime"

	// TagScheduleDisableUntil holds an absolute ISO-8601 instant until which
	// schedule enforcement is suspended.
	TagScheduleDisableUntil = "ScheduleDisableUntil"

	// TagStakeholders holds the comma-delimited stakeholder list.
	TagStakeholders = "Stakeholders"
)

// DisplayName returns the instance's Name tag when present, otherwise its ID.
func (i *Instance) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}
