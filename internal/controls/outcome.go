package controls

import (
	"time"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

// Kind tags a structured command outcome. Rendering an outcome into chat
// markup is a collaborator concern; the core only decides.
type Kind string

const (
	KindStatus             Kind = "status"
	KindPowerChanged       Kind = "power_changed"
	KindNotFound           Kind = "not_found"
	KindAmbiguous          Kind = "ambiguous"
	KindNotControllable    Kind = "not_controllable"
	KindPreconditionFailed Kind = "precondition_failed"
	KindInvalidAction      Kind = "invalid_action"
	KindInvalidTime        Kind = "invalid_time"
	KindInvalidOrder       Kind = "invalid_order"
	KindInvalidHours       Kind = "invalid_hours"
	KindUsage              Kind = "usage"
	KindProviderError      Kind = "provider_error"

	KindScheduleInfo    Kind = "schedule_info"
	KindScheduleSet     Kind = "schedule_set"
	KindScheduleCleared Kind = "schedule_cleared"

	KindDisableInfo      Kind = "disable_info"
	KindDisableSet       Kind = "disable_set"
	KindDisableCancelled Kind = "disable_cancelled"

	KindStakeholderAdded      Kind = "stakeholder_added"
	KindStakeholderAlready    Kind = "stakeholder_already"
	KindStakeholderMaxReached Kind = "stakeholder_max_reached"
	KindStakeholderRemoved    Kind = "stakeholder_removed"
	KindStakeholderNotMember  Kind = "stakeholder_not_member"
	KindStakeholderIs         Kind = "stakeholder_is"
	KindStakeholderIsNot      Kind = "stakeholder_is_not"

	KindList          Kind = "list"
	KindSearchResults Kind = "search_results"
	KindEmptyTerm     Kind = "empty_term"
	KindHelp          Kind = "help"
)

// Outcome is the structured result of one command. Only the fields relevant
// to Kind are populated.
type Outcome struct {
	Kind        Kind   `json:"kind"`
	Command     string `json:"command"`
	InstanceID  string `json:"instance_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Token       string `json:"token,omitempty"` // the raw identifier the user supplied

	// Power fields.
	Op            PowerOp              `json:"op,omitempty"`
	State         model.LifecycleState `json:"state,omitempty"`
	PreviousState model.LifecycleState `json:"previous_state,omitempty"`
	NewState      model.LifecycleState `json:"new_state,omitempty"`
	Reason        string               `json:"reason,omitempty"`

	// Validation fields: the offending input and which side it was.
	Value     string `json:"value,omitempty"`
	StartText string `json:"start_text,omitempty"`
	StopText  string `json:"stop_text,omitempty"`

	// Schedule / disable fields.
	Schedule     *Schedule  `json:"schedule,omitempty"`
	DisableUntil *time.Time `json:"disable_until,omitempty"`
	Hours        int        `json:"hours,omitempty"`

	// List/search fields.
	Term      string            `json:"term,omitempty"`
	Instances []*model.Instance `json:"instances,omitempty"`
}
