package slack

import (
	"fmt"
	"time"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/controls"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

// Usage strings per command route.
const (
	usagePower       = "Usage: <instance-id|instance-name> [on|off|restart]"
	usageSchedule    = "Usage: <instance-id|instance-name> [<start> to <stop>|clear]"
	usageDisable     = "Usage: <instance-id|instance-name> [<hours>h|cancel]"
	usageStakeholder = "Usage: <instance-id|instance-name> [claim|remove|check]"
	usageSearch      = "Please provide a search term. Usage: <search-term>"
)

const helpText = `Available commands:
• ` + "`<instance> [on|off|restart]`" + ` - check or change instance power state
• ` + "`<instance> <start> to <stop>`" + ` - set a daily power schedule (e.g. 9am to 5pm)
• ` + "`<instance> clear`" + ` - clear the schedule
• ` + "`<instance> [<hours>h|cancel]`" + ` - suspend or resume schedule enforcement
• ` + "`<instance> [claim|remove|check]`" + ` - manage stakeholder status
• list - list controllable instances
• search ` + "`<term>`" + ` - find instances by ID or name`

// preconditionMessages phrases each refused transition for a human reading
// a one-line reply. Keyed by op then by the state the instance was in.
var preconditionMessages = map[controls.PowerOp]map[model.LifecycleState]string{
	controls.OpOn: {
		model.StateRunning:  "Instance `%s` is already running",
		model.StatePending:  "Instance `%s` is already starting",
		model.StateStopping: "Instance `%s` is currently stopping, cannot start",
	},
	controls.OpOff: {
		model.StateStopped:  "Instance `%s` is already stopped",
		model.StateStopping: "Instance `%s` is already stopping",
		model.StatePending:  "Instance `%s` is currently starting, cannot stop",
	},
	controls.OpRestart: {
		model.StateStopped:  "Cannot restart `%s`: instance is currently stopped",
		model.StatePending:  "Cannot restart `%s`: instance is currently starting",
		model.StateStopping: "Cannot restart `%s`: instance is currently stopping",
	},
}

// Render converts a structured outcome into the one-line chat reply.
func Render(out *controls.Outcome) string {
	name := out.DisplayName
	if name == "" {
		name = out.InstanceID
	}

	switch out.Kind {
	case controls.KindNotFound:
		return fmt.Sprintf("Instance `%s` not found", out.Token)

	case controls.KindAmbiguous:
		return fmt.Sprintf("Instance name `%s` is ambiguous: multiple instances match, use the instance ID", out.Token)

	case controls.KindNotControllable:
		return fmt.Sprintf("Instance `%s` cannot be controlled by this service (missing or disabled %s tag)", name, model.TagControlsEnabled)

	case controls.KindStatus:
		if out.State == "" {
			return fmt.Sprintf("Instance `%s` is in unknown state", name)
		}
		return fmt.Sprintf("Instance `%s` is currently %s", name, out.State)

	case controls.KindPowerChanged:
		return fmt.Sprintf("Set `%s` to %s", name, out.Op)

	case controls.KindPreconditionFailed:
		if format, ok := preconditionMessages[out.Op][out.State]; ok {
			return fmt.Sprintf(format, name)
		}
		return fmt.Sprintf("Cannot %s `%s`: %s", out.Op, name, out.Reason)

	case controls.KindInvalidAction:
		return "Power state must be 'on', 'off', or 'restart'."

	case controls.KindScheduleInfo:
		return fmt.Sprintf("Schedule for `%s`: %s", name, controls.FormatSchedule(out.Schedule))

	case controls.KindScheduleSet:
		return fmt.Sprintf("Schedule set for `%s`: %s", name, controls.FormatSchedule(out.Schedule))

	case controls.KindScheduleCleared:
		return fmt.Sprintf("Schedule cleared for `%s`", name)

	case controls.KindInvalidTime:
		if out.StartText != "" {
			return fmt.Sprintf("Invalid start time: %s", out.StartText)
		}
		return fmt.Sprintf("Invalid stop time: %s", out.StopText)

	case controls.KindInvalidOrder:
		return fmt.Sprintf("Invalid schedule: start time (%s) must be before end time (%s). Cross-midnight schedules are not supported.",
			out.StartText, out.StopText)

	case controls.KindDisableInfo:
		return fmt.Sprintf("Disable schedule for `%s`: %s", name,
			controls.FormatDisableScheduleAt(out.DisableUntil, time.Now().UTC()))

	case controls.KindDisableSet:
		return fmt.Sprintf("Disable schedule set for `%s` for %d hours", name, out.Hours)

	case controls.KindDisableCancelled:
		return fmt.Sprintf("Disable schedule cancelled for `%s`", name)

	case controls.KindInvalidHours:
		return fmt.Sprintf("Invalid hours format: %s. Use a whole number of hours like '2h' (minimum 1h).", out.Value)

	case controls.KindStakeholderAdded:
		return fmt.Sprintf("You are now a stakeholder for `%s` (`%s`)", name, out.InstanceID)

	case controls.KindStakeholderAlready:
		return fmt.Sprintf("You are already a stakeholder for `%s`", name)

	case controls.KindStakeholderMaxReached:
		return fmt.Sprintf("Max stakeholders (%d) reached for `%s`", controls.MaxStakeholders, name)

	case controls.KindStakeholderRemoved:
		return fmt.Sprintf("You are no longer a stakeholder for `%s`", name)

	case controls.KindStakeholderNotMember:
		return fmt.Sprintf("You are not a stakeholder for `%s`", name)

	case controls.KindStakeholderIs:
		return fmt.Sprintf("You are a stakeholder for `%s` (`%s`)", name, out.InstanceID)

	case controls.KindStakeholderIsNot:
		return fmt.Sprintf("You are not a stakeholder for `%s`", name)

	case controls.KindList:
		return renderList(out.Instances)

	case controls.KindSearchResults:
		return renderSearch(out.Term, out.Instances)

	case controls.KindEmptyTerm:
		return usageSearch

	case controls.KindHelp:
		return helpText

	case controls.KindUsage:
		return usageFor(out.Command)

	case controls.KindProviderError:
		return renderProviderError(out, name)

	default:
		return usageFor(out.Command)
	}
}

// renderProviderError phrases the try-again failure per command.
func renderProviderError(out *controls.Outcome, name string) string {
	switch out.Command {
	case "power":
		if out.Op != "" {
			return fmt.Sprintf("Failed to set `%s` to %s. Please try again.", name, out.Op)
		}
	case "schedule":
		if out.Schedule != nil {
			return fmt.Sprintf("Failed to set schedule for `%s`. Please try again.", name)
		}
		return fmt.Sprintf("Failed to clear schedule for `%s`. Please try again.", name)
	case "disable_schedule":
		if out.Hours > 0 {
			return fmt.Sprintf("Failed to set disable schedule for `%s`. Please try again.", name)
		}
		return fmt.Sprintf("Failed to cancel disable schedule for `%s`. Please try again.", name)
	case "stakeholder":
		switch out.Value {
		case "claim":
			return fmt.Sprintf("Failed to claim `%s`. Please try again.", name)
		case "remove":
			return fmt.Sprintf("Failed to remove stakeholder status for `%s`. Please try again.", name)
		case "check":
			return fmt.Sprintf("Failed to check stakeholder status for `%s`. Please try again.", name)
		}
	}
	if name != "" {
		return fmt.Sprintf("Operation on `%s` failed. Please try again.", name)
	}
	return "Operation failed. Please try again."
}

// usageFor returns the usage line for a command route.
func usageFor(command string) string {
	switch command {
	case "power":
		return usagePower
	case "schedule":
		return usageSchedule
	case "disable_schedule":
		return usageDisable
	case "stakeholder":
		return usageStakeholder
	case "search":
		return usageSearch
	default:
		return helpText
	}
}

// renderList formats the controllable instance listing.
func renderList(instances []*model.Instance) string {
	if len(instances) == 0 {
		return "No controllable instances found in AWS region"
	}

	msg := "Controllable instances in AWS region:\n"
	for _, inst := range instances {
		msg += "• " + instanceLine(inst) + "\n"
	}
	return msg
}

// renderSearch formats the fuzzy search results.
func renderSearch(term string, instances []*model.Instance) string {
	if len(instances) == 0 {
		return fmt.Sprintf("No controllable instances found matching '%s'. Instances need the %s tag to be controllable.",
			term, model.TagControlsEnabled)
	}

	msg := fmt.Sprintf("Found %d controllable instance(s) matching '%s':\n", len(instances), term)
	for _, inst := range instances {
		msg += "• " + instanceLine(inst) + "\n"
	}
	return msg
}

// instanceLine renders one "`name` (`id`): state" entry.
func instanceLine(inst *model.Instance) string {
	state := string(inst.State)
	if state == "" {
		state = "unknown state"
	}
	return fmt.Sprintf("`%s` (`%s`): %s", inst.DisplayName(), inst.ID, state)
}
