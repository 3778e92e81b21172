package controls

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// Caller identifies who issued a command. The upstream adapter supplies it;
// the core trusts it as presented.
type Caller struct {
	ID   string
	Name string
}

// Dispatcher is the top-level orchestration: tokenize, normalize aliases,
// resolve, gate, act, and return a structured outcome. Stateless between
// invocations; every call is an independent unit of work.
type Dispatcher struct {
	api          provider.InstanceAPI
	gate         *Gate
	resolver     *Resolver
	power        *PowerController
	schedules    *ScheduleManager
	disables     *DisableScheduleManager
	stakeholders *StakeholderRegistry
	searcher     *Searcher
	audit        *Auditor
}

// NewDispatcher wires the command dispatcher onto a provider port.
func NewDispatcher(api provider.InstanceAPI) *Dispatcher {
	gate := NewGate(api)
	return &Dispatcher{
		api:          api,
		gate:         gate,
		resolver:     NewResolver(api, gate),
		power:        NewPowerController(api, gate),
		schedules:    NewScheduleManager(api, gate),
		disables:     NewDisableScheduleManager(api, gate),
		stakeholders: NewStakeholderRegistry(api, gate),
		searcher:     NewSearcher(api, gate),
		audit:        NewAuditor(),
	}
}

// Schedules exposes the schedule manager for display formatting.
func (d *Dispatcher) Schedules() *ScheduleManager { return d.schedules }

// Disables exposes the disable-schedule manager for display formatting.
func (d *Dispatcher) Disables() *DisableScheduleManager { return d.disables }

// resolve maps a token to an ID and classifies resolution failures.
func (d *Dispatcher) resolve(ctx context.Context, command, token string, caller Caller) (string, *Outcome) {
	id, err := d.resolver.Resolve(ctx, token)
	if err == nil {
		return id, nil
	}

	out := &Outcome{Command: command, Token: token, DisplayName: token}
	switch {
	case errors.Is(err, ErrNotFound):
		out.Kind = KindNotFound
	case errors.Is(err, ErrAmbiguous):
		out.Kind = KindAmbiguous
	default:
		out.Kind = KindProviderError
	}
	d.audit.Emit(command, token, caller.ID, string(out.Kind), nil)
	return "", out
}

// displayName fetches the instance's name tag for replies, falling back to
// the ID when the lookup fails or the tag is absent.
func (d *Dispatcher) displayName(ctx context.Context, id string) string {
	inst, err := d.api.Describe(ctx, id)
	if err != nil {
		return id
	}
	return inst.DisplayName()
}

// emit records the outcome on the audit sink and returns it unchanged.
func (d *Dispatcher) emit(out *Outcome, caller Caller, detail map[string]string) *Outcome {
	target := out.InstanceID
	if target == "" {
		target = out.Token
	}
	d.audit.Emit(out.Command, target, caller.ID, string(out.Kind), detail)
	return out
}

// Power handles `<instance>` (status) and `<instance> <action>`.
func (d *Dispatcher) Power(ctx context.Context, caller Caller, text string) *Outcome {
	const command = "power"
	tokens := strings.Fields(text)

	switch len(tokens) {
	case 1:
		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}

		inst, err := d.api.Describe(ctx, id)
		if err != nil {
			out := &Outcome{Command: command, InstanceID: id, Token: tokens[0], DisplayName: tokens[0]}
			if errors.Is(err, provider.ErrInstanceNotFound) {
				out.Kind = KindNotFound
			} else {
				out.Kind = KindProviderError
			}
			return d.emit(out, caller, nil)
		}

		return d.emit(&Outcome{
			Kind:        KindStatus,
			Command:     command,
			InstanceID:  id,
			DisplayName: inst.DisplayName(),
			State:       inst.State,
		}, caller, nil)

	case 2:
		action := normalize(tokens[1], powerAliases)
		op := PowerOp(action)
		if op != OpOn && op != OpOff && op != OpRestart {
			return d.emit(&Outcome{
				Kind:    KindInvalidAction,
				Command: command,
				Token:   tokens[0],
				Value:   tokens[1],
			}, caller, nil)
		}

		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}
		name := d.displayName(ctx, id)

		if !d.gate.AllowsID(ctx, id) {
			return d.emit(&Outcome{
				Kind:        KindNotControllable,
				Command:     command,
				InstanceID:  id,
				DisplayName: name,
			}, caller, nil)
		}

		result, err := d.power.Execute(ctx, id, op)
		if err != nil {
			logx.Error("Power %s on %s failed: %v", op, id, err)
			return d.emit(&Outcome{
				Kind:        KindProviderError,
				Command:     command,
				InstanceID:  id,
				DisplayName: name,
				Op:          op,
			}, caller, nil)
		}
		if result.Reason != "" {
			return d.emit(&Outcome{
				Kind:        KindPreconditionFailed,
				Command:     command,
				InstanceID:  id,
				DisplayName: name,
				Op:          op,
				State:       result.State,
				Reason:      result.Reason,
			}, caller, map[string]string{"state": string(result.State)})
		}

		return d.emit(&Outcome{
			Kind:          KindPowerChanged,
			Command:       command,
			InstanceID:    id,
			DisplayName:   name,
			Op:            op,
			PreviousState: result.Change.Previous,
			NewState:      result.Change.Current,
		}, caller, map[string]string{
			"previous_state": string(result.Change.Previous),
			"current_state":  string(result.Change.Current),
		})

	default:
		return &Outcome{Kind: KindUsage, Command: command}
	}
}

// Schedule handles `<instance>` (show), `<instance> clear`, and
// `<instance> <start> to <stop>`.
func (d *Dispatcher) Schedule(ctx context.Context, caller Caller, text string) *Outcome {
	const command = "schedule"
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return &Outcome{Kind: KindUsage, Command: command}
	}

	if len(tokens) == 1 {
		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}

		schedule, err := d.schedules.Get(ctx, id)
		if err != nil {
			return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: d.displayName(ctx, id)}, caller, nil)
		}
		return d.emit(&Outcome{
			Kind:        KindScheduleInfo,
			Command:     command,
			InstanceID:  id,
			DisplayName: d.displayName(ctx, id),
			Schedule:    schedule,
		}, caller, nil)
	}

	if len(tokens) == 2 {
		if normalize(tokens[1], scheduleAliases) != "clear" {
			return &Outcome{Kind: KindUsage, Command: command}
		}

		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}
		name := d.displayName(ctx, id)

		if err := d.schedules.Clear(ctx, id); err != nil {
			if errors.Is(err, ErrNotControllable) {
				return d.emit(&Outcome{Kind: KindNotControllable, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
			}
			return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
		}
		return d.emit(&Outcome{Kind: KindScheduleCleared, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
	}

	// Schedule-set shape: <instance> <start...> to <stop...>. Time
	// expressions may themselves span tokens ("5:00 am").
	sep := -1
	for i, token := range tokens[1:] {
		if strings.EqualFold(token, "to") {
			sep = i + 1
			break
		}
	}
	if sep < 1 || sep == len(tokens)-1 {
		return &Outcome{Kind: KindUsage, Command: command}
	}

	startText := strings.Join(tokens[1:sep], " ")
	stopText := strings.Join(tokens[sep+1:], " ")

	id, fail := d.resolve(ctx, command, tokens[0], caller)
	if fail != nil {
		return fail
	}
	name := d.displayName(ctx, id)

	start, err := ParseTime(startText)
	if err != nil {
		return d.emit(&Outcome{Kind: KindInvalidTime, Command: command, InstanceID: id, DisplayName: name, Value: startText, StartText: startText}, caller, nil)
	}
	stop, err := ParseTime(stopText)
	if err != nil {
		return d.emit(&Outcome{Kind: KindInvalidTime, Command: command, InstanceID: id, DisplayName: name, Value: stopText, StopText: stopText}, caller, nil)
	}

	if !start.Before(stop) {
		return d.emit(&Outcome{
			Kind:        KindInvalidOrder,
			Command:     command,
			InstanceID:  id,
			DisplayName: name,
			StartText:   startText,
			StopText:    stopText,
		}, caller, nil)
	}

	if !d.gate.AllowsID(ctx, id) {
		return d.emit(&Outcome{Kind: KindNotControllable, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
	}

	if err := d.schedules.Set(ctx, id, start, stop); err != nil {
		logx.Error("Schedule set on %s failed: %v", id, err)
		return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
	}

	return d.emit(&Outcome{
		Kind:        KindScheduleSet,
		Command:     command,
		InstanceID:  id,
		DisplayName: name,
		Schedule:    &Schedule{Start: start, Stop: stop},
	}, caller, map[string]string{"start": start.String(), "stop": stop.String()})
}

// DisableSchedule handles `<instance>` (show), `<instance> <N>h`, and
// `<instance> cancel`.
func (d *Dispatcher) DisableSchedule(ctx context.Context, caller Caller, text string) *Outcome {
	const command = "disable_schedule"
	tokens := strings.Fields(text)

	switch len(tokens) {
	case 1:
		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}

		until, err := d.disables.Get(ctx, id)
		if err != nil {
			return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: d.displayName(ctx, id)}, caller, nil)
		}
		return d.emit(&Outcome{
			Kind:         KindDisableInfo,
			Command:      command,
			InstanceID:   id,
			DisplayName:  d.displayName(ctx, id),
			DisableUntil: until,
		}, caller, nil)

	case 2:
		id, fail := d.resolve(ctx, command, tokens[0], caller)
		if fail != nil {
			return fail
		}
		name := d.displayName(ctx, id)

		if normalize(tokens[1], disableAliases) == "cancel" {
			if err := d.disables.Clear(ctx, id); err != nil {
				if errors.Is(err, ErrNotControllable) {
					return d.emit(&Outcome{Kind: KindNotControllable, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
				}
				return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
			}
			return d.emit(&Outcome{Kind: KindDisableCancelled, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
		}

		hours, err := ParseHours(tokens[1])
		if err != nil {
			return d.emit(&Outcome{Kind: KindInvalidHours, Command: command, InstanceID: id, DisplayName: name, Value: tokens[1]}, caller, nil)
		}

		until, err := d.disables.Set(ctx, id, hours)
		if err != nil {
			if errors.Is(err, ErrNotControllable) {
				return d.emit(&Outcome{Kind: KindNotControllable, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
			}
			logx.Error("Disable schedule set on %s failed: %v", id, err)
			return d.emit(&Outcome{Kind: KindProviderError, Command: command, InstanceID: id, DisplayName: name, Hours: hours}, caller, nil)
		}

		return d.emit(&Outcome{
			Kind:         KindDisableSet,
			Command:      command,
			InstanceID:   id,
			DisplayName:  name,
			Hours:        hours,
			DisableUntil: &until,
		}, caller, map[string]string{"hours": tokens[1]})

	default:
		return &Outcome{Kind: KindUsage, Command: command}
	}
}

// Stakeholder handles `<instance> [claim|remove|check]`, defaulting to
// claim.
func (d *Dispatcher) Stakeholder(ctx context.Context, caller Caller, text string) *Outcome {
	const command = "stakeholder"
	tokens := strings.Fields(text)
	if len(tokens) == 0 || len(tokens) > 2 {
		return &Outcome{Kind: KindUsage, Command: command}
	}

	action := "claim"
	if len(tokens) == 2 {
		action = normalize(tokens[1], stakeholderAliases)
	}
	if action != "claim" && action != "remove" && action != "check" {
		return &Outcome{Kind: KindUsage, Command: command}
	}

	id, fail := d.resolve(ctx, command, tokens[0], caller)
	if fail != nil {
		return fail
	}
	name := d.displayName(ctx, id)

	if !d.gate.AllowsID(ctx, id) {
		return d.emit(&Outcome{Kind: KindNotControllable, Command: command, InstanceID: id, DisplayName: name}, caller, nil)
	}

	out := &Outcome{Command: command, InstanceID: id, DisplayName: name, Value: action}
	switch action {
	case "claim":
		result, err := d.stakeholders.Add(ctx, id, caller.ID)
		if err != nil {
			logx.Error("Stakeholder claim on %s failed: %v", id, err)
			out.Kind = KindProviderError
			break
		}
		switch result {
		case StakeholderAdded:
			out.Kind = KindStakeholderAdded
		case StakeholderAlreadyMember:
			out.Kind = KindStakeholderAlready
		case StakeholderMaxReached:
			out.Kind = KindStakeholderMaxReached
		}

	case "remove":
		result, err := d.stakeholders.Remove(ctx, id, caller.ID)
		if err != nil {
			logx.Error("Stakeholder remove on %s failed: %v", id, err)
			out.Kind = KindProviderError
			break
		}
		switch result {
		case StakeholderRemoved, StakeholderTagDeleted:
			out.Kind = KindStakeholderRemoved
		case StakeholderNotMember:
			out.Kind = KindStakeholderNotMember
		}

	case "check":
		member, err := d.stakeholders.Contains(ctx, id, caller.ID)
		if err != nil {
			out.Kind = KindProviderError
			break
		}
		if member {
			out.Kind = KindStakeholderIs
		} else {
			out.Kind = KindStakeholderIsNot
		}
	}

	return d.emit(out, caller, map[string]string{"action": action})
}

// List returns every controllable instance with its current state.
func (d *Dispatcher) List(ctx context.Context, caller Caller) *Outcome {
	const command = "list"
	instances, err := d.searcher.ListControllable(ctx)
	if err != nil {
		logx.Error("List instances failed: %v", err)
		return d.emit(&Outcome{Kind: KindProviderError, Command: command}, caller, nil)
	}
	return d.emit(&Outcome{Kind: KindList, Command: command, Instances: instances}, caller, map[string]string{"count": strconv.Itoa(len(instances))})
}

// Search runs the fuzzy ranker over controllable instances.
func (d *Dispatcher) Search(ctx context.Context, caller Caller, term string) *Outcome {
	const command = "search"
	term = strings.TrimSpace(term)
	if term == "" {
		return &Outcome{Kind: KindEmptyTerm, Command: command}
	}

	results, err := d.searcher.Search(ctx, term)
	if err != nil {
		logx.Error("Search %q failed: %v", term, err)
		return d.emit(&Outcome{Kind: KindProviderError, Command: command, Term: term}, caller, nil)
	}
	return d.emit(&Outcome{Kind: KindSearchResults, Command: command, Term: term, Instances: results}, caller, map[string]string{"count": strconv.Itoa(len(results))})
}

// Help returns the fixed help outcome.
func (d *Dispatcher) Help() *Outcome {
	return &Outcome{Kind: KindHelp, Command: "help"}
}
