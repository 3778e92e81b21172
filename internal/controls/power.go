package controls

import (
	"context"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// PowerOp is a canonical power action.
type PowerOp string

const (
	OpOn      PowerOp = "on"
	OpOff     PowerOp = "off"
	OpRestart PowerOp = "restart"
)

// requiredState maps each operation to the only state it is legal from.
var requiredState = map[PowerOp]model.LifecycleState{
	OpOn:      model.StateStopped,
	OpOff:     model.StateRunning,
	OpRestart: model.StateRunning,
}

// transitionReasons names why each op is illegal from each state. Every
// illegal transition gets its own reason; the caller is a human reading a
// one-line chat reply.
var transitionReasons = map[PowerOp]map[model.LifecycleState]string{
	OpOn: {
		model.StateRunning:  "already running",
		model.StatePending:  "already starting",
		model.StateStopping: "currently stopping, cannot start",
	},
	OpOff: {
		model.StateStopped:  "already stopped",
		model.StateStopping: "already stopping",
		model.StatePending:  "currently starting, cannot stop",
	},
	OpRestart: {
		model.StateStopped:  "currently stopped, cannot restart",
		model.StatePending:  "currently starting, cannot restart",
		model.StateStopping: "currently stopping, cannot restart",
	},
}

// CheckTransition validates op against the current state. It returns an
// empty string when the transition is legal, otherwise the specific reason.
// Pure function of its inputs.
func CheckTransition(op PowerOp, state model.LifecycleState) string {
	if requiredState[op] == state {
		return ""
	}
	if reason, ok := transitionReasons[op][state]; ok {
		return reason
	}
	return fmt.Sprintf("cannot %s from state %s", op, state)
}

// PowerController validates and executes power transitions.
type PowerController struct {
	api  provider.InstanceAPI
	gate *Gate
}

// NewPowerController creates a power controller.
func NewPowerController(api provider.InstanceAPI, gate *Gate) *PowerController {
	return &PowerController{api: api, gate: gate}
}

// PowerResult is the outcome of an executed transition.
type PowerResult struct {
	// Reason is non-empty when the transition was refused; nothing was
	// sent to the provider in that case.
	Reason string
	// Change is the provider-reported previous/current pair on success.
	Change *model.StateChange
	// State is the freshly read state the decision was based on.
	State model.LifecycleState
}

// Execute reads the instance's state fresh, validates the transition, and
// performs it. The read-then-act window is racy by design; the provider is
// the arbiter and a provider-side failure is reported as a generic error.
func (c *PowerController) Execute(ctx context.Context, id string, op PowerOp) (*PowerResult, error) {
	inst, err := c.api.Describe(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason := CheckTransition(op, inst.State); reason != "" {
		logx.Info("Refused %s on %s: %s", op, id, reason)
		return &PowerResult{Reason: reason, State: inst.State}, nil
	}

	var change *model.StateChange
	switch op {
	case OpOn:
		change, err = c.api.Start(ctx, id)
	case OpOff:
		change, err = c.api.Stop(ctx, id)
	case OpRestart:
		err = c.api.Reboot(ctx, id)
		if err == nil {
			// Reboot reports no state change; running stays running.
			change = &model.StateChange{Previous: inst.State, Current: inst.State}
		}
	default:
		return nil, fmt.Errorf("unknown power op %q", op)
	}
	if err != nil {
		return nil, err
	}

	return &PowerResult{Change: change, State: inst.State}, nil
}
