package controls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

func TestControlsEnabled(t *testing.T) {
	t.Run("absent tag means not controllable", func(t *testing.T) {
		assert.False(t, ControlsEnabled(map[string]string{}))
		assert.False(t, ControlsEnabled(nil))
	})

	t.Run("empty value means not controllable", func(t *testing.T) {
		assert.False(t, ControlsEnabled(map[string]string{model.TagControlsEnabled: ""}))
	})

	t.Run("falsy spellings disable, case-insensitively", func(t *testing.T) {
		for _, value := range []string{
			"false", "False", "FALSE",
			"0",
			"no", "No", "NO",
			"disabled", "Disabled", "DISABLED",
			"off", "Off", "OFF",
		} {
			assert.False(t, ControlsEnabled(map[string]string{model.TagControlsEnabled: value}), "value %q", value)
		}
	})

	t.Run("any other non-empty value enables", func(t *testing.T) {
		for _, value := range []string{
			"true", "True", "1", "yes", "enabled", "on", "42", "whatever",
		} {
			assert.True(t, ControlsEnabled(map[string]string{model.TagControlsEnabled: value}), "value %q", value)
		}
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		assert.False(t, ControlsEnabled(map[string]string{model.TagControlsEnabled: " false "}))
		assert.True(t, ControlsEnabled(map[string]string{model.TagControlsEnabled: " true "}))
	})
}

func TestGateAllowsID(t *testing.T) {
	ctx := context.Background()

	t.Run("reads tags fresh", func(t *testing.T) {
		api := newFakeAPI(controllable("i-0000000000000001", "db-1", model.StateRunning))
		gate := NewGate(api)

		require.True(t, gate.AllowsID(ctx, "i-0000000000000001"))

		// Flipping the tag takes effect on the next check; nothing is
		// cached.
		api.instances["i-0000000000000001"].Tags[model.TagControlsEnabled] = "false"
		assert.False(t, gate.AllowsID(ctx, "i-0000000000000001"))
	})

	t.Run("lookup failure counts as not controllable", func(t *testing.T) {
		api := newFakeAPI()
		gate := NewGate(api)
		assert.False(t, gate.AllowsID(ctx, "i-0000000000000001"))
	})
}
