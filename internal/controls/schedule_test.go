package controls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

func TestParseTime(t *testing.T) {
	t.Run("accepts 12-hour and 24-hour forms", func(t *testing.T) {
		cases := map[string]TimeOfDay{
			"5am":      {5, 0},
			"5 am":     {5, 0},
			"5:30pm":   {17, 30},
			"5:30 PM":  {17, 30},
			"17:00":    {17, 0},
			"09:05":    {9, 5},
			"0:00":     {0, 0},
			"12am":     {0, 0},
			"12pm":     {12, 0},
			"12:01am":  {0, 1},
			"12:30pm":  {12, 30},
			"  8am   ": {8, 0},
		}
		for input, want := range cases {
			got, err := ParseTime(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got, "input %q", input)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{
			"", "noon", "17", "5", "25:00", "13pm", "0am", "12:60", "-1:00", "5:xxpm",
		} {
			_, err := ParseTime(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestTimeOfDayDisplay(t *testing.T) {
	assert.Equal(t, "12:00 AM", TimeOfDay{0, 0}.Display())
	assert.Equal(t, "5:30 PM", TimeOfDay{17, 30}.Display())
	assert.Equal(t, "12:00 PM", TimeOfDay{12, 0}.Display())
	assert.Equal(t, "9:05 AM", TimeOfDay{9, 5}.Display())
}

func TestFormatSchedule(t *testing.T) {
	assert.Equal(t, "No schedule set", FormatSchedule(nil))
	assert.Equal(t, "8:00 AM to 5:00 PM",
		FormatSchedule(&Schedule{Start: TimeOfDay{8, 0}, Stop: TimeOfDay{17, 0}}))
}

func TestScheduleManager(t *testing.T) {
	ctx := context.Background()

	t.Run("set writes both tags in 24-hour form", func(t *testing.T) {
		api := newFakeAPI(controllable("i-0000000000000001", "db-1", model.StateRunning))
		sm := NewScheduleManager(api, NewGate(api))

		err := sm.Set(ctx, "i-0000000000000001", TimeOfDay{8, 0}, TimeOfDay{17, 30})
		require.NoError(t, err)

		tags, err := api.GetTags(ctx, "i-0000000000000001")
		require.NoError(t, err)
		assert.Equal(t, "08:00", tags[model.TagScheduleStart])
		assert.Equal(t, "17:30", tags[model.TagScheduleStop])
	})

	t.Run("set refuses reversed and equal pairs", func(t *testing.T) {
		api := newFakeAPI(controllable("i-0000000000000001", "db-1", model.StateRunning))
		sm := NewScheduleManager(api, NewGate(api))

		err := sm.Set(ctx, "i-0000000000000001", TimeOfDay{22, 0}, TimeOfDay{6, 0})
		assert.Error(t, err)
		err = sm.Set(ctx, "i-0000000000000001", TimeOfDay{8, 0}, TimeOfDay{8, 0})
		assert.Error(t, err)

		tags, _ := api.GetTags(ctx, "i-0000000000000001")
		assert.NotContains(t, tags, model.TagScheduleStart)
	})

	t.Run("set refuses non-controllable instances", func(t *testing.T) {
		api := newFakeAPI(&model.Instance{
			ID: "i-0000000000000001", Name: "db-1", State: model.StateRunning,
			Tags: map[string]string{model.TagName: "db-1"},
		})
		sm := NewScheduleManager(api, NewGate(api))

		err := sm.Set(ctx, "i-0000000000000001", TimeOfDay{8, 0}, TimeOfDay{17, 0})
		assert.ErrorIs(t, err, ErrNotControllable)
	})

	t.Run("get round-trips a stored schedule", func(t *testing.T) {
		api := newFakeAPI(controllable("i-0000000000000001", "db-1", model.StateRunning))
		sm := NewScheduleManager(api, NewGate(api))

		require.NoError(t, sm.Set(ctx, "i-0000000000000001", TimeOfDay{8, 0}, TimeOfDay{17, 0}))
		sched, err := sm.Get(ctx, "i-0000000000000001")
		require.NoError(t, err)
		require.NotNil(t, sched)
		assert.Equal(t, TimeOfDay{8, 0}, sched.Start)
		assert.Equal(t, TimeOfDay{17, 0}, sched.Stop)
	})

	t.Run("get treats partial or garbage tags as no schedule", func(t *testing.T) {
		inst := controllable("i-0000000000000001", "db-1", model.StateRunning)
		inst.Tags[model.TagScheduleStart] = "08:00"
		api := newFakeAPI(inst)
		sm := NewScheduleManager(api, NewGate(api))

		sched, err := sm.Get(ctx, "i-0000000000000001")
		require.NoError(t, err)
		assert.Nil(t, sched)

		inst.Tags[model.TagScheduleStop] = "garbage"
		sched, err = sm.Get(ctx, "i-0000000000000001")
		require.NoError(t, err)
		assert.Nil(t, sched)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		api := newFakeAPI(controllable("i-0000000000000001", "db-1", model.StateRunning))
		sm := NewScheduleManager(api, NewGate(api))

		require.NoError(t, sm.Set(ctx, "i-0000000000000001", TimeOfDay{8, 0}, TimeOfDay{17, 0}))
		require.NoError(t, sm.Clear(ctx, "i-0000000000000001"))
		require.NoError(t, sm.Clear(ctx, "i-0000000000000001"))

		sched, err := sm.Get(ctx, "i-0000000000000001")
		require.NoError(t, err)
		assert.Nil(t, sched)
	})
}
