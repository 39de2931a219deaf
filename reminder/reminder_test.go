package reminder_test

import (
	"testing"

	"github.com/agentcore/reactor/reminder"
	"github.com/stretchr/testify/assert"
)

func TestWrapAddsSystemReminderTag(t *testing.T) {
	assert.Equal(t, "<system-reminder>tool disabled</system-reminder>", reminder.Wrap("tool disabled"))
}

func TestTrackerAdmitsUnlimitedReminderRepeatedly(t *testing.T) {
	tracker := reminder.NewTracker()
	r := reminder.Reminder{ID: "approaching_step_budget", Priority: reminder.TierGuidance}

	for step := 1; step <= 5; step++ {
		assert.True(t, tracker.Admit(r, step))
	}
	assert.Equal(t, 5, tracker.Count(r.ID))
}

func TestTrackerEnforcesMaxPerRun(t *testing.T) {
	tracker := reminder.NewTracker()
	r := reminder.Reminder{ID: "tool_disabled.search", MaxPerRun: 2}

	assert.True(t, tracker.Admit(r, 1))
	assert.True(t, tracker.Admit(r, 2))
	assert.False(t, tracker.Admit(r, 3))
	assert.Equal(t, 2, tracker.Count(r.ID))
}

func TestTrackerEnforcesMinStepsBetween(t *testing.T) {
	tracker := reminder.NewTracker()
	r := reminder.Reminder{ID: "approaching_step_budget", MinStepsBetween: 3}

	assert.True(t, tracker.Admit(r, 1))
	assert.False(t, tracker.Admit(r, 2))
	assert.False(t, tracker.Admit(r, 3))
	assert.True(t, tracker.Admit(r, 4))
	assert.Equal(t, 2, tracker.Count(r.ID))
}

func TestTrackerTracksIndependentReminderIDsSeparately(t *testing.T) {
	tracker := reminder.NewTracker()
	a := reminder.Reminder{ID: "a", MaxPerRun: 1}
	b := reminder.Reminder{ID: "b", MaxPerRun: 1}

	assert.True(t, tracker.Admit(a, 1))
	assert.True(t, tracker.Admit(b, 1))
	assert.False(t, tracker.Admit(a, 2))
	assert.True(t, tracker.Count(b.ID) == 1)
}
