package scheduler

import (
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/reminder"
)

// turnReminderMessages evaluates s.Reminders attached to AttachmentTurn
// against tracker, returning a user message per admitted reminder (wrapped
// as a <system-reminder> block) to append to the rendered messages ahead of
// the next Model.Generate call.
func (s *Scheduler) turnReminderMessages(tracker *reminder.Tracker, stepNumber int) []message.ChatMessage {
	var out []message.ChatMessage
	for _, r := range s.Reminders {
		if r.Attachment != reminder.AttachmentTurn {
			continue
		}
		if !tracker.Admit(r, stepNumber) {
			continue
		}
		out = append(out, message.NewUser(reminder.Wrap(r.Text), nil))
	}
	return out
}

// runStartReminders returns the <system-reminder>-wrapped text of every
// AttachmentRunStart reminder admitted at run start (step 1), for appending
// to the system prompt.
func (s *Scheduler) runStartReminders() []string {
	tracker := reminder.NewTracker()
	var out []string
	for _, r := range s.Reminders {
		if r.Attachment != reminder.AttachmentRunStart {
			continue
		}
		if !tracker.Admit(r, 1) {
			continue
		}
		out = append(out, reminder.Wrap(r.Text))
	}
	return out
}
