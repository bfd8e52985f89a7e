package models

import "time"

// TaskKind distinguishes alarms from reminders
type TaskKind string

const (
	TaskAlarm    TaskKind = "alarm"
	TaskReminder TaskKind = "reminder"
)

// DeferredTask is a scheduled future notification owned by the task registry
// until it fires, is cancelled, or the process ends.
type DeferredTask struct {
	ID        string
	Kind      TaskKind
	Target    string        // alarm target in HH:MM (empty for reminders)
	Action    string        // reminder action description (empty for alarms)
	Delay     time.Duration // reminder delay (zero for alarms)
	CreatedAt time.Time
}
