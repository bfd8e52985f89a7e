package tasks

import (
	"sync"
	"testing"
	"time"

	"delta/internal/speech"
)

// countingSink records every emission
type countingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *countingSink) Emit(text string) string {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
	return text
}

func (s *countingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// fakeClock lets tests advance wall-clock time manually
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestScheduleAlarm_FiresExactlyOnceAtTarget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)}
	sink := &countingSink{}

	registry := NewRegistry(sink)
	registry.now = clock.Now
	registry.tick = time.Millisecond
	defer registry.StopAll()

	task, err := registry.ScheduleAlarm("7:30")
	if err != nil {
		t.Fatalf("ScheduleAlarm failed: %v", err)
	}
	if task.Target != "07:30" {
		t.Errorf("Expected normalized target 07:30, got %q", task.Target)
	}

	// Well before the target: nothing may fire
	time.Sleep(20 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 0 {
		t.Fatalf("Alarm fired before target: %v", got)
	}

	clock.Advance(30 * time.Minute)
	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })

	if got := sink.snapshot(); got[0] != "Alarm ringing" {
		t.Errorf("Unexpected alarm notification: %q", got[0])
	}

	// Keep advancing: it must not fire again within the same run
	clock.Advance(24 * time.Hour)
	time.Sleep(20 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 1 {
		t.Errorf("Alarm fired more than once: %v", got)
	}
}

func TestScheduleAlarm_PassedTimeRollsToTomorrow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)}
	sink := &countingSink{}

	registry := NewRegistry(sink)
	registry.now = clock.Now
	registry.tick = time.Millisecond
	defer registry.StopAll()

	if _, err := registry.ScheduleAlarm("07:30"); err != nil {
		t.Fatalf("ScheduleAlarm failed: %v", err)
	}

	// Advancing past midnight but short of 07:30 must not fire
	clock.Advance(8 * time.Hour)
	time.Sleep(20 * time.Millisecond)
	if len(sink.snapshot()) != 0 {
		t.Fatal("Alarm fired before tomorrow's target")
	}

	clock.Advance(4 * time.Hour)
	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
}

func TestScheduleAlarm_RejectsMalformedTimes(t *testing.T) {
	registry := NewRegistry(&countingSink{})
	defer registry.StopAll()

	for _, target := range []string{"", "7", "25:00", "07:61", "seven thirty", "7:3"} {
		if _, err := registry.ScheduleAlarm(target); err == nil {
			t.Errorf("ScheduleAlarm(%q) should have failed", target)
		}
	}
}

func TestScheduleReminder_FiresWithAction(t *testing.T) {
	sink := &countingSink{}
	registry := NewRegistry(sink)
	defer registry.StopAll()

	if _, err := registry.ScheduleReminder("buy milk", 10*time.Millisecond); err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	if got := sink.snapshot(); got[0] != "Reminder: buy milk" {
		t.Errorf("Unexpected reminder notification: %q", got[0])
	}
}

func TestScheduleReminder_NotificationReachesSubscribers(t *testing.T) {
	inner := &countingSink{}
	broadcast := speech.NewBroadcastSink(inner)

	seen := &countingSink{}
	broadcast.Subscribe("chat", func(text string) { seen.Emit(text) })

	registry := NewRegistry(broadcast)
	defer registry.StopAll()

	if _, err := registry.ScheduleReminder("call mom", 10*time.Millisecond); err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	waitFor(t, func() bool { return len(seen.snapshot()) == 1 })
	if got := seen.snapshot(); got[0] != "Reminder: call mom" {
		t.Errorf("Subscriber saw unexpected notification: %q", got[0])
	}
	if got := inner.snapshot(); len(got) != 1 || got[0] != "Reminder: call mom" {
		t.Errorf("Wrapped sink missed the notification: %v", got)
	}
}

func TestCancel_PreventsFiring(t *testing.T) {
	sink := &countingSink{}
	registry := NewRegistry(sink)
	defer registry.StopAll()

	task, err := registry.ScheduleReminder("buy milk", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	if !registry.Cancel(task.ID) {
		t.Fatal("Cancel should have found the pending task")
	}

	time.Sleep(100 * time.Millisecond)
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("Cancelled reminder still fired: %v", got)
	}

	if registry.Cancel(task.ID) {
		t.Error("Cancel of an already-cancelled task should return false")
	}
}

func TestStopAll_WaitsAndRejectsNewTasks(t *testing.T) {
	sink := &countingSink{}
	registry := NewRegistry(sink)

	if _, err := registry.ScheduleReminder("buy milk", time.Hour); err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	registry.StopAll()

	if pending := registry.List(); len(pending) != 0 {
		t.Errorf("Expected no pending tasks after StopAll, got %d", len(pending))
	}
	if _, err := registry.ScheduleReminder("too late", time.Minute); err == nil {
		t.Error("Stopped registry should reject new tasks")
	}
}

func TestList_ReportsPendingTasks(t *testing.T) {
	registry := NewRegistry(&countingSink{})
	defer registry.StopAll()

	if _, err := registry.ScheduleReminder("water plants", time.Hour); err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	pending := registry.List()
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending task, got %d", len(pending))
	}
	if pending[0].Action != "water plants" {
		t.Errorf("Unexpected task action: %q", pending[0].Action)
	}
}
