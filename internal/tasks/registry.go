package tasks

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"delta/internal/models"
	"delta/internal/speech"
)

var alarmTimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Registry owns every deferred task (alarms and reminders) from creation
// until it fires or is cancelled. Tasks are identifiable and cancellable so
// shutdown and tests can wait for them deterministically.
type Registry struct {
	sink speech.Sink
	now  func() time.Time
	tick time.Duration

	mu     sync.Mutex
	tasks  map[string]*trackedTask
	wg     sync.WaitGroup
	closed bool
}

type trackedTask struct {
	models.DeferredTask
	cancel context.CancelFunc
}

// NewRegistry creates a task registry emitting notifications through sink
func NewRegistry(sink speech.Sink) *Registry {
	return &Registry{
		sink:  sink,
		now:   time.Now,
		tick:  10 * time.Second,
		tasks: make(map[string]*trackedTask),
	}
}

// ScheduleAlarm schedules a notification for the next occurrence of target
// (HH:MM, 24-hour). A target already passed today rolls over to tomorrow.
// The wall clock is polled at a coarse interval and the alarm fires once the
// target time has been reached or passed, so a missed tick only delays the
// notification instead of dropping it.
func (r *Registry) ScheduleAlarm(target string) (models.DeferredTask, error) {
	m := alarmTimePattern.FindStringSubmatch(target)
	if m == nil {
		return models.DeferredTask{}, fmt.Errorf("invalid alarm time %q, expected HH:MM", target)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return models.DeferredTask{}, fmt.Errorf("invalid alarm time %q, expected HH:MM", target)
	}
	normalized := fmt.Sprintf("%02d:%02d", hour, minute)

	now := r.now()
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !fireAt.After(now) {
		fireAt = fireAt.Add(24 * time.Hour)
	}

	task := models.DeferredTask{
		ID:        uuid.New().String(),
		Kind:      models.TaskAlarm,
		Target:    normalized,
		CreatedAt: now,
	}

	if err := r.launch(task, func(ctx context.Context) {
		r.pollUntil(ctx, fireAt)
	}, "Alarm ringing"); err != nil {
		return models.DeferredTask{}, err
	}

	log.Printf("⏰ [TASKS] Alarm %s set for %s", task.ID, normalized)
	return task, nil
}

// ScheduleReminder schedules a one-shot notification after delay
func (r *Registry) ScheduleReminder(action string, delay time.Duration) (models.DeferredTask, error) {
	if delay <= 0 {
		return models.DeferredTask{}, fmt.Errorf("reminder delay must be positive")
	}

	task := models.DeferredTask{
		ID:        uuid.New().String(),
		Kind:      models.TaskReminder,
		Action:    action,
		Delay:     delay,
		CreatedAt: r.now(),
	}

	if err := r.launch(task, func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}, "Reminder: "+action); err != nil {
		return models.DeferredTask{}, err
	}

	log.Printf("⏰ [TASKS] Reminder %s set for %s from now", task.ID, delay)
	return task, nil
}

// launch runs wait on its own goroutine and emits message when wait returns
// without the task having been cancelled.
func (r *Registry) launch(task models.DeferredTask, wait func(ctx context.Context), message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("task registry is stopped")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.tasks[task.ID] = &trackedTask{DeferredTask: task, cancel: cancel}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.remove(task.ID)

		wait(ctx)
		if ctx.Err() != nil {
			return
		}
		r.sink.Emit(message)
	}()
	return nil
}

// pollUntil checks the wall clock at the registry's tick interval until
// fireAt has been reached or passed
func (r *Registry) pollUntil(ctx context.Context, fireAt time.Time) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		if !r.now().Before(fireAt) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.tasks, id)
	r.mu.Unlock()
}

// Cancel stops a pending task. Returns false when the task is unknown or has
// already fired.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	task, ok := r.tasks[id]
	r.mu.Unlock()

	if !ok {
		return false
	}
	task.cancel()
	log.Printf("⏰ [TASKS] Cancelled task %s", id)
	return true
}

// List returns a snapshot of all pending tasks
func (r *Registry) List() []models.DeferredTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make([]models.DeferredTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		pending = append(pending, task.DeferredTask)
	}
	return pending
}

// StopAll cancels every pending task and waits for their goroutines to exit.
// The registry accepts no new tasks afterwards.
func (r *Registry) StopAll() {
	r.mu.Lock()
	r.closed = true
	for _, task := range r.tasks {
		task.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}
