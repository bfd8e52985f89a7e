package speech

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// WakeWords are the trigger phrases that activate listening in passive mode
var WakeWords = []string{"hey delta", "delta"}

// StripWake reports whether phrase contains a wake word and returns the
// command that follows it (possibly empty when the wake word stood alone).
func StripWake(phrase string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(phrase))
	if normalized == "" {
		return "", false
	}

	if idx := strings.Index(normalized, "hey delta"); idx >= 0 {
		return strings.TrimSpace(normalized[idx+len("hey delta"):]), true
	}
	if strings.HasPrefix(normalized, "delta") {
		return strings.TrimSpace(strings.TrimPrefix(normalized, "delta")), true
	}
	return "", false
}

// WakeListener runs a passive background loop that captures short phrases and
// invokes onCommand when a wake word is heard. It is the only background
// activity that must be cancellable at shutdown.
type WakeListener struct {
	listener  *Listener
	onCommand func(cmd string)
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewWakeListener wires a passive listener to a command callback. The
// callback receives the utterance with the wake word already stripped; an
// empty command means "wake word alone, listen for a follow-up".
func NewWakeListener(listener *Listener, onCommand func(cmd string)) *WakeListener {
	return &WakeListener{
		listener:  listener,
		onCommand: onCommand,
	}
}

// Start begins the passive loop. No-op when recognition is unconfigured.
func (w *WakeListener) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	if !w.listener.Configured() {
		log.Println("⚠️  [WAKE] Speech recognition not configured, passive listener disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx)
	log.Println("👂 [WAKE] Passive wake listener started")
}

func (w *WakeListener) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		phrase := w.listener.Listen(ctx, 6*time.Second, 4*time.Second)
		if phrase == "" {
			// Back off a little so a broken capture backend doesn't
			// turn this loop into a busy spin.
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}

		cmd, woke := StripWake(phrase)
		if !woke {
			continue
		}

		log.Printf("👂 [WAKE] Wake word detected: %q", phrase)
		if cmd == "" {
			// Wake word alone: capture the follow-up command
			cmd = w.listener.Listen(ctx, 6*time.Second, 8*time.Second)
			if cmd == "" {
				log.Println("👂 [WAKE] No follow-up command heard")
				continue
			}
		}
		w.onCommand(cmd)
	}
}

// Stop cancels the passive loop and waits for it to exit
func (w *WakeListener) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.running = false
	log.Println("👂 [WAKE] Passive wake listener stopped")
}
