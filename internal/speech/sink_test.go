package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingSpeaker tracks concurrent Speak calls to verify serialization
type recordingSpeaker struct {
	mu       sync.Mutex
	active   int
	maxSeen  int
	spoken   []string
	speakErr error
}

func (r *recordingSpeaker) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	r.active++
	if r.active > r.maxSeen {
		r.maxSeen = r.active
	}
	r.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	r.mu.Lock()
	r.active--
	r.spoken = append(r.spoken, text)
	r.mu.Unlock()
	return r.speakErr
}

func (r *recordingSpeaker) snapshot() (int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxSeen, append([]string(nil), r.spoken...)
}

func TestSpokenSink_ReturnsTextImmediately(t *testing.T) {
	sink := NewSpokenSink(&recordingSpeaker{}, 4)
	defer sink.Close()

	got := sink.Emit("hello")
	if got != "hello" {
		t.Errorf("Emit should return its input, got %q", got)
	}
}

func TestSpokenSink_SerializesVocalization(t *testing.T) {
	speaker := &recordingSpeaker{}
	sink := NewSpokenSink(speaker, 16)

	for i := 0; i < 8; i++ {
		sink.Emit("line")
	}

	// Give the worker time to drain before closing
	deadline := time.Now().Add(time.Second)
	for {
		_, spoken := speaker.snapshot()
		if len(spoken) == 8 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	sink.Close()

	maxSeen, spoken := speaker.snapshot()
	if maxSeen > 1 {
		t.Errorf("Expected at most one concurrent Speak call, saw %d", maxSeen)
	}
	if len(spoken) == 0 {
		t.Error("Expected at least one utterance to be spoken")
	}
}

func TestSpokenSink_SwallowsSpeakerErrors(t *testing.T) {
	speaker := &recordingSpeaker{speakErr: errors.New("no audio device")}
	sink := NewSpokenSink(speaker, 4)
	defer sink.Close()

	// Must not panic or propagate
	if got := sink.Emit("hello"); got != "hello" {
		t.Errorf("Emit should still return its input on speaker failure, got %q", got)
	}
}

func TestSpokenSink_EmptyTextIsIgnored(t *testing.T) {
	speaker := &recordingSpeaker{}
	sink := NewSpokenSink(speaker, 4)
	defer sink.Close()

	if got := sink.Emit(""); got != "" {
		t.Errorf("Emit(\"\") should return \"\", got %q", got)
	}
}

func TestTranscriptSink_RecordsBeforeDelegating(t *testing.T) {
	var recorded []string
	inner := NewSpokenSink(&recordingSpeaker{}, 4)
	defer inner.Close()

	sink := NewTranscriptSink(inner, func(text string) {
		recorded = append(recorded, text)
	})

	got := sink.Emit("shown and spoken")
	if got != "shown and spoken" {
		t.Errorf("TranscriptSink should pass text through, got %q", got)
	}
	if len(recorded) != 1 || recorded[0] != "shown and spoken" {
		t.Errorf("Expected transcript to record the emission, got %v", recorded)
	}
}

func TestBroadcastSink_FansOutToSubscribers(t *testing.T) {
	inner := NewSpokenSink(&recordingSpeaker{}, 4)
	defer inner.Close()

	sink := NewBroadcastSink(inner)

	var a, b []string
	sink.Subscribe("a", func(text string) { a = append(a, text) })
	sink.Subscribe("b", func(text string) { b = append(b, text) })

	if got := sink.Emit("Alarm ringing"); got != "Alarm ringing" {
		t.Errorf("BroadcastSink should pass text through, got %q", got)
	}
	if len(a) != 1 || a[0] != "Alarm ringing" {
		t.Errorf("Subscriber a missed the emission: %v", a)
	}
	if len(b) != 1 || b[0] != "Alarm ringing" {
		t.Errorf("Subscriber b missed the emission: %v", b)
	}

	sink.Unsubscribe("a")
	sink.Emit("second")
	if len(a) != 1 {
		t.Errorf("Unsubscribed subscriber still notified: %v", a)
	}
	if len(b) != 2 {
		t.Errorf("Remaining subscriber missed the second emission: %v", b)
	}
}

func TestBroadcastSink_EmptyTextIsIgnored(t *testing.T) {
	inner := NewSpokenSink(&recordingSpeaker{}, 4)
	defer inner.Close()

	sink := NewBroadcastSink(inner)
	notified := false
	sink.Subscribe("a", func(string) { notified = true })

	if got := sink.Emit(""); got != "" {
		t.Errorf("Emit(\"\") should return \"\", got %q", got)
	}
	if notified {
		t.Error("Subscribers should not be notified for empty emissions")
	}
}

func TestStripWake(t *testing.T) {
	testCases := []struct {
		phrase  string
		cmd     string
		woke    bool
	}{
		{"hey delta what time is it", "what time is it", true},
		{"delta tell me a joke", "tell me a joke", true},
		{"hey delta", "", true},
		{"delta", "", true},
		{"what time is it", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.phrase, func(t *testing.T) {
			cmd, woke := StripWake(tc.phrase)
			if woke != tc.woke || cmd != tc.cmd {
				t.Errorf("StripWake(%q) = (%q, %v), want (%q, %v)", tc.phrase, cmd, woke, tc.cmd, tc.woke)
			}
		})
	}
}
