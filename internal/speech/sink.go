package speech

import (
	"context"
	"log"
	"sync"
)

// Sink turns response text into spoken and displayed output. Emit returns the
// same text so synchronous callers can echo it to a display surface.
type Sink interface {
	Emit(text string) string
}

// Speaker vocalizes a single utterance. Implementations block until playback
// finishes; the sink serializes calls so audio never overlaps.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpokenSink queues text for background vocalization without blocking the
// caller. One utterance is spoken at a time; when the queue is full new
// requests are dropped with a log line rather than overlapping audio.
type SpokenSink struct {
	speaker Speaker
	queue   chan string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// NewSpokenSink starts the vocalization worker. queueSize bounds how many
// pending utterances are held before new ones are dropped.
func NewSpokenSink(speaker Speaker, queueSize int) *SpokenSink {
	if queueSize <= 0 {
		queueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SpokenSink{
		speaker: speaker,
		queue:   make(chan string, queueSize),
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.speakLoop(ctx)
	return s
}

func (s *SpokenSink) speakLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-s.queue:
			if !ok {
				return
			}
			if err := s.speaker.Speak(ctx, text); err != nil {
				// Vocalization failures never reach the caller
				log.Printf("⚠️  [SPEECH] TTS failed: %v", err)
			}
		}
	}
}

// Emit queues text for speech and returns it immediately
func (s *SpokenSink) Emit(text string) string {
	if text == "" {
		return ""
	}

	select {
	case s.queue <- text:
	default:
		log.Printf("⚠️  [SPEECH] Speech queue full, dropping: %q", text)
	}

	log.Printf("🗣️  [SPEECH] Queued: %s", text)
	return text
}

// Close stops the vocalization worker. Queued utterances not yet spoken are
// discarded.
func (s *SpokenSink) Close() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// TranscriptSink decorates another sink, recording every emitted line before
// delegating. This is the seam the presentation layer uses to mirror spoken
// output into a chat transcript without changing routing behavior.
type TranscriptSink struct {
	next   Sink
	record func(text string)
}

// NewTranscriptSink wraps next so that record observes every emission
func NewTranscriptSink(next Sink, record func(text string)) *TranscriptSink {
	return &TranscriptSink{next: next, record: record}
}

// Emit records the text and then delegates to the wrapped sink
func (s *TranscriptSink) Emit(text string) string {
	if s.record != nil {
		s.record(text)
	}
	return s.next.Emit(text)
}

// NullSpeaker discards speech. Used when TTS is not configured and in tests.
type NullSpeaker struct{}

func (NullSpeaker) Speak(ctx context.Context, text string) error { return nil }
