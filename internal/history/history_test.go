package history

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestAppendAndRecent(t *testing.T) {
	store, _ := openTestStore(t)

	lines := []struct{ speaker, content string }{
		{"you", "what time is it"},
		{"delta", "The current time is 07:30 PM"},
		{"you", "tell me a joke"},
	}
	for _, l := range lines {
		if err := store.Append(l.speaker, l.content); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	// chronological order
	if entries[0].Content != "what time is it" || entries[2].Content != "tell me a joke" {
		t.Errorf("Entries out of order: %+v", entries)
	}
	if entries[1].Speaker != "delta" {
		t.Errorf("Expected delta as second speaker, got %q", entries[1].Speaker)
	}
}

func TestRecent_HonorsLimit(t *testing.T) {
	store, _ := openTestStore(t)

	for i := 0; i < 10; i++ {
		if err := store.Append("you", "line"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := store.Recent(4)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries, got %d", len(entries))
	}
}

func TestAppend_IgnoresEmptyContent(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.Append("you", ""); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Empty content was persisted: %+v", entries)
	}
}

func TestTranscript_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Append("you", "remember this"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "remember this" {
		t.Errorf("Transcript lost across reopen: %+v", entries)
	}
}
