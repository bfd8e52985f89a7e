package launcher

import (
	"strings"
	"sync"
	"testing"

	"delta/internal/config"
)

type launchRecorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *launchRecorder) run(name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()
	return nil
}

func (r *launchRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func newTestLauncher(targets *config.Targets) (*Launcher, *launchRecorder) {
	recorder := &launchRecorder{}
	l := New(targets)
	l.run = recorder.run
	return l, recorder
}

func lastArg(call []string) string {
	if len(call) == 0 {
		return ""
	}
	return call[len(call)-1]
}

func TestOpenTarget_KnownURLAlias(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.OpenTarget("youtube"); err != nil {
		t.Fatalf("OpenTarget failed: %v", err)
	}
	l.Wait()

	call := recorder.last()
	if !strings.Contains(lastArg(call), "youtube.com") {
		t.Errorf("Expected a youtube.com URL, got %v", call)
	}
}

func TestOpenTarget_KnownCommandAlias(t *testing.T) {
	targets := config.DefaultTargets()
	targets.Commands["editor"] = "gedit --new-window"
	l, recorder := newTestLauncher(targets)

	if err := l.OpenTarget("editor"); err != nil {
		t.Fatalf("OpenTarget failed: %v", err)
	}
	l.Wait()

	call := recorder.last()
	if len(call) != 2 || call[0] != "gedit" || call[1] != "--new-window" {
		t.Errorf("Expected command split into program and args, got %v", call)
	}
}

func TestOpenTarget_WebsiteNameOpensOverHTTP(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.OpenTarget("news.ycombinator.com"); err != nil {
		t.Fatalf("OpenTarget failed: %v", err)
	}
	l.Wait()

	if got := lastArg(recorder.last()); got != "http://news.ycombinator.com" {
		t.Errorf("Unexpected URL: %q", got)
	}
}

func TestOpenTarget_RejectsUnknownBareWord(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.OpenTarget("stack overflow"); err == nil {
		t.Error("Expected an error for an unaliased name without a dot")
	}
	l.Wait()

	if recorder.last() != nil {
		t.Errorf("Nothing should have been launched, got %v", recorder.last())
	}
}

func TestOpenTarget_RejectsEmptyName(t *testing.T) {
	l, _ := newTestLauncher(nil)
	if err := l.OpenTarget("   "); err == nil {
		t.Error("Expected an error for a blank target name")
	}
}

func TestOpenURL_AddsScheme(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.OpenURL("example.org/page"); err != nil {
		t.Fatalf("OpenURL failed: %v", err)
	}
	l.Wait()

	if got := lastArg(recorder.last()); got != "https://example.org/page" {
		t.Errorf("Unexpected URL: %q", got)
	}
}

func TestSearchWeb_EscapesQuery(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.SearchWeb("go generics tutorial"); err != nil {
		t.Fatalf("SearchWeb failed: %v", err)
	}
	l.Wait()

	got := lastArg(recorder.last())
	if !strings.HasPrefix(got, "https://www.google.com/search?q=") {
		t.Fatalf("Unexpected search URL: %q", got)
	}
	if !strings.Contains(got, "go+generics+tutorial") {
		t.Errorf("Query not escaped: %q", got)
	}
}

func TestPlayVideo_OpensYouTubeResults(t *testing.T) {
	l, recorder := newTestLauncher(nil)

	if err := l.PlayVideo("lo fi beats"); err != nil {
		t.Fatalf("PlayVideo failed: %v", err)
	}
	l.Wait()

	got := lastArg(recorder.last())
	if !strings.HasPrefix(got, "https://www.youtube.com/results?search_query=") {
		t.Errorf("Unexpected video URL: %q", got)
	}
}
