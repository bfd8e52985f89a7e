package routines

import (
	"context"
	"strings"
	"sync"
	"testing"

	"delta/internal/providers"
)

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Emit(text string) string {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
	return text
}

func (s *recordingSink) joined() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.lines, "\n")
}

type stubWeather struct{ enabled bool }

func (w *stubWeather) Enabled() bool { return w.enabled }

func (w *stubWeather) Current(_ context.Context, city string) (*providers.WeatherReport, error) {
	return &providers.WeatherReport{City: city, Condition: "Cloudy", TempC: 14, Humidity: 60, WindKPH: 12}, nil
}

type stubNews struct{ enabled bool }

func (n *stubNews) Enabled() bool { return n.enabled }

func (n *stubNews) TopHeadlines(context.Context) ([]string, error) {
	return []string{"Local team wins", "Rain expected"}, nil
}

func TestNewBriefing_RejectsBadCron(t *testing.T) {
	sink := &recordingSink{}
	for _, spec := range []string{"", "not a cron", "61 * * * *", "* * * *"} {
		if _, err := NewBriefing(spec, "delhi", sink, &stubWeather{}, &stubNews{}); err == nil {
			t.Errorf("NewBriefing(%q) should have failed", spec)
		}
	}
}

func TestNewBriefing_AcceptsStandardCron(t *testing.T) {
	b, err := NewBriefing("0 8 * * *", "delhi", &recordingSink{}, &stubWeather{}, &stubNews{})
	if err != nil {
		t.Fatalf("NewBriefing failed: %v", err)
	}
	if err := b.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestBriefing_AnnouncesWeatherAndHeadlines(t *testing.T) {
	sink := &recordingSink{}
	b, err := NewBriefing("0 8 * * *", "delhi", sink, &stubWeather{enabled: true}, &stubNews{enabled: true})
	if err != nil {
		t.Fatalf("NewBriefing failed: %v", err)
	}
	defer b.Stop()

	b.run()

	out := sink.joined()
	for _, want := range []string{"daily briefing", "delhi", "Cloudy", "1. Local team wins", "2. Rain expected"} {
		if !strings.Contains(out, want) {
			t.Errorf("Briefing output missing %q:\n%s", want, out)
		}
	}
}

func TestBriefing_SkipsDisabledProviders(t *testing.T) {
	sink := &recordingSink{}
	b, err := NewBriefing("0 8 * * *", "delhi", sink, &stubWeather{}, &stubNews{})
	if err != nil {
		t.Fatalf("NewBriefing failed: %v", err)
	}
	defer b.Stop()

	b.run()

	out := sink.joined()
	if strings.Contains(out, "Cloudy") || strings.Contains(out, "headlines") {
		t.Errorf("Disabled providers still produced output:\n%s", out)
	}
}
