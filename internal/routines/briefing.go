package routines

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"delta/internal/router"
	"delta/internal/speech"
)

// Briefing announces the weather and top headlines on a cron schedule.
// It is optional and only runs when a schedule expression is configured.
type Briefing struct {
	scheduler gocron.Scheduler
	sink      speech.Sink
	weather   router.WeatherService
	news      router.NewsService
	city      string
	spec      string
}

// NewBriefing validates the cron expression and prepares the scheduler.
// Standard five-field cron syntax, e.g. "0 8 * * *" for eight every morning.
func NewBriefing(spec, city string, sink speech.Sink, weather router.WeatherService, news router.NewsService) (*Briefing, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid briefing cron expression %q: %w", spec, err)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, fmt.Errorf("failed to create briefing scheduler: %w", err)
	}

	return &Briefing{
		scheduler: scheduler,
		sink:      sink,
		weather:   weather,
		news:      news,
		city:      city,
		spec:      spec,
	}, nil
}

// Start registers the briefing job and starts the scheduler
func (b *Briefing) Start() error {
	_, err := b.scheduler.NewJob(
		gocron.CronJob(b.spec, false),
		gocron.NewTask(b.run),
		gocron.WithName("daily_briefing"),
	)
	if err != nil {
		return fmt.Errorf("failed to register briefing job: %w", err)
	}

	b.scheduler.Start()
	log.Printf("⏰ [BRIEFING] Daily briefing scheduled (%s, city=%s)", b.spec, b.city)
	return nil
}

// Stop shuts the scheduler down and waits for a running briefing to finish
func (b *Briefing) Stop() error {
	return b.scheduler.Shutdown()
}

func (b *Briefing) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	b.sink.Emit("Here is your daily briefing.")

	if b.weather != nil && b.weather.Enabled() && b.city != "" {
		report, err := b.weather.Current(ctx, b.city)
		if err != nil {
			log.Printf("⚠️  [BRIEFING] Weather lookup failed: %v", err)
		} else {
			b.sink.Emit(report.Speak())
		}
	}

	if b.news != nil && b.news.Enabled() {
		headlines, err := b.news.TopHeadlines(ctx)
		if err != nil {
			log.Printf("⚠️  [BRIEFING] News lookup failed: %v", err)
			return
		}
		if len(headlines) == 0 {
			return
		}
		b.sink.Emit("Here are the top headlines:")
		for i, title := range headlines {
			b.sink.Emit(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(title)))
		}
	}
}
