package router

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"delta/internal/expr"
	"delta/internal/memory"
	"delta/internal/models"
	"delta/internal/providers"
	"delta/internal/speech"
)

// WeatherService reports current conditions for a city
type WeatherService interface {
	Enabled() bool
	Current(ctx context.Context, city string) (*providers.WeatherReport, error)
}

// NewsService returns top headlines
type NewsService interface {
	Enabled() bool
	TopHeadlines(ctx context.Context) ([]string, error)
}

// DictionaryService returns the first definition of a word
type DictionaryService interface {
	Define(ctx context.Context, word string) (string, error)
}

// EncyclopediaService returns a short topic summary
type EncyclopediaService interface {
	Summary(ctx context.Context, topic string) (string, error)
}

// Scheduler registers deferred alarm and reminder notifications
type Scheduler interface {
	ScheduleAlarm(target string) (models.DeferredTask, error)
	ScheduleReminder(action string, delay time.Duration) (models.DeferredTask, error)
}

// Opener launches URLs, applications, and searches without blocking
type Opener interface {
	OpenTarget(name string) error
	OpenURL(address string) error
	SearchWeb(query string) error
	PlayVideo(query string) error
}

// Assistant holds every collaborator a handler may need. All dependencies are
// injected at construction, there is no package-level mutable state.
type Assistant struct {
	Memory   *memory.Store
	Sink     speech.Sink
	Weather  WeatherService
	News     NewsService
	Dict     DictionaryService
	Wiki     EncyclopediaService
	Tasks    Scheduler
	Launcher Opener
	Now      func() time.Time
}

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"I told my computer I needed a break, and it said it would go to sleep.",
	"There are only 10 kinds of people: those who understand binary and those who don't.",
	"Why did the developer go broke? Because they used up all their cache.",
	"A SQL query walks into a bar, goes up to two tables and asks: may I join you?",
}

func (a *Assistant) clock() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Assistant) respond(intent models.Intent, text string) models.ResponseEvent {
	routingsTotal.WithLabelValues(string(intent)).Inc()
	return models.ResponseEvent{
		Intent:  intent,
		Text:    a.Sink.Emit(text),
		Channel: models.ChannelBoth,
	}
}

// Route normalizes an utterance, classifies it against the ordered rule
// table, and runs the matching handler. Every failure mode degrades to a
// user-facing fallback utterance, so Route never returns an error.
func (a *Assistant) Route(ctx context.Context, utt models.Utterance) models.ResponseEvent {
	cmd := strings.ToLower(strings.TrimSpace(utt.Text))
	if cmd == "" {
		return a.respond(models.IntentUnrecognized,
			"I didn't hear anything. Please say that again or type your command.")
	}

	intent, arg := Classify(cmd)
	log.Printf("🎯 [ROUTER] %q -> %s (arg=%q)", cmd, intent, arg)

	switch intent {
	case models.IntentSetUserName:
		return a.setUserName(intent, arg)
	case models.IntentTellTime:
		return a.respond(intent, "The current time is "+a.clock().Format("03:04 PM"))
	case models.IntentTellDate:
		return a.respond(intent, "Today's date is "+a.clock().Format("January 02, 2006"))
	case models.IntentSearchEncyclopedia:
		return a.searchEncyclopedia(ctx, intent, arg)
	case models.IntentSearchWeb:
		return a.searchWeb(intent, arg)
	case models.IntentOpenTarget:
		return a.openTarget(intent, arg)
	case models.IntentGetWeather:
		return a.getWeather(ctx, intent, arg)
	case models.IntentGetNews:
		return a.getNews(ctx, intent)
	case models.IntentSendEmailPrompt:
		return a.respond(intent, "To send an email, please provide recipient, subject and message.")
	case models.IntentTellJoke:
		return a.respond(intent, jokes[rand.Intn(len(jokes))])
	case models.IntentIdentity:
		return a.respond(intent, "I am Delta, your personal AI assistant.")
	case models.IntentGetUserName:
		return a.getUserName(intent)
	case models.IntentExit:
		return a.respond(intent, "Goodbye. Shutting down.")
	case models.IntentCalculate:
		return a.calculate(intent, arg)
	case models.IntentSetAlarm:
		return a.setAlarm(intent, arg)
	case models.IntentSetReminder:
		return a.setReminder(intent, arg)
	case models.IntentDefine:
		return a.define(ctx, intent, arg)
	case models.IntentPlayVideo:
		return a.playVideo(intent, arg)
	default:
		return a.respond(models.IntentUnrecognized,
			"I didn't understand that. Should I search the web for it?")
	}
}

// Greet announces the assistant with a time-of-day dependent greeting
func (a *Assistant) Greet() models.ResponseEvent {
	var greeting string
	switch hour := a.clock().Hour(); {
	case hour < 12:
		greeting = "Good morning! I'm Delta, your personal AI assistant."
	case hour < 18:
		greeting = "Good afternoon! I'm Delta, your personal AI assistant."
	default:
		greeting = "Good evening! I'm Delta, your personal AI assistant."
	}
	return a.respond(models.IntentIdentity, greeting)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a *Assistant) setUserName(intent models.Intent, name string) models.ResponseEvent {
	name = capitalize(strings.TrimSpace(name))
	if name == "" {
		return a.respond(intent, "What should I call you?")
	}
	a.Memory.Set("name", name)
	return a.respond(intent, fmt.Sprintf("Okay, I'll call you %s.", name))
}

func (a *Assistant) getUserName(intent models.Intent) models.ResponseEvent {
	name, ok := a.Memory.Get("name")
	if !ok {
		name = "not set yet"
	}
	return a.respond(intent, fmt.Sprintf("Your name is %s.", name))
}

func (a *Assistant) searchEncyclopedia(ctx context.Context, intent models.Intent, topic string) models.ResponseEvent {
	if topic == "" {
		return a.respond(intent, "What should I search on Wikipedia?")
	}
	a.Sink.Emit("Searching Wikipedia...")
	summary, err := a.Wiki.Summary(ctx, topic)
	if err != nil {
		log.Printf("⚠️  [ROUTER] Wikipedia lookup failed: %v", err)
		return a.respond(intent, "Couldn't find information on Wikipedia.")
	}
	return a.respond(intent, summary)
}

func (a *Assistant) searchWeb(intent models.Intent, query string) models.ResponseEvent {
	if query == "" {
		return a.respond(intent, "What should I search for?")
	}
	if err := a.Launcher.SearchWeb(query); err != nil {
		log.Printf("⚠️  [ROUTER] Web search launch failed: %v", err)
	}
	return a.respond(intent, fmt.Sprintf("Searching Google for %s", query))
}

func (a *Assistant) openTarget(intent models.Intent, cmd string) models.ResponseEvent {
	// everything after the word "open" names the target
	idx := strings.Index(cmd, "open")
	target := strings.TrimSpace(cmd[idx+len("open"):])
	if target == "" {
		return a.respond(intent, "I can't open that yet.")
	}
	if err := a.Launcher.OpenTarget(target); err != nil {
		log.Printf("⚠️  [ROUTER] Open failed: %v", err)
		return a.respond(intent, "I can't open that yet.")
	}
	return a.respond(intent, fmt.Sprintf("Opening %s.", capitalize(target)))
}

func (a *Assistant) getWeather(ctx context.Context, intent models.Intent, city string) models.ResponseEvent {
	if city == "" {
		return a.respond(intent, "Which city would you like the weather for?")
	}
	if !a.Weather.Enabled() {
		return a.respond(intent, "Weather is not configured. Set DELTA_WEATHER_API_KEY to enable weather.")
	}
	report, err := a.Weather.Current(ctx, city)
	if err != nil {
		log.Printf("⚠️  [ROUTER] Weather lookup failed: %v", err)
		return a.respond(intent, "Weather lookup failed.")
	}
	return a.respond(intent, report.Speak())
}

func (a *Assistant) getNews(ctx context.Context, intent models.Intent) models.ResponseEvent {
	if !a.News.Enabled() {
		return a.respond(intent, "News is not configured. Set DELTA_NEWS_API_KEY to enable headlines.")
	}
	headlines, err := a.News.TopHeadlines(ctx)
	if err != nil {
		log.Printf("⚠️  [ROUTER] News lookup failed: %v", err)
		return a.respond(intent, "News lookup failed.")
	}
	if len(headlines) == 0 {
		return a.respond(intent, "No news found.")
	}
	a.Sink.Emit("Here are the top headlines:")
	lines := make([]string, 0, len(headlines))
	for i, title := range headlines {
		line := fmt.Sprintf("%d. %s", i+1, title)
		lines = append(lines, line)
		a.Sink.Emit(line)
	}
	routingsTotal.WithLabelValues(string(intent)).Inc()
	return models.ResponseEvent{
		Intent:  intent,
		Text:    strings.Join(lines, "\n"),
		Channel: models.ChannelBoth,
	}
}

func (a *Assistant) calculate(intent models.Intent, input string) models.ResponseEvent {
	result, err := expr.Evaluate(input)
	if err != nil {
		log.Printf("⚠️  [ROUTER] Evaluation failed for %q: %v", input, err)
		return a.respond(intent, "I couldn't calculate that.")
	}
	return a.respond(intent, "The result is "+strconv.FormatFloat(result, 'f', -1, 64))
}

func (a *Assistant) setAlarm(intent models.Intent, target string) models.ResponseEvent {
	if target == "" {
		return a.respond(intent, "Please tell me the alarm time in HH:MM format.")
	}
	task, err := a.Tasks.ScheduleAlarm(target)
	if err != nil {
		return a.respond(intent, "Please tell me the alarm time in HH:MM format.")
	}
	return a.respond(intent, fmt.Sprintf("Alarm set for %s", task.Target))
}

func (a *Assistant) setReminder(intent models.Intent, cmd string) models.ResponseEvent {
	m := reminderPattern.FindStringSubmatch(cmd)
	if m == nil {
		return a.respond(intent, "Please say reminders like: remind me to buy milk in 10 minutes.")
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil || minutes <= 0 {
		return a.respond(intent, "Please say reminders like: remind me to buy milk in 10 minutes.")
	}
	action := strings.TrimSpace(m[1])
	if _, err := a.Tasks.ScheduleReminder(action, time.Duration(minutes)*time.Minute); err != nil {
		log.Printf("⚠️  [ROUTER] Reminder scheduling failed: %v", err)
		return a.respond(intent, "I couldn't set that reminder.")
	}
	return a.respond(intent, fmt.Sprintf("Reminder set for %d minutes from now.", minutes))
}

func (a *Assistant) define(ctx context.Context, intent models.Intent, word string) models.ResponseEvent {
	if word == "" {
		return a.respond(intent, "Which word should I define?")
	}
	definition, err := a.Dict.Define(ctx, word)
	if err != nil {
		log.Printf("⚠️  [ROUTER] Definition lookup failed: %v", err)
		return a.respond(intent, "I couldn't find a definition.")
	}
	return a.respond(intent, definition)
}

func (a *Assistant) playVideo(intent models.Intent, query string) models.ResponseEvent {
	if query == "" {
		return a.respond(intent, "What should I play?")
	}
	if err := a.Launcher.PlayVideo(query); err != nil {
		log.Printf("⚠️  [ROUTER] Video launch failed: %v", err)
	}
	return a.respond(intent, fmt.Sprintf("Playing %s on YouTube.", query))
}
