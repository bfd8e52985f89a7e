package router

import (
	"regexp"
	"strings"

	"delta/internal/models"
)

// rule pairs an intent with its trigger predicate and argument extractor.
// Rules are evaluated top to bottom and the first match wins, so the order
// below is a deliberate tie-break between overlapping substring tests
// ("what is the weather" must hit the weather rule, not the calculator).
type rule struct {
	Intent  models.Intent
	Match   func(cmd string) bool
	Extract func(cmd string) string
}

var (
	weatherCityPattern = regexp.MustCompile(`weather(?: in| at)? ([a-zA-Z\s]+)`)
	reminderPattern    = regexp.MustCompile(`remind me to (.+?) in (\d+)\s*minutes?`)
	alarmTimePattern   = regexp.MustCompile(`(\d{1,2}:\d{2})`)
)

func containsAny(cmd string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(cmd, w) {
			return true
		}
	}
	return false
}

func stripWords(cmd string, words ...string) string {
	for _, w := range words {
		cmd = strings.ReplaceAll(cmd, w, "")
	}
	return strings.TrimSpace(cmd)
}

var rules = []rule{
	{
		Intent: models.IntentSetUserName,
		Match: func(cmd string) bool {
			return strings.HasPrefix(cmd, "call me ") || strings.HasPrefix(cmd, "my name is ")
		},
		Extract: func(cmd string) string {
			return stripWords(cmd, "call me ", "my name is ")
		},
	},
	{
		Intent: models.IntentTellTime,
		Match: func(cmd string) bool {
			return strings.Contains(cmd, "time") && !strings.HasPrefix(cmd, "time in")
		},
	},
	{
		Intent: models.IntentTellDate,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "date") },
	},
	{
		Intent:  models.IntentSearchEncyclopedia,
		Match:   func(cmd string) bool { return strings.Contains(cmd, "wikipedia") },
		Extract: func(cmd string) string { return stripWords(cmd, "wikipedia") },
	},
	{
		Intent: models.IntentSearchWeb,
		Match: func(cmd string) bool {
			return strings.HasPrefix(cmd, "search ") || strings.Contains(cmd, "google")
		},
		Extract: func(cmd string) string { return stripWords(cmd, "search", "google") },
	},
	{
		Intent: models.IntentOpenTarget,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "open") },
	},
	{
		Intent: models.IntentGetWeather,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "weather") },
		Extract: func(cmd string) string {
			if m := weatherCityPattern.FindStringSubmatch(cmd); m != nil {
				return strings.TrimSpace(m[1])
			}
			return ""
		},
	},
	{
		Intent: models.IntentGetNews,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "news") },
	},
	{
		Intent: models.IntentSendEmailPrompt,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "email") },
	},
	{
		Intent: models.IntentTellJoke,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "joke") },
	},
	{
		Intent: models.IntentIdentity,
		Match: func(cmd string) bool {
			return strings.Contains(cmd, "your name") || strings.Contains(cmd, "who are you")
		},
	},
	{
		Intent: models.IntentGetUserName,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "my name") },
	},
	{
		Intent: models.IntentExit,
		Match:  func(cmd string) bool { return containsAny(cmd, "exit", "stop", "quit", "goodbye") },
	},
	{
		Intent: models.IntentCalculate,
		Match: func(cmd string) bool {
			return strings.Contains(cmd, "calculate") ||
				strings.ContainsAny(cmd, "+-*/%^") ||
				strings.HasPrefix(cmd, "what is")
		},
		Extract: func(cmd string) string { return stripWords(cmd, "calculate", "what is") },
	},
	{
		Intent: models.IntentSetAlarm,
		Match: func(cmd string) bool {
			return strings.Contains(cmd, "set alarm") || strings.Contains(cmd, "alarm")
		},
		Extract: func(cmd string) string {
			if m := alarmTimePattern.FindStringSubmatch(cmd); m != nil {
				return m[1]
			}
			return ""
		},
	},
	{
		Intent: models.IntentSetReminder,
		Match:  func(cmd string) bool { return strings.Contains(cmd, "remind me") },
	},
	{
		Intent: models.IntentDefine,
		Match: func(cmd string) bool {
			return strings.HasPrefix(cmd, "define ") || strings.Contains(cmd, "definition of")
		},
		Extract: func(cmd string) string { return stripWords(cmd, "define ", "definition of") },
	},
	{
		Intent: models.IntentPlayVideo,
		Match: func(cmd string) bool {
			return strings.Contains(cmd, "play") && strings.Contains(cmd, "youtube")
		},
		Extract: func(cmd string) string { return stripWords(cmd, "play", "on youtube", "youtube") },
	},
}

// Classify runs the ordered rule table over a normalized command and returns
// the selected intent with its extracted argument. Unmatched commands come
// back as IntentUnrecognized with the full command as the argument.
func Classify(cmd string) (models.Intent, string) {
	for _, r := range rules {
		if !r.Match(cmd) {
			continue
		}
		arg := cmd
		if r.Extract != nil {
			arg = r.Extract(cmd)
		}
		return r.Intent, arg
	}
	return models.IntentUnrecognized, cmd
}
