package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// Memory persistence
	MemoryFile string

	// External provider credentials (absence disables the feature)
	WeatherAPIKey string
	NewsAPIKey    string
	NewsCountry   string

	// Speech providers (Whisper-compatible STT, OpenAI-compatible TTS)
	STTAPIKey  string
	STTBaseURL string
	TTSAPIKey  string
	TTSBaseURL string
	TTSVoice   string

	// Email sender identity
	EmailSender   string
	EmailPassword string
	SMTPHost      string
	SMTPPort      int

	// Transcript history (SQLite)
	HistoryDB string

	// Open-target aliases file
	TargetsFile string

	// Optional daily briefing routine
	BriefingCron string
	BriefingCity string

	// Worst-case latency bound for all provider lookups
	LookupTimeout time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MemoryFile: getEnv("DELTA_MEMORY_FILE", "delta_memory.json"),

		WeatherAPIKey: getEnv("DELTA_WEATHER_API_KEY", ""),
		NewsAPIKey:    getEnv("DELTA_NEWS_API_KEY", ""),
		NewsCountry:   getEnv("DELTA_NEWS_COUNTRY", "in"),

		STTAPIKey:  getEnv("DELTA_STT_API_KEY", ""),
		STTBaseURL: getEnv("DELTA_STT_BASE_URL", "https://api.groq.com/openai/v1"),
		TTSAPIKey:  getEnv("DELTA_TTS_API_KEY", ""),
		TTSBaseURL: getEnv("DELTA_TTS_BASE_URL", "https://api.openai.com/v1"),
		TTSVoice:   getEnv("DELTA_TTS_VOICE", "nova"),

		EmailSender:   getEnv("DELTA_EMAIL_SENDER", ""),
		EmailPassword: getEnv("DELTA_EMAIL_PASSWORD", ""),
		SMTPHost:      getEnv("DELTA_SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getIntEnv("DELTA_SMTP_PORT", 587),

		HistoryDB: getEnv("DELTA_HISTORY_DB", "delta_history.db"),

		TargetsFile: getEnv("DELTA_TARGETS_FILE", ""),

		BriefingCron: getEnv("DELTA_BRIEFING_CRON", ""),
		BriefingCity: getEnv("DELTA_BRIEFING_CITY", "Delhi"),

		LookupTimeout: time.Duration(getIntEnv("DELTA_LOOKUP_TIMEOUT_SECONDS", 6)) * time.Second,
	}
}

// WarnMissing logs a one-time startup warning for every feature whose
// credential is absent. Absence disables the feature, it never crashes.
func (c *Config) WarnMissing() {
	if c.WeatherAPIKey == "" {
		log.Println("⚠️  DELTA_WEATHER_API_KEY not set - weather feature disabled until configured")
	}
	if c.NewsAPIKey == "" {
		log.Println("⚠️  DELTA_NEWS_API_KEY not set - news feature disabled until configured")
	}
	if c.EmailSender == "" || c.EmailPassword == "" {
		log.Println("⚠️  Email sender/password not set - email feature disabled until configured")
	}
	if c.STTAPIKey == "" {
		log.Println("⚠️  DELTA_STT_API_KEY not set - speech recognition disabled, typed input only")
	}
	if c.TTSAPIKey == "" {
		log.Println("⚠️  DELTA_TTS_API_KEY not set - responses will be displayed but not spoken")
	}
}

// Targets maps spoken target names to URLs or local commands for the
// "open <target>" command.
type Targets struct {
	URLs     map[string]string `yaml:"urls"`
	Commands map[string]string `yaml:"commands"`
}

// DefaultTargets returns the built-in open targets
func DefaultTargets() *Targets {
	return &Targets{
		URLs: map[string]string{
			"youtube": "https://www.youtube.com",
			"google":  "https://www.google.com",
		},
		Commands: map[string]string{
			"notepad": "notepad",
			"chrome":  "google-chrome",
		},
	}
}

// LoadTargets reads open-target aliases from a YAML file and merges them over
// the defaults. An empty path returns the defaults unchanged.
func LoadTargets(path string) (*Targets, error) {
	targets := DefaultTargets()
	if path == "" {
		return targets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}

	var loaded Targets
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse targets YAML: %w", err)
	}

	for name, url := range loaded.URLs {
		targets.URLs[name] = url
	}
	for name, cmd := range loaded.Commands {
		targets.Commands[name] = cmd
	}
	return targets, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
