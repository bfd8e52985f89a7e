package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"delta/internal/config"
	"delta/internal/handlers"
	"delta/internal/history"
	"delta/internal/launcher"
	"delta/internal/logging"
	"delta/internal/mail"
	"delta/internal/memory"
	"delta/internal/models"
	"delta/internal/providers"
	"delta/internal/router"
	"delta/internal/routines"
	"delta/internal/speech"
	"delta/internal/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	logging.Init()

	log.Println("🚀 Starting Delta server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	cfg.WarnMissing()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	store := memory.Open(cfg.MemoryFile)
	defer store.Close()

	var speaker speech.Speaker = speech.NullSpeaker{}
	if cfg.TTSAPIKey != "" {
		speaker = speech.NewHTTPSpeaker(cfg.TTSBaseURL, cfg.TTSAPIKey, cfg.TTSVoice)
	}
	sink := speech.NewSpokenSink(speaker, 16)
	defer sink.Close()

	transcripts, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Printf("⚠️  Transcript history disabled: %v", err)
		transcripts = nil
	} else {
		defer transcripts.Close()
	}

	// Everything spoken in server mode goes through the broadcast sink, so
	// alarm notifications and wake-word replies reach open chat connections
	// and the persisted transcript, not just the speaker.
	broadcast := speech.NewBroadcastSink(sink)
	if transcripts != nil {
		broadcast.Subscribe("history", func(text string) {
			if err := transcripts.Append("delta", text); err != nil {
				log.Printf("⚠️  Failed to persist transcript line: %v", err)
			}
		})
	}

	client := providers.NewClient(cfg.LookupTimeout)
	weather := providers.NewWeatherProvider(client, cfg.WeatherAPIKey)
	news := providers.NewNewsProvider(client, cfg.NewsAPIKey, cfg.NewsCountry)
	dict := providers.NewDictionaryProvider(client)
	wiki := providers.NewWikipediaProvider(client)

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		log.Printf("⚠️  Failed to load targets file, using defaults: %v", err)
		targets = config.DefaultTargets()
	}

	registry := tasks.NewRegistry(broadcast)
	defer registry.StopAll()

	assistant := &router.Assistant{
		Memory:   store,
		Sink:     broadcast,
		Weather:  weather,
		News:     news,
		Dict:     dict,
		Wiki:     wiki,
		Tasks:    registry,
		Launcher: launcher.New(targets),
	}

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailSender, cfg.EmailPassword)

	listener := speech.NewListener(cfg.STTBaseURL, cfg.STTAPIKey)

	// Passive wake word listening, only when speech recognition is available
	var wake *speech.WakeListener
	if listener.Configured() {
		wake = speech.NewWakeListener(listener, func(cmd string) {
			assistant.Route(context.Background(), models.NewUtterance(cmd, models.OriginSpeech))
		})
		wake.Start()
		log.Println("👂 Passive wake word listener started")
	}

	// Optional daily briefing
	var briefing *routines.Briefing
	if cfg.BriefingCron != "" {
		briefing, err = routines.NewBriefing(cfg.BriefingCron, cfg.BriefingCity, broadcast, weather, news)
		if err != nil {
			log.Printf("⚠️  Briefing disabled: %v", err)
		} else if err := briefing.Start(); err != nil {
			log.Printf("⚠️  Briefing disabled: %v", err)
			briefing = nil
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "Delta v1.0",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("delta")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	healthHandler := handlers.NewHealthHandler(registry)
	emailHandler := handlers.NewEmailHandler(mailer)
	transcriptHandler := handlers.NewTranscriptHandler(transcripts)
	chatHandler := handlers.NewChatHandler(assistant, broadcast, listener, transcripts)

	app.Get("/health", healthHandler.Handle)
	app.Post("/api/email", emailHandler.Handle)
	app.Get("/api/transcript", transcriptHandler.Handle)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(chatHandler.Handle))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")

		if wake != nil {
			wake.Stop()
		}
		if briefing != nil {
			if err := briefing.Stop(); err != nil {
				log.Printf("⚠️  Error stopping briefing: %v", err)
			}
		}
		registry.StopAll()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
