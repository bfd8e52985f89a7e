package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"delta/internal/config"
	"delta/internal/launcher"
	"delta/internal/logging"
	"delta/internal/memory"
	"delta/internal/models"
	"delta/internal/providers"
	"delta/internal/router"
	"delta/internal/speech"
	"delta/internal/tasks"
)

// Console mode: an infinite listen-route-respond loop. Uses the microphone
// when speech recognition is configured, typed input otherwise. Terminates
// on interrupt or the goodbye command.
func main() {
	logging.Init()

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	cfg.WarnMissing()

	store := memory.Open(cfg.MemoryFile)
	defer store.Close()

	var speaker speech.Speaker = speech.NullSpeaker{}
	if cfg.TTSAPIKey != "" {
		speaker = speech.NewHTTPSpeaker(cfg.TTSBaseURL, cfg.TTSAPIKey, cfg.TTSVoice)
	}
	sink := speech.NewSpokenSink(speaker, 16)
	defer sink.Close()

	// Print everything that gets spoken, so deferred task notifications show
	// up on the console and not just over the speaker.
	console := speech.NewTranscriptSink(sink, func(text string) {
		fmt.Println("delta>", text)
	})

	client := providers.NewClient(cfg.LookupTimeout)

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		log.Printf("⚠️  Failed to load targets file, using defaults: %v", err)
		targets = config.DefaultTargets()
	}

	registry := tasks.NewRegistry(console)
	defer registry.StopAll()

	assistant := &router.Assistant{
		Memory:   store,
		Sink:     console,
		Weather:  providers.NewWeatherProvider(client, cfg.WeatherAPIKey),
		News:     providers.NewNewsProvider(client, cfg.NewsAPIKey, cfg.NewsCountry),
		Dict:     providers.NewDictionaryProvider(client),
		Wiki:     providers.NewWikipediaProvider(client),
		Tasks:    registry,
		Launcher: launcher.New(targets),
	}

	assistant.Greet()

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, syscall.SIGINT, syscall.SIGTERM)

	inputs := make(chan models.Utterance)
	listener := speech.NewListener(cfg.STTBaseURL, cfg.STTAPIKey)
	if listener.Configured() {
		go listenLoop(listener, inputs)
	} else {
		go typeLoop(inputs)
	}

	for {
		select {
		case <-interrupted:
			fmt.Println()
			console.Emit("Goodbye.")
			return
		case utt := <-inputs:
			resp := assistant.Route(context.Background(), utt)
			if resp.Intent == models.IntentExit {
				return
			}
		}
	}
}

// listenLoop captures one phrase at a time from the microphone
func listenLoop(listener *speech.Listener, inputs chan<- models.Utterance) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		text := listener.Listen(ctx, 6*time.Second, 6*time.Second)
		cancel()
		if text == "" {
			// Avoid a tight retry loop when the microphone or the
			// recognition backend keeps failing.
			time.Sleep(500 * time.Millisecond)
			continue
		}
		inputs <- models.NewUtterance(text, models.OriginSpeech)
	}
}

// typeLoop reads commands from stdin
func typeLoop(inputs chan<- models.Utterance) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		inputs <- models.NewUtterance(scanner.Text(), models.OriginTyped)
	}
}
