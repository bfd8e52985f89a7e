package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// HTTPSpeaker synthesizes speech through an OpenAI-compatible
// /audio/speech endpoint and plays the result with a local audio player.
type HTTPSpeaker struct {
	baseURL    string
	apiKey     string
	voice      string
	httpClient *http.Client
	playerCmd  string
}

// NewHTTPSpeaker creates a speaker against baseURL (e.g.
// "https://api.openai.com/v1"). An empty apiKey produces a speaker whose
// Speak always errors; the sink logs and swallows that.
func NewHTTPSpeaker(baseURL, apiKey, voice string) *HTTPSpeaker {
	return &HTTPSpeaker{
		baseURL: baseURL,
		apiKey:  apiKey,
		voice:   voice,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		playerCmd: defaultPlayer(),
	}
}

func defaultPlayer() string {
	switch runtime.GOOS {
	case "darwin":
		return "afplay"
	case "windows":
		return "powershell"
	default:
		return "mpg123"
	}
}

// Speak synthesizes text and blocks until local playback completes
func (s *HTTPSpeaker) Speak(ctx context.Context, text string) error {
	if s.apiKey == "" {
		return fmt.Errorf("TTS not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"model": "tts-1",
		"voice": s.voice,
		"input": text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode TTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("TTS API error: %d - %s", resp.StatusCode, string(body))
	}

	audioFile, err := os.CreateTemp("", "delta-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	defer os.Remove(audioFile.Name())

	if _, err := io.Copy(audioFile, resp.Body); err != nil {
		audioFile.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	audioFile.Close()

	return s.play(ctx, audioFile.Name())
}

func (s *HTTPSpeaker) play(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, s.playerCmd, "-c",
			fmt.Sprintf("(New-Object Media.SoundPlayer %q).PlaySync()", path))
	} else {
		cmd = exec.CommandContext(ctx, s.playerCmd, path)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio playback failed: %w", err)
	}
	return nil
}
