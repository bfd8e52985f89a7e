package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Listener captures one phrase from the microphone and transcribes it with a
// Whisper-compatible API. All failure modes (no microphone, silence, network
// errors, ambiguous audio) return an empty string so callers can fall back to
// typed input.
type Listener struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	recordFn   func(ctx context.Context, dest string, limit time.Duration) error
}

// NewListener creates a listener against a Whisper-compatible baseURL (e.g.
// "https://api.groq.com/openai/v1"). With an empty apiKey every Listen
// returns "".
func NewListener(baseURL, apiKey string) *Listener {
	return &Listener{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   "whisper-large-v3",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		recordFn: recordWithArecord,
	}
}

// Configured reports whether speech recognition is available
func (l *Listener) Configured() bool {
	return l.apiKey != ""
}

// Listen records up to phraseLimit of audio, waiting at most timeout overall,
// and returns the lowercased transcription. Empty string on any failure.
func (l *Listener) Listen(ctx context.Context, timeout, phraseLimit time.Duration) string {
	if l.apiKey == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+phraseLimit)
	defer cancel()

	audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("delta-listen-%d.wav", time.Now().UnixNano()))
	defer os.Remove(audioPath)

	if err := l.recordFn(ctx, audioPath, phraseLimit); err != nil {
		log.Printf("🎤 [SPEECH] Microphone capture failed: %v", err)
		return ""
	}

	text, err := l.transcribe(ctx, audioPath)
	if err != nil {
		log.Printf("🎤 [SPEECH] Transcription failed: %v", err)
		return ""
	}

	return strings.ToLower(strings.TrimSpace(text))
}

// recordWithArecord shells out to ALSA's arecord; duration bounds the phrase
func recordWithArecord(ctx context.Context, dest string, limit time.Duration) error {
	seconds := int(limit.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	cmd := exec.CommandContext(ctx, "arecord",
		"-f", "S16_LE", "-r", "16000", "-c", "1",
		"-d", fmt.Sprintf("%d", seconds),
		dest)
	return cmd.Run()
}

func (l *Listener) transcribe(ctx context.Context, audioPath string) (string, error) {
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audioFile.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return "", fmt.Errorf("failed to copy audio data: %w", err)
	}
	if err := writer.WriteField("model", l.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return "", fmt.Errorf("transcription API error: %s", errorResp.Error.Message)
		}
		return "", fmt.Errorf("transcription API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return apiResp.Text, nil
}
