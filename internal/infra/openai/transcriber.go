package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"contractor_engagement_bot/internal/domain/speech"

	"github.com/openai/openai-go"
	"github.com/sirupsen/logrus"
)

// WhisperTranscriber implements speech.Transcriber against the OpenAI audio
// transcription API.
type WhisperTranscriber struct {
	client     openai.Client
	httpClient *http.Client
	timeout    time.Duration
	logger     *logrus.Entry
}

func NewWhisperTranscriber(client openai.Client, logger *logrus.Entry) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:     client,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		timeout:    30 * time.Second,
		logger:     logger,
	}
}

// Transcribe downloads the recording and sends it through Whisper. The whole
// call is bounded; a timeout surfaces as an ordinary error and callers treat
// it like any other transcription failure.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioURL string, languageHint string) (*speech.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build audio download request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio download returned status %d", resp.StatusCode)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(resp.Body, "voice.ogg", "audio/ogg"),
		Model: openai.AudioModelWhisper1,
	}
	if languageHint != "" {
		params.Language = openai.String(languageHint)
	}

	transcription, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	t.logger.WithField("chars", len(transcription.Text)).Debug("Voice note transcribed")
	return &speech.Result{Text: transcription.Text, DetectedLanguage: languageHint}, nil
}
