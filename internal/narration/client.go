package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"familybudget/internal/log"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_multilingual_v2"

	maxAudioBytes = 32 << 20
)

var (
	// ErrMissingCredential is returned when Synthesize is called without a key.
	ErrMissingCredential = errors.New("narration credential is empty")
	// ErrAudioTooLarge is returned when the backend sends more than the clip limit.
	ErrAudioTooLarge = errors.New("narration audio exceeds size limit")
)

// APIError is a non-2xx answer from the speech backend.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ElevenLabs API request failed: %s - %s", e.Status, e.Body)
}

// Audio is synthesized speech.
type Audio struct {
	ContentType string
	Data        []byte
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Client talks to the ElevenLabs text-to-speech endpoint.
type Client struct {
	baseURL    string
	voiceID    string
	modelID    string
	httpClient *http.Client
	logger     *log.Logger
	maxBytes   int64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithVoice(voiceID string) Option {
	return func(c *Client) { c.voiceID = voiceID }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentNarration) }
}

func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		voiceID:    DefaultVoiceID,
		modelID:    DefaultModelID,
		httpClient: newHTTPClient(),
		logger:     log.Discard(),
		maxBytes:   maxAudioBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 2 * time.Minute}
}

// Synthesize converts text to speech using the caller's credential.
func (c *Client) Synthesize(ctx context.Context, text, credential string) (Audio, error) {
	if strings.TrimSpace(credential) == "" {
		return Audio{}, ErrMissingCredential
	}

	payload, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return Audio{}, fmt.Errorf("encode speech request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, fmt.Errorf("build speech request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", credential)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return Audio{}, fmt.Errorf("read speech response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
		c.logger.ErrorContext(ctx, "Speech synthesis rejected",
			log.FieldStatusCode, resp.StatusCode,
			log.FieldError, apiErr.Error())
		return Audio{}, apiErr
	}
	if int64(len(body)) > c.maxBytes {
		return Audio{}, ErrAudioTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.logger.InfoContext(ctx, "Speech synthesized",
		log.FieldOperation, log.OpNarration,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"bytes", len(body))
	return Audio{ContentType: contentType, Data: body}, nil
}
