package speech

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/medops/hospital-assistant/cache"
	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/common/retry"
	"github.com/medops/hospital-assistant/config"
)

// Client adapts the speech capabilities of the generation endpoint:
// transcription in (voice variant input) and synthesized audio out.
// Pure adapters, no decision logic.
type Client struct {
	oc      openai.Client
	cfg     config.SpeechConfig
	retries int
	delay   time.Duration
	audio   cache.Cache
}

func New(llmCfg config.LLMConfig, cfg config.SpeechConfig, rcfg config.RetryConfig) *Client {
	// attempt policy lives in common/retry, not in the SDK
	opts := []option.RequestOption{option.WithAPIKey(llmCfg.APIKey), option.WithMaxRetries(0)}
	if llmCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(llmCfg.BaseURL))
	}
	return &Client{
		oc:      openai.NewClient(opts...),
		cfg:     cfg,
		retries: rcfg.MaxRetries,
		delay:   time.Duration(rcfg.DelayMs) * time.Millisecond,
		audio:   cache.NewLRU(cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second),
	}
}

// Voice returns the configured default voice.
func (c *Client) Voice() string { return c.cfg.Voice }

// Transcribe converts raw audio bytes to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	tr, err := retry.Do(ctx, "transcription", c.retries, c.delay, func(ctx context.Context) (*openai.Transcription, error) {
		return c.oc.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			File:  openai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
			Model: openai.AudioModel(c.cfg.STTModel),
		})
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(tr.Text), nil
}

// Synthesize converts text to audio with the given voice (empty voice
// falls back to the configured default). Identical sanitized inputs
// are served from the audio cache.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = c.cfg.Voice
	}
	clean := Sanitize(text)
	if clean == "" {
		return nil, fmt.Errorf("synthesis: nothing speakable after sanitizing")
	}
	key := audioKey(voice, clean)
	if v, ok := c.audio.Get(key); ok {
		if b, ok := v.([]byte); ok {
			logger.Debugf("synthesis cache hit for voice %s", voice)
			return b, nil
		}
	}
	logger.Infof("generating speech for: %s", truncateForLog(clean, 50))

	out, err := retry.Do(ctx, "speech_synthesis", c.retries, c.delay, func(ctx context.Context) ([]byte, error) {
		resp, err := c.oc.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
			Model:          openai.SpeechModel(c.cfg.TTSModel),
			Voice:          openai.AudioSpeechNewParamsVoice(voice),
			Input:          clean,
			ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	c.audio.Set(key, out, 0)
	return out, nil
}

func audioKey(voice, text string) string {
	sum := sha1.Sum([]byte(voice + "|" + text))
	return hex.EncodeToString(sum[:])
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
