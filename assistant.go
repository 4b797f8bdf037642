// Package assistant wires the conversational pipeline for a hospital
// operations database: intent resolution, concurrent query execution
// and response synthesis behind text and voice entry points.
package assistant

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/config"
	"github.com/medops/hospital-assistant/llm"
	"github.com/medops/hospital-assistant/orchestrator"
	"github.com/medops/hospital-assistant/querydb"
	"github.com/medops/hospital-assistant/speech"
	"github.com/medops/hospital-assistant/tools"
)

const Version = "1.0.0"

// Sentinel errors front ends can map to stable user-facing responses.
var (
	ErrVoiceDisabled  = errors.New("voice support is disabled")
	ErrUnknownSession = errors.New("unknown session")
)

// Client is the top-level assistant facade. It owns the session store
// and the shared stage collaborators; every session gets its own
// orchestrator over the shared stages.
type Client struct {
	cfg      *config.Config
	speech   *speech.Client
	sessions SessionStore
}

// VoiceReply is the outcome of one voice turn.
type VoiceReply struct {
	Heard     string `json:"heard"`
	Reply     string `json:"reply"`
	Audio     []byte `json:"-"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	gen := llm.New(cfg.LLM, cfg.Retry)
	db := querydb.NewClient(cfg.Database, cfg.HTTP)
	registry := tools.NewRegistry(querydb.NewAdapter(db, cfg.Retry))
	resolver := orchestrator.NewResolver(gen, cfg.LLM.ContextTokens)
	synth := orchestrator.NewSynth(gen, cfg.LLM.ContextTokens)

	c := &Client{cfg: cfg}
	if cfg.Speech.Enabled {
		c.speech = speech.New(cfg.LLM, cfg.Speech, cfg.Retry)
	}
	c.sessions = NewMemSessionStore(
		time.Duration(cfg.Session.TTLSeconds)*time.Second,
		func() *orchestrator.Orchestrator {
			return orchestrator.New(resolver, synth, registry)
		},
	)
	logger.Infof("assistant %s ready, model %s", Version, cfg.LLM.Model)
	return c, nil
}

// Sessions exposes the session store to front ends.
func (c *Client) Sessions() SessionStore { return c.sessions }

// NewSession creates a session, evicting the oldest ones when the
// configured cap is exceeded.
func (c *Client) NewSession() *Session {
	s := c.sessions.Create()
	if err := c.sessions.Clean(c.cfg.Session.MaxSessions); err != nil {
		logger.Warnf("session cleanup: %v", err)
	}
	return s
}

// ProcessText runs one text turn in the named session. A verbatim
// resubmission of the previous utterance replays the previous reply
// instead of consuming a turn. The session's turn lock is held from
// the duplicate check through Remember so concurrent identical
// submissions cannot both enter the transcript.
func (c *Client) ProcessText(ctx context.Context, sessionID, text string) (string, error) {
	s, ok := c.sessions.Get(sessionID)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownSession, sessionID)
	}
	s.turn.Lock()
	defer s.turn.Unlock()

	if reply, dup := s.DuplicateText(text); dup {
		logger.Debugf("session %s: duplicate utterance, replaying reply", s.ID)
		return reply, nil
	}
	reply := s.Orch.Turn(ctx, text)
	s.Remember(text, "", reply)
	return reply, nil
}

// ProcessVoice transcribes audio, runs the turn and synthesizes the
// reply. A resubmission of the identical audio payload replays the
// previous reply without re-transcribing.
func (c *Client) ProcessVoice(ctx context.Context, sessionID string, audio []byte, voice string) (*VoiceReply, error) {
	if c.speech == nil {
		return nil, ErrVoiceDisabled
	}
	s, ok := c.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSession, sessionID)
	}
	s.turn.Lock()
	defer s.turn.Unlock()

	sum := sha1.Sum(audio)
	digest := hex.EncodeToString(sum[:])
	if reply, dup := s.DuplicateAudio(digest); dup {
		logger.Debugf("session %s: duplicate audio, replaying reply", s.ID)
		return &VoiceReply{Reply: reply, Duplicate: true}, nil
	}

	heard, err := c.speech.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	if heard == "" {
		return nil, fmt.Errorf("transcription produced no text")
	}

	reply := s.Orch.Turn(ctx, heard)
	s.Remember(heard, digest, reply)

	out := &VoiceReply{Heard: heard, Reply: reply}
	if reply != "" {
		spoken, err := c.speech.Synthesize(ctx, reply, voice)
		if err != nil {
			// The text reply still stands; losing audio is not fatal.
			logger.Errorf("session %s: speech synthesis failed: %v", s.ID, err)
		} else {
			out.Audio = spoken
		}
	}
	return out, nil
}
