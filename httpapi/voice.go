package httpapi

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"slices"

	assistant "github.com/medops/hospital-assistant"
	"github.com/medops/hospital-assistant/common/logger"
	"github.com/medops/hospital-assistant/config"
)

// 10 MiB of raw audio is well past anything the transcription model
// accepts for a single utterance.
const maxAudioBytes = 10 << 20

// Fixed user-facing message for any failed voice turn. Remote error
// detail stays in the logs.
const msgVoiceFailed = "Sorry, we couldn't understand the audio. Please try again."

type voiceResponse struct {
	Heard     string `json:"heard"`
	Reply     string `json:"reply"`
	Audio     string `json:"audio,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// handleVoice accepts a raw audio body (audio/wav), runs the voice turn
// and returns the transcription, the textual reply and the synthesized
// reply as base64 WAV. An optional voice query parameter overrides the
// configured voice.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.client.Sessions().Get(r.PathValue("id")); !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	voice := r.URL.Query().Get("voice")
	if voice != "" && !slices.Contains(config.Voices, voice) {
		writeError(w, http.StatusBadRequest, "unknown voice")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "audio body is required")
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "audio body too large")
		return
	}

	reply, err := s.client.ProcessVoice(r.Context(), r.PathValue("id"), audio, voice)
	if err != nil {
		if errors.Is(err, assistant.ErrVoiceDisabled) {
			writeError(w, http.StatusServiceUnavailable, "voice support is disabled")
			return
		}
		logger.Errorf("voice turn for session %s failed: %v", r.PathValue("id"), err)
		writeError(w, http.StatusBadGateway, msgVoiceFailed)
		return
	}
	resp := voiceResponse{
		Heard:     reply.Heard,
		Reply:     reply.Reply,
		Duplicate: reply.Duplicate,
	}
	if len(reply.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	writeJSON(w, http.StatusOK, resp)
}
