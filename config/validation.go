package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateDatabase()...)
	errs = append(errs, c.validateSpeech()...)
	errs = append(errs, c.validateRetry()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors
	if c.LLM.APIKey == "" {
		errs = append(errs, ValidationError{Field: "llm.api_key", Message: "llm.api_key is required (or set GROQ_API_KEY)"})
	}
	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{Field: "llm.model", Message: "llm.model is required"})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{Field: "llm.temperature", Message: "llm.temperature must be in [0, 2]"})
	}
	return errs
}

func (c *Config) validateDatabase() ValidationErrors {
	var errs ValidationErrors
	if c.Database.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "database.base_url", Message: "database.base_url is required (or set SUPABASE_URL)"})
	}
	if c.Database.APIKey == "" {
		errs = append(errs, ValidationError{Field: "database.api_key", Message: "database.api_key is required (or set SUPABASE_KEY)"})
	}
	if c.Database.RPCFunction == "" {
		errs = append(errs, ValidationError{Field: "database.rpc_function", Message: "database.rpc_function must not be empty"})
	}
	return errs
}

func (c *Config) validateSpeech() ValidationErrors {
	var errs ValidationErrors
	if !c.Speech.Enabled {
		return nil
	}
	if c.Speech.Voice != "" && !validVoice(c.Speech.Voice) {
		errs = append(errs, ValidationError{
			Field:   "speech.voice",
			Message: fmt.Sprintf("speech.voice %q is not supported; one of %s", c.Speech.Voice, strings.Join(Voices, ", ")),
		})
	}
	if c.Speech.STTModel == "" {
		errs = append(errs, ValidationError{Field: "speech.stt_model", Message: "speech.stt_model is required when speech is enabled"})
	}
	if c.Speech.TTSModel == "" {
		errs = append(errs, ValidationError{Field: "speech.tts_model", Message: "speech.tts_model is required when speech is enabled"})
	}
	return errs
}

func (c *Config) validateRetry() ValidationErrors {
	var errs ValidationErrors
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, ValidationError{Field: "retry.max_retries", Message: "retry.max_retries must not be negative"})
	}
	if c.Retry.DelayMs < 0 {
		errs = append(errs, ValidationError{Field: "retry.delay_ms", Message: "retry.delay_ms must not be negative"})
	}
	return errs
}

func validVoice(v string) bool {
	for _, known := range Voices {
		if strings.EqualFold(known, v) {
			return true
		}
	}
	return false
}
