package config

// Config is the main configuration structure for the assistant.
type Config struct {
	Server   ServerConfig      `json:"server" yaml:"server"`
	LLM      LLMConfig         `json:"llm" yaml:"llm"`
	Database DatabaseConfig    `json:"database" yaml:"database"`
	Speech   SpeechConfig      `json:"speech" yaml:"speech"`
	Session  SessionConfig     `json:"session,omitempty" yaml:"session,omitempty"`
	Retry    RetryConfig       `json:"retry,omitempty" yaml:"retry,omitempty"`
	HTTP     *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
	LogLevel string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// ServerConfig controls the HTTP front end.
type ServerConfig struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// LLMConfig defines configuration for the text-generation service.
// BaseURL accepts any OpenAI-compatible endpoint (Groq included).
type LLMConfig struct {
	APIKey        string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL       string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model         string  `json:"model" yaml:"model"`
	Temperature   float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens     int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	ContextTokens int     `json:"context_tokens,omitempty" yaml:"context_tokens,omitempty"`
}

// DatabaseConfig defines the relational data service reached through a
// generic execute-stored-procedure RPC (PostgREST shape).
type DatabaseConfig struct {
	BaseURL     string `json:"base_url" yaml:"base_url"`
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	RPCFunction string `json:"rpc_function,omitempty" yaml:"rpc_function,omitempty"`
}

// SpeechConfig defines the voice variant: transcription in, synthesized
// audio out.
type SpeechConfig struct {
	Enabled         bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	STTModel        string `json:"stt_model,omitempty" yaml:"stt_model,omitempty"`
	TTSModel        string `json:"tts_model,omitempty" yaml:"tts_model,omitempty"`
	Voice           string `json:"voice,omitempty" yaml:"voice,omitempty"`
	CacheSize       int    `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty"`
}

// SessionConfig controls session retention.
type SessionConfig struct {
	MaxSessions int `json:"max_sessions,omitempty" yaml:"max_sessions,omitempty"`
	TTLSeconds  int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// RetryConfig parameterizes the remote-call retry combinator: one
// initial try plus MaxRetries retries, fixed DelayMs between attempts.
type RetryConfig struct {
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	DelayMs    int `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// Voices supported by the synthesis model.
var Voices = []string{
	"Judy-PlayAI",
	"Basil-PlayAI",
	"Celeste-PlayAI",
	"Chip-PlayAI",
	"Mitch-PlayAI",
	"Jennifer-PlayAI",
}

// Default returns the stock configuration. Secrets still have to come
// from the file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":8080"},
		LLM: LLMConfig{
			Model:         "llama-3.3-70b-versatile",
			Temperature:   0.7,
			MaxTokens:     2048,
			ContextTokens: 6000,
		},
		Database: DatabaseConfig{RPCFunction: "execute_sql"},
		Speech: SpeechConfig{
			STTModel:        "whisper-large-v3",
			TTSModel:        "playai-tts",
			Voice:           "Judy-PlayAI",
			CacheSize:       128,
			CacheTTLSeconds: 600,
		},
		Session: SessionConfig{MaxSessions: 1000, TTLSeconds: 86400},
		Retry:   RetryConfig{MaxRetries: 2, DelayMs: 2000},
	}
}
