package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// validBaseConfig returns a Config with all required fields set for the
// given provider.
func validBaseConfig(provider string) *Config {
	cfg := &Config{
		Provider:         provider,
		ModelName:        "gemini-2.5-flash",
		Temperature:      0.7,
		EmbedderModel:    "gemini-embedding-001",
		CorpusDir:        "documents",
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             5,
		SessionTimeout:   time.Hour,
		MaxHistory:       20,
		HistoryWindow:    6,
		ServerHost:       "0.0.0.0",
		ServerPort:       8000,
		RateBurst:        60,
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "askdoc",
		PostgresPassword: "test_password",
		PostgresDBName:   "askdoc",
		PostgresSSLMode:  "disable",
	}
	switch provider {
	case ProviderOllama:
		cfg.ModelName = "llama3.3"
		cfg.OllamaHost = "http://localhost:11434"
	case ProviderOpenAI:
		cfg.ModelName = "gpt-4o"
	}
	return cfg
}

func setEnvForProvider(t *testing.T, provider string) {
	t.Helper()
	switch provider {
	case ProviderGemini:
		t.Setenv("GEMINI_API_KEY", "test-api-key")
	case ProviderOpenAI:
		t.Setenv("OPENAI_API_KEY", "test-openai-key")
	}
}

func TestValidate_Success(t *testing.T) {
	for _, provider := range []string{ProviderGemini, ProviderOllama, ProviderOpenAI} {
		t.Run(provider, func(t *testing.T) {
			setEnvForProvider(t, provider)

			cfg := validBaseConfig(provider)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() unexpected error with valid config: %v", err)
			}
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() error = %v, want ErrConfigNil", err)
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := validBaseConfig(ProviderGemini)
	cfg.Provider = "unsupported"

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("Validate() error = %v, want ErrInvalidProvider", err)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := validBaseConfig(ProviderGemini)
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestValidate_RangeChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty model", func(c *Config) { c.ModelName = "" }, ErrInvalidModelName},
		{"temperature too low", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"empty embedder", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidEmbedderModel},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunking},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunking},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, ErrInvalidChunking},
		{"zero top-K", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"huge top-K", func(c *Config) { c.TopK = 51 }, ErrInvalidTopK},
		{"tiny session timeout", func(c *Config) { c.SessionTimeout = time.Millisecond }, ErrInvalidSessionTimeout},
		{"max history too small", func(c *Config) { c.MaxHistory = 1 }, ErrInvalidMaxHistory},
		{"history window zero", func(c *Config) { c.HistoryWindow = 0 }, ErrInvalidHistoryWindow},
		{"history window above cap", func(c *Config) { c.HistoryWindow = c.MaxHistory + 1 }, ErrInvalidHistoryWindow},
		{"bad server port", func(c *Config) { c.ServerPort = 0 }, ErrInvalidServerPort},
		{"bad rate burst", func(c *Config) { c.RateBurst = 0 }, ErrInvalidRateBurst},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"bad postgres port", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"empty password", func(c *Config) { c.PostgresPassword = "" }, ErrInvalidPostgresPassword},
		{"short password", func(c *Config) { c.PostgresPassword = "short" }, ErrInvalidPostgresPassword},
		{"bad ssl mode", func(c *Config) { c.PostgresSSLMode = "prefer" }, ErrInvalidPostgresSSLMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvForProvider(t, ProviderGemini)

			cfg := validBaseConfig(ProviderGemini)
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"gemini", ProviderGemini, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{"ollama", ProviderOllama, "llama3.3", "ollama/llama3.3"},
		{"openai", ProviderOpenAI, "gpt-4o", "openai/gpt-4o"},
		{"already qualified", ProviderGemini, "ollama/mistral", "ollama/mistral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: tt.provider, ModelName: tt.model}
			if got := cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	cfg := &Config{ServerHost: "127.0.0.1", ServerPort: 9000}
	if got := cfg.ServerAddr(); got != "127.0.0.1:9000" {
		t.Errorf("ServerAddr() = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short fully masked", "abc", maskedValue},
		{"exactly eight fully masked", "12345678", maskedValue},
		{"long keeps edges", "my_long_secret_key_123", "my<" + maskedValue + ">23"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.input); got != tt.want {
				t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMarshalJSON_MasksPassword(t *testing.T) {
	cfg := validBaseConfig(ProviderGemini)
	cfg.PostgresPassword = "super_secret_password"

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if strings.Contains(string(data), "super_secret_password") {
		t.Error("marshaled config leaks the password")
	}
}

func TestString_MasksPassword(t *testing.T) {
	cfg := validBaseConfig(ProviderGemini)
	cfg.PostgresPassword = "super_secret_password"

	if strings.Contains(cfg.String(), "super_secret_password") {
		t.Error("String() leaks the password")
	}
}
