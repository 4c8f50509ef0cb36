package mailpilot

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot/stores"
	"github.com/mailpilot/mailpilot/voice"
)

// Config collects process-level settings. Provider API keys are read by
// the adapters and executors themselves, matching their env-var seams.
type Config struct {
	Port          string
	TraceStore    stores.StoreConfig
	TraceEnabled  bool
	VoiceAgentTTL time.Duration
}

// LoadConfig reads .env (when present) and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		VoiceAgentTTL: voice.DefaultAgentTTL,
	}

	if d, err := time.ParseDuration(os.Getenv("VOICE_AGENT_TTL")); err == nil && d > 0 {
		cfg.VoiceAgentTTL = d
	}

	switch os.Getenv("TRACE_DB") {
	case "", "off":
		cfg.TraceEnabled = false
	case "postgres":
		cfg.TraceEnabled = true
		cfg.TraceStore = stores.StoreConfig{Type: "postgres", Connection: os.Getenv("TRACE_DB_DSN")}
	default:
		cfg.TraceEnabled = true
		cfg.TraceStore = stores.StoreConfig{Type: "sqlite", Connection: os.Getenv("TRACE_DB_PATH")}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
