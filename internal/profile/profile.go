package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where melodic stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your melodic instance.
	InstanceURL string
	// Secret signs access tokens. When empty, the search endpoint is not
	// gated behind sign-in.
	Secret string

	// Provider Configuration
	ChatProvider      string // MELODIC_CHAT_PROVIDER (default: openai)
	SearchProvider    string // MELODIC_SEARCH_PROVIDER (default: perplexity)
	ChatModel         string // MELODIC_CHAT_MODEL (default: gpt-4o)
	SearchModel       string // MELODIC_SEARCH_MODEL (default: llama-3.1-sonar-small-128k-online)
	OpenAIAPIKey      string // MELODIC_OPENAI_API_KEY
	OpenAIBaseURL     string // MELODIC_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	OpenRouterAPIKey  string // MELODIC_OPENROUTER_API_KEY
	OpenRouterBaseURL string // MELODIC_OPENROUTER_BASE_URL (default: https://openrouter.ai/api/v1)
	PerplexityAPIKey  string // MELODIC_PERPLEXITY_API_KEY
	PerplexityBaseURL string // MELODIC_PERPLEXITY_BASE_URL (default: https://api.perplexity.ai)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads provider configuration from MELODIC_* environment variables.
// Keys are read once at startup; a missing key for the selected provider is
// surfaced per-request as a configuration error, not at boot.
func (p *Profile) FromEnv() {
	p.ChatProvider = getEnvOrDefault("MELODIC_CHAT_PROVIDER", "openai")
	p.SearchProvider = getEnvOrDefault("MELODIC_SEARCH_PROVIDER", "perplexity")
	p.ChatModel = getEnvOrDefault("MELODIC_CHAT_MODEL", "gpt-4o")
	p.SearchModel = getEnvOrDefault("MELODIC_SEARCH_MODEL", "llama-3.1-sonar-small-128k-online")
	p.OpenAIAPIKey = os.Getenv("MELODIC_OPENAI_API_KEY")
	p.OpenAIBaseURL = getEnvOrDefault("MELODIC_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.OpenRouterAPIKey = os.Getenv("MELODIC_OPENROUTER_API_KEY")
	p.OpenRouterBaseURL = getEnvOrDefault("MELODIC_OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	p.PerplexityAPIKey = os.Getenv("MELODIC_PERPLEXITY_API_KEY")
	p.PerplexityBaseURL = getEnvOrDefault("MELODIC_PERPLEXITY_BASE_URL", "https://api.perplexity.ai")
	if p.Secret == "" {
		p.Secret = os.Getenv("MELODIC_SECRET")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "melodic")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/melodic"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("melodic_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
