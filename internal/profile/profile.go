package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
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
	// DSN points to where campusfinds stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your campusfinds instance.
	InstanceURL string
	// JWTSecret is the HMAC secret used to verify access tokens issued upstream.
	JWTSecret string

	// Assistant configuration
	AIProvider   string // CAMPUSFINDS_AI_PROVIDER (default: openai)
	AIAPIKey     string // CAMPUSFINDS_AI_API_KEY
	AIBaseURL    string // CAMPUSFINDS_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel      string // CAMPUSFINDS_AI_MODEL (default: gpt-4o-mini)
	ChatWindow   int    // CAMPUSFINDS_CHAT_WINDOW (default: 20)
	HistoryLimit int    // CAMPUSFINDS_HISTORY_LIMIT (default: 50)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the generative-text collaborator is configured.
// Ollama-style providers only need a base URL, everything else needs a key.
func (p *Profile) IsAIEnabled() bool {
	if p.AIProvider == "ollama" {
		return p.AIBaseURL != ""
	}
	return p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CAMPUSFINDS_* environment variables.
func (p *Profile) FromEnv() {
	p.JWTSecret = getEnvOrDefault("CAMPUSFINDS_JWT_SECRET", p.JWTSecret)
	p.InstanceURL = getEnvOrDefault("CAMPUSFINDS_INSTANCE_URL", p.InstanceURL)

	p.AIProvider = getEnvOrDefault("CAMPUSFINDS_AI_PROVIDER", "openai")
	p.AIAPIKey = os.Getenv("CAMPUSFINDS_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("CAMPUSFINDS_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("CAMPUSFINDS_AI_MODEL", "gpt-4o-mini")

	p.ChatWindow = getEnvIntOrDefault("CAMPUSFINDS_CHAT_WINDOW", p.ChatWindow, 20)
	p.HistoryLimit = getEnvIntOrDefault("CAMPUSFINDS_HISTORY_LIMIT", p.HistoryLimit, 50)
}

// getEnvIntOrDefault parses an integer env var, falling back to the current
// value and then the default. Non-positive values are rejected.
func getEnvIntOrDefault(key string, current, defaultValue int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	if current > 0 {
		return current
	}
	return defaultValue
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
			p.Data = filepath.Join(os.Getenv("ProgramData"), "campusfinds")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/campusfinds"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("campusfinds_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.ChatWindow <= 0 {
		p.ChatWindow = 20
	}
	if p.HistoryLimit <= 0 {
		p.HistoryLimit = 50
	}

	return nil
}
