package profile

import (
	"os"
	"testing"
)

func TestProfileDefaults(t *testing.T) {
	clearAssistantEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AIProvider default", "openai", profile.AIProvider},
		{"AIBaseURL default", "https://api.openai.com/v1", profile.AIBaseURL},
		{"AIModel default", "gpt-4o-mini", profile.AIModel},
		{"AIAPIKey empty by default", "", profile.AIAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.ChatWindow != 20 {
		t.Errorf("ChatWindow default: expected 20, got %d", profile.ChatWindow)
	}
	if profile.HistoryLimit != 50 {
		t.Errorf("HistoryLimit default: expected 50, got %d", profile.HistoryLimit)
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearAssistantEnvVars()

	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "CAMPUSFINDS_AI_PROVIDER",
			envVar:   "CAMPUSFINDS_AI_PROVIDER",
			envValue: "ollama",
			field:    func(p *Profile) string { return p.AIProvider },
			expected: "ollama",
		},
		{
			name:     "CAMPUSFINDS_AI_API_KEY",
			envVar:   "CAMPUSFINDS_AI_API_KEY",
			envValue: "test-key-123",
			field:    func(p *Profile) string { return p.AIAPIKey },
			expected: "test-key-123",
		},
		{
			name:     "CAMPUSFINDS_AI_BASE_URL",
			envVar:   "CAMPUSFINDS_AI_BASE_URL",
			envValue: "https://custom.openai.proxy/v1",
			field:    func(p *Profile) string { return p.AIBaseURL },
			expected: "https://custom.openai.proxy/v1",
		},
		{
			name:     "CAMPUSFINDS_AI_MODEL",
			envVar:   "CAMPUSFINDS_AI_MODEL",
			envValue: "gpt-4",
			field:    func(p *Profile) string { return p.AIModel },
			expected: "gpt-4",
		},
		{
			name:     "CAMPUSFINDS_JWT_SECRET",
			envVar:   "CAMPUSFINDS_JWT_SECRET",
			envValue: "shhh",
			field:    func(p *Profile) string { return p.JWTSecret },
			expected: "shhh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAssistantEnvVars()
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*Profile)
		expectedResult bool
	}{
		{
			name: "no API key should return false",
			setup: func(p *Profile) {
				p.AIProvider = "openai"
				p.AIAPIKey = ""
			},
			expectedResult: false,
		},
		{
			name: "openai with API key should return true",
			setup: func(p *Profile) {
				p.AIProvider = "openai"
				p.AIAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "ollama with base URL should return true",
			setup: func(p *Profile) {
				p.AIProvider = "ollama"
				p.AIBaseURL = "http://localhost:11434"
			},
			expectedResult: true,
		},
		{
			name: "ollama without base URL should return false",
			setup: func(p *Profile) {
				p.AIProvider = "ollama"
				p.AIBaseURL = ""
			},
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{}
			tt.setup(profile)
			result := profile.IsAIEnabled()
			if result != tt.expectedResult {
				t.Errorf("IsAIEnabled(): expected %v, got %v", tt.expectedResult, result)
			}
		})
	}
}

func clearAssistantEnvVars() {
	envVars := []string{
		"CAMPUSFINDS_AI_PROVIDER",
		"CAMPUSFINDS_AI_API_KEY",
		"CAMPUSFINDS_AI_BASE_URL",
		"CAMPUSFINDS_AI_MODEL",
		"CAMPUSFINDS_JWT_SECRET",
		"CAMPUSFINDS_INSTANCE_URL",
		"CAMPUSFINDS_CHAT_WINDOW",
		"CAMPUSFINDS_HISTORY_LIMIT",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}
