package config

import (
	"testing"
	"time"

	apperrors "github.com/kingbootoshi/ordpedia-auto-poster/backend/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		Env:            "development",
		Neo4jURI:       "bolt://localhost:7687",
		Neo4jUser:      "neo4j",
		Neo4jPassword:  "password",
		ChatModel:      "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
		EmbeddingDims:  1536,
		ToolStyle:      "structured",
		SearchLimit:    100,
		RequestTimeout: 120 * time.Second,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing neo4j uri", func(c *Config) { c.Neo4jURI = "" }},
		{"missing neo4j user", func(c *Config) { c.Neo4jUser = "" }},
		{"missing neo4j password", func(c *Config) { c.Neo4jPassword = "" }},
		{"missing chat model", func(c *Config) { c.ChatModel = "" }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"zero embedding dims", func(c *Config) { c.EmbeddingDims = 0 }},
		{"negative embedding dims", func(c *Config) { c.EmbeddingDims = -1 }},
		{"unknown tool style", func(c *Config) { c.ToolStyle = "bogus" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidate_MissingFieldCarriesConfigType(t *testing.T) {
	cfg := validConfig()
	cfg.Neo4jURI = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeConfig) {
		t.Errorf("Expected a config-typed error, got %v", err)
	}
}

func TestValidate_APIKeyOptional(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAIAPIKey = ""
	cfg.OpenAIBaseURL = "http://localhost:4000/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("API key must be optional for local gateways, got %v", err)
	}
}

func TestValidate_LooseToolStyle(t *testing.T) {
	cfg := validConfig()
	cfg.ToolStyle = "loose"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected loose style to validate, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port == "" {
		t.Error("Expected default port")
	}
	if cfg.EmbeddingDims <= 0 {
		t.Error("Expected positive default embedding dims")
	}
	if cfg.RequestTimeout <= 0 {
		t.Error("Expected positive default request timeout")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("EMBEDDING_DIMS", "768")
	t.Setenv("TOOL_STYLE", "loose")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Expected port override, got %q", cfg.Port)
	}
	if cfg.EmbeddingDims != 768 {
		t.Errorf("Expected dims override, got %d", cfg.EmbeddingDims)
	}
	if cfg.ToolStyle != "loose" {
		t.Errorf("Expected tool style override, got %q", cfg.ToolStyle)
	}
}

func TestGetEnvInt_Malformed(t *testing.T) {
	t.Setenv("EMBEDDING_DIMS", "not-a-number")

	if got := getEnvInt("EMBEDDING_DIMS", 1536); got != 1536 {
		t.Errorf("Malformed value must fall back to the default, got %d", got)
	}
}

func TestEnvModes(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("development config misclassified")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Error("production config misclassified")
	}
}
