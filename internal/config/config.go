package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server ServerConfig `json:"server"`
	AI     AIConfig     `json:"ai"`
	Mongo  MongoConfig  `json:"mongo"`
	Output OutputConfig `json:"output"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr      string `json:"addr"`
	JWTSecret string `json:"jwt_secret"`
}

// AIConfig selects and configures the model backends
type AIConfig struct {
	Backend      string `json:"backend"` // "gemini" or "ollama"
	GeminiAPIKey string `json:"gemini_api_key"`
	OllamaURL    string `json:"ollama_url"`
	OllamaModel  string `json:"ollama_model"`
	LandmarkURL  string `json:"landmark_url"`
}

// MongoConfig holds the database settings
type MongoConfig struct {
	URI               string `json:"uri"`
	Database          string `json:"database"`
	StylesCollection  string `json:"styles_collection"`
	HistoryCollection string `json:"history_collection"`
}

// OutputConfig holds settings for saved result images
type OutputConfig struct {
	Dir     string `json:"dir"`
	Quality int    `json:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		AI: AIConfig{
			Backend:   "gemini",
			OllamaURL: "http://localhost:11434",
		},
		Mongo: MongoConfig{
			URI:               "mongodb://localhost:27017",
			Database:          "glowup",
			StylesCollection:  "makeup_looks",
			HistoryCollection: "tryon_history",
		},
		Output: OutputConfig{
			Dir:     "./output",
			Quality: 90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the configuration. A
// .env file in the working directory is loaded first when present.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	setFromEnv(&c.Server.Addr, "GLOWUP_ADDR")
	setFromEnv(&c.Server.JWTSecret, "GLOWUP_JWT_SECRET")
	setFromEnv(&c.AI.Backend, "GLOWUP_AI_BACKEND")
	setFromEnv(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	setFromEnv(&c.AI.OllamaURL, "OLLAMA_URL")
	setFromEnv(&c.AI.OllamaModel, "OLLAMA_MODEL")
	setFromEnv(&c.AI.LandmarkURL, "GLOWUP_LANDMARK_URL")
	setFromEnv(&c.Mongo.URI, "MONGO_URI")
	setFromEnv(&c.Mongo.Database, "MONGO_DATABASE")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	switch c.AI.Backend {
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("ai.gemini_api_key is required for the gemini backend")
		}
	case "ollama":
		if c.AI.OllamaURL == "" {
			return fmt.Errorf("ai.ollama_url is required for the ollama backend")
		}
	default:
		return fmt.Errorf("ai.backend must be \"gemini\" or \"ollama\"")
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri cannot be empty")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "glowup", "config.json")
}
