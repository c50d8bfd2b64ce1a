package main

import (
	"os"
	"path/filepath"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/analysis"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/storage"
)

// Config holds CLI configuration loaded from environment
type Config struct {
	Service      string
	Origin       string
	DataDir      string
	APIKeys      []string
	RetrievalURL string
	MappingsPath string
	MirrorDBPath string
	Addr         string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	service := getEnv("CONTEXTAI_SERVICE", "meets")
	dataDir := getEnv("CONTEXTAI_DATA_DIR", filepath.Join("data", service))

	var keys []string
	for _, name := range []string{"GEMINI_API_KEY", "GEMINI_API_KEY_2", "GEMINI_API_KEY_3"} {
		if key := os.Getenv(name); key != "" {
			keys = append(keys, key)
		}
	}

	return &Config{
		Service:      service,
		Origin:       getEnv("CONTEXTAI_ORIGIN", defaultOrigin(service)),
		DataDir:      dataDir,
		APIKeys:      keys,
		RetrievalURL: os.Getenv("RAG_SERVER_URL"),
		MappingsPath: getEnv("CONTEXTAI_MAPPINGS", filepath.Join(dataDir, "mappings.yaml")),
		MirrorDBPath: getEnv("CONTEXTAI_MIRROR_DB", filepath.Join(dataDir, "mirror.db")),
		Addr:         getEnv("CONTEXTAI_ADDR", ":3001"),
	}
}

// ToEngineConfig converts to analysis.Config
func (c *Config) ToEngineConfig() analysis.Config {
	return analysis.Config{
		Service:      c.Service,
		Origin:       c.Origin,
		DataDir:      c.DataDir,
		APIKeys:      c.APIKeys,
		RetrievalURL: c.RetrievalURL,
		MappingsPath: c.MappingsPath,
	}
}

// defaultOrigin picks the dashboard origin tag for a service. Meets sources
// flip to "joined" per item when created through the join flow.
func defaultOrigin(service string) string {
	switch service {
	case "whatsapp":
		return storage.OriginChat
	case "gchat":
		return storage.OriginChannel
	default:
		return storage.OriginUploaded
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
