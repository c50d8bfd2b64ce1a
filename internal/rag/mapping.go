package rag

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mapping links a source to its retrieval-index coordinate. Presence of a
// mapping is what routes a question to the retrieval path.
type Mapping struct {
	ProjectID string `yaml:"project_id" json:"project_id"`
	TeamID    string `yaml:"team_id" json:"team_id"`
}

// LoadMappings reads the source-to-project mapping file. A missing file is not
// an error: it means retrieval features are disabled. Mappings are loaded once
// at process start and are read-only at runtime.
func LoadMappings(path string) (map[string]Mapping, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]Mapping{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	mappings := map[string]Mapping{}
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file: %w", err)
	}
	return mappings, nil
}
