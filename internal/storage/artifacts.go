package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ArtifactStore keeps one JSON file per analysis artifact, named by the
// artifact identifier. There is no index: "current" is discovered by filename
// ordering at read time, so a listing is O(n) but there is no index file to
// corrupt. Two concurrent analyses of the same source produce two artifacts;
// the one with the greater identifier wins "current". This race is accepted,
// not fixed.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore opens (and creates if needed) an artifact store under dir.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	summariesDir := filepath.Join(dir, "summaries")
	if err := os.MkdirAll(summariesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create summaries directory: %w", err)
	}
	return &ArtifactStore{dir: summariesDir}, nil
}

// Create persists a new artifact for a source. The identifier embeds the
// source ID and a millisecond timestamp so repeated runs coexist and sort
// by recency.
func (s *ArtifactStore) Create(source SourceItem, summary, depth string) (Artifact, error) {
	now := time.Now()
	artifact := Artifact{
		ID:         fmt.Sprintf("summary_%s_%d", source.ID, now.UnixMilli()),
		SourceID:   source.ID,
		SourceName: source.Name,
		Summary:    summary,
		Depth:      depth,
		AnalyzedAt: now,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to marshal artifact: %w", err)
	}

	// Temp file + rename keeps each artifact write atomic.
	path := filepath.Join(s.dir, artifact.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return Artifact{}, fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Artifact{}, fmt.Errorf("failed to write artifact: %w", err)
	}

	return artifact, nil
}

// CurrentFor returns the most recent artifact for a source, by identifier
// ordering. Returns ErrNotFound when the source has never been analyzed.
func (s *ArtifactStore) CurrentFor(sourceID string) (Artifact, error) {
	names, err := s.filesFor(sourceID)
	if err != nil {
		return Artifact{}, err
	}
	if len(names) == 0 {
		return Artifact{}, fmt.Errorf("no artifact for source %s: %w", sourceID, ErrNotFound)
	}

	sort.Strings(names)
	return s.read(names[len(names)-1])
}

// List returns all artifacts, newest first.
func (s *ArtifactStore) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		artifact, err := s.read(entry.Name())
		if err != nil {
			// Skip unreadable entries rather than failing the listing.
			continue
		}
		artifacts = append(artifacts, artifact)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].AnalyzedAt.After(artifacts[j].AnalyzedAt)
	})
	return artifacts, nil
}

// DeleteFor removes every artifact belonging to a source. Removing artifacts
// for a source that has none is success.
func (s *ArtifactStore) DeleteFor(sourceID string) error {
	names, err := s.filesFor(sourceID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove artifact %s: %w", name, err)
		}
	}
	return nil
}

func (s *ArtifactStore) filesFor(sourceID string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries directory: %w", err)
	}

	prefix := fmt.Sprintf("summary_%s_", sourceID)
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *ArtifactStore) read(name string) (Artifact, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact %s: %w", name, err)
	}
	return artifact, nil
}
