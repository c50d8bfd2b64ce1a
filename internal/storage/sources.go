package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// SourceStore keeps source metadata in a single JSON file and raw transcript
// text as one file per source under a transcripts directory. Each service
// instance owns an independent store rooted at its own data directory.
type SourceStore struct {
	metaPath       string
	transcriptsDir string
}

// NewSourceStore opens (and creates if needed) a source store under dir.
func NewSourceStore(dir string) (*SourceStore, error) {
	transcriptsDir := filepath.Join(dir, "transcripts")
	if err := os.MkdirAll(transcriptsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}
	return &SourceStore{
		metaPath:       filepath.Join(dir, "metadata.json"),
		transcriptsDir: transcriptsDir,
	}, nil
}

func (s *SourceStore) load() (map[string]SourceItem, error) {
	data, err := os.ReadFile(s.metaPath)
	if os.IsNotExist(err) {
		return map[string]SourceItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	items := map[string]SourceItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return items, nil
}

func (s *SourceStore) save(items map[string]SourceItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tmp := s.metaPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return os.Rename(tmp, s.metaPath)
}

// Save inserts or replaces a source item.
func (s *SourceStore) Save(item SourceItem) error {
	items, err := s.load()
	if err != nil {
		return err
	}
	items[item.ID] = item
	return s.save(items)
}

// Get returns a source item by ID, or ErrNotFound.
func (s *SourceStore) Get(id string) (SourceItem, error) {
	items, err := s.load()
	if err != nil {
		return SourceItem{}, err
	}
	item, ok := items[id]
	if !ok {
		return SourceItem{}, fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	return item, nil
}

// List returns all source items, newest first.
func (s *SourceStore) List() ([]SourceItem, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}

	list := make([]SourceItem, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list, nil
}

// Delete removes a source item and its raw transcript file. Deleting an
// unknown source, or one whose raw content is already gone, is success.
func (s *SourceStore) Delete(id string) error {
	items, err := s.load()
	if err != nil {
		return err
	}

	item, ok := items[id]
	if !ok {
		return nil
	}

	if item.Filename != "" {
		path := filepath.Join(s.transcriptsDir, item.Filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove transcript: %w", err)
		}
	}

	delete(items, id)
	return s.save(items)
}

// WriteTranscript stores raw transcript text and returns the generated
// filename and byte size.
func (s *SourceStore) WriteTranscript(text string) (string, int64, error) {
	filename := fmt.Sprintf("transcript_%s.txt", uuid.New().String())
	path := filepath.Join(s.transcriptsDir, filename)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write transcript: %w", err)
	}
	return filename, int64(len(text)), nil
}

// ReadTranscript returns the raw text for a stored transcript file.
// A missing file maps to ErrNotFound.
func (s *SourceStore) ReadTranscript(filename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.transcriptsDir, filename))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("transcript file %s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}
