package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExchangeLog keeps Q&A history as one append-only JSONL file per source.
type ExchangeLog struct {
	dir string
}

// NewExchangeLog opens (and creates if needed) an exchange log under dir.
func NewExchangeLog(dir string) (*ExchangeLog, error) {
	exchangesDir := filepath.Join(dir, "exchanges")
	if err := os.MkdirAll(exchangesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create exchanges directory: %w", err)
	}
	return &ExchangeLog{dir: exchangesDir}, nil
}

func (l *ExchangeLog) path(sourceID string) string {
	return filepath.Join(l.dir, sourceID+".jsonl")
}

// Append records an exchange at the end of the source's history.
func (l *ExchangeLog) Append(e Exchange) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	f, err := os.OpenFile(l.path(e.SourceID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open exchange log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append exchange: %w", err)
	}
	return nil
}

// ListFor returns a source's exchanges in append order. A source with no
// history yields an empty slice.
func (l *ExchangeLog) ListFor(sourceID string) ([]Exchange, error) {
	f, err := os.Open(l.path(sourceID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange log: %w", err)
	}
	defer f.Close()

	var exchanges []Exchange
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		var e Exchange
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		exchanges = append(exchanges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exchange log: %w", err)
	}
	return exchanges, nil
}

// Remove deletes a single exchange from a source's history by rewriting the
// log without it. Returns ErrNotFound for an unknown exchange ID.
func (l *ExchangeLog) Remove(sourceID, exchangeID string) error {
	exchanges, err := l.ListFor(sourceID)
	if err != nil {
		return err
	}

	kept := exchanges[:0]
	found := false
	for _, e := range exchanges {
		if e.ID == exchangeID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("exchange %s: %w", exchangeID, ErrNotFound)
	}

	tmp := l.path(sourceID) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to rewrite exchange log: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, e := range kept {
		line, err := json.Marshal(e)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to marshal exchange: %w", err)
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to rewrite exchange log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to rewrite exchange log: %w", err)
	}
	return os.Rename(tmp, l.path(sourceID))
}

// DeleteFor removes a source's entire history. Idempotent.
func (l *ExchangeLog) DeleteFor(sourceID string) error {
	err := os.Remove(l.path(sourceID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove exchange log: %w", err)
	}
	return nil
}
