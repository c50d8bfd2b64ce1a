package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/rag"
)

// Common test errors
var (
	ErrMockGenerate  = errors.New("mock generate error")
	ErrMockRetrieval = errors.New("mock retrieval error")
)

// MockGenerator implements Generator for testing
type MockGenerator struct {
	mu          sync.Mutex
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	CallCount   int
	LastPrompt  string
	FixedText   string
}

func NewMockGenerator(text string) *MockGenerator {
	return &MockGenerator{FixedText: text}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastPrompt = prompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return m.FixedText, nil
}

// MockRetriever implements Retriever for testing
type MockRetriever struct {
	mu          sync.Mutex
	AskFunc     func(ctx context.Context, m rag.Mapping, question string) (rag.AskResponse, error)
	CallCount   int
	LastMapping rag.Mapping
	LastQuestion string
}

func (m *MockRetriever) Ask(ctx context.Context, mapping rag.Mapping, question string) (rag.AskResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastMapping = mapping
	m.LastQuestion = question

	if m.AskFunc != nil {
		return m.AskFunc(ctx, mapping, question)
	}
	return rag.AskResponse{Answer: "retrieval answer", ContextChunks: 2}, nil
}

// MockForwarder implements IngestForwarder for testing
type MockForwarder struct {
	mu       sync.Mutex
	Forwards []string // forwarded texts
}

func (m *MockForwarder) Forward(mapping rag.Mapping, source, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forwards = append(m.Forwards, text)
}

func (m *MockForwarder) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Forwards)
}

// MockMirror implements MirrorSink for testing
type MockMirror struct {
	mu       sync.Mutex
	Upserts  []mirror.Entry
	Removed  []string
	FailNext bool
}

func (m *MockMirror) Upsert(e mirror.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return errors.New("mock mirror error")
	}
	m.Upserts = append(m.Upserts, e)
	return nil
}

func (m *MockMirror) Remove(sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, sourceID)
	return nil
}
