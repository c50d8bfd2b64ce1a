package analysis

import (
	"context"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/rag"
)

// Generator produces model text for a prompt.
// Implementations: Invoker (credential pool + retry).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever answers a question from the external retrieval index.
// Implementations: rag.Client.
type Retriever interface {
	Ask(ctx context.Context, m rag.Mapping, question string) (rag.AskResponse, error)
}

// IngestForwarder hands raw text to the retrieval index builder, best effort.
// Implementations: rag.Forwarder.
type IngestForwarder interface {
	Forward(m rag.Mapping, source, text string)
}

// MirrorSink receives denormalized summary views for the dashboard cache.
// Implementations: mirror.Store.
type MirrorSink interface {
	Upsert(e mirror.Entry) error
	Remove(sourceID string) error
}
