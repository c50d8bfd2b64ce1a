// Package analysis is the orchestration layer shared by every backend
// service: it produces summaries through a rotating pool of model
// credentials, answers questions via the retrieval index with a
// generative fallback, and keeps the per-service stores and the dashboard
// mirror fed. One Engine is instantiated per service process, parameterized
// by service name and data directory.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/provider"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/rag"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/storage"
)

// Answer method constants
const (
	MethodRetrieval = "retrieval"
	MethodFallback  = "generative-fallback"
)

// Answer is the unified shape of both answering paths.
type Answer struct {
	Text         string `json:"answer"`
	Method       string `json:"method"`
	ContextUnits int    `json:"contextUnits,omitempty"`
}

// Config holds engine configuration for one service instance.
type Config struct {
	Service      string // service name: storage namespace and mirror origin tag
	Origin       string // origin tag for ingested batches (storage.Origin*)
	DataDir      string // per-service data directory
	APIKeys      []string
	RetrievalURL string
	MappingsPath string
}

// Engine orchestrates analysis and question answering for one service.
type Engine struct {
	service   string
	origin    string
	sources   *storage.SourceStore
	artifacts *storage.ArtifactStore
	exchanges *storage.ExchangeLog
	generator Generator
	retriever Retriever
	forwarder IngestForwarder
	mirror    MirrorSink
	mappings  map[string]rag.Mapping
	log       *zap.Logger
}

// EngineDeps holds dependencies for constructing an Engine (for testing).
type EngineDeps struct {
	Service   string
	Origin    string
	Sources   *storage.SourceStore
	Artifacts *storage.ArtifactStore
	Exchanges *storage.ExchangeLog
	Generator Generator
	Retriever Retriever
	Forwarder IngestForwarder
	Mirror    MirrorSink
	Mappings  map[string]rag.Mapping
	Log       *zap.Logger
}

// NewEngine creates an engine with file-backed stores under cfg.DataDir.
// mirrorStore may be nil, in which case dashboard mirroring is skipped.
func NewEngine(cfg Config, mirrorStore *mirror.Store, log *zap.Logger) (*Engine, error) {
	sources, err := storage.NewSourceStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open source store: %w", err)
	}
	artifacts, err := storage.NewArtifactStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	exchanges, err := storage.NewExchangeLog(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange log: %w", err)
	}

	mappings, err := rag.LoadMappings(cfg.MappingsPath)
	if err != nil {
		// A broken mapping file disables retrieval, it does not stop the service.
		log.Warn("failed to load source mappings, retrieval disabled", zap.Error(err))
		mappings = map[string]rag.Mapping{}
	}

	pool := provider.NewPool(cfg.APIKeys)
	if pool.Size() == 0 {
		log.Warn("no Gemini API keys configured, analysis disabled")
	} else {
		log.Info("credential pool ready", zap.Int("keys", pool.Size()))
	}

	e := &Engine{
		service:   cfg.Service,
		origin:    cfg.Origin,
		sources:   sources,
		artifacts: artifacts,
		exchanges: exchanges,
		generator: NewInvoker(pool, log),
		mappings:  mappings,
		log:       log,
	}
	if mirrorStore != nil {
		e.mirror = mirrorStore
	}
	if cfg.RetrievalURL != "" {
		client := rag.NewClient(cfg.RetrievalURL)
		e.retriever = client
		e.forwarder = rag.NewForwarder(client, log)
	}
	return e, nil
}

// NewEngineWithDeps creates an engine with explicit dependencies (for testing).
func NewEngineWithDeps(deps EngineDeps) *Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	mappings := deps.Mappings
	if mappings == nil {
		mappings = map[string]rag.Mapping{}
	}
	return &Engine{
		service:   deps.Service,
		origin:    deps.Origin,
		sources:   deps.Sources,
		artifacts: deps.Artifacts,
		exchanges: deps.Exchanges,
		generator: deps.Generator,
		retriever: deps.Retriever,
		forwarder: deps.Forwarder,
		mirror:    deps.Mirror,
		mappings:  mappings,
		log:       log,
	}
}

// Upload registers a new source from raw transcript/message text, persists
// the text, and hands it to the ingest forwarder when a mapping exists.
func (e *Engine) Upload(name, text string) (storage.SourceItem, error) {
	now := time.Now()
	filename, size, err := e.sources.WriteTranscript(text)
	if err != nil {
		return storage.SourceItem{}, err
	}

	item := storage.SourceItem{
		ID:         fmt.Sprintf("%s_%d", e.service, now.UnixMilli()),
		Name:       name,
		Origin:     e.origin,
		Filename:   filename,
		UploadedAt: now,
		FileSize:   size,
	}
	if err := e.sources.Save(item); err != nil {
		return storage.SourceItem{}, err
	}

	e.forwardIfMapped(item.ID, text)

	e.log.Info("source uploaded",
		zap.String("source_id", item.ID),
		zap.String("name", name),
		zap.Int64("bytes", size))
	return item, nil
}

// Join registers a joined-meeting placeholder source. No raw content exists
// yet; the item carries a monitoring status until a transcript appears.
func (e *Engine) Join(name, meetLink, driveLink string) (storage.SourceItem, error) {
	now := time.Now()
	item := storage.SourceItem{
		ID:         fmt.Sprintf("%s_join_%d", e.service, now.UnixMilli()),
		Name:       name,
		Origin:     storage.OriginJoined,
		UploadedAt: now,
		Status:     "monitoring",
		MeetLink:   meetLink,
		DriveLink:  driveLink,
	}
	if err := e.sources.Save(item); err != nil {
		return storage.SourceItem{}, err
	}

	e.log.Info("meeting joined", zap.String("source_id", item.ID), zap.String("name", name))
	return item, nil
}

// Sources lists all source items, newest first.
func (e *Engine) Sources() ([]storage.SourceItem, error) {
	return e.sources.List()
}

// Analyze summarizes a source's raw content at the requested depth and
// persists the result as a new artifact. The artifact is also pushed,
// best effort, to the dashboard mirror and the ingest forwarder.
func (e *Engine) Analyze(ctx context.Context, sourceID, depth string) (storage.Artifact, error) {
	if depth != DepthDeep {
		depth = DepthModerate
	}

	src, err := e.sources.Get(sourceID)
	if err != nil {
		return storage.Artifact{}, err
	}
	if src.Filename == "" {
		return storage.Artifact{}, fmt.Errorf("source %s has no transcript content: %w", sourceID, storage.ErrNotFound)
	}

	content, err := e.sources.ReadTranscript(src.Filename)
	if err != nil {
		return storage.Artifact{}, err
	}

	e.log.Info("analyzing source",
		zap.String("source_id", sourceID),
		zap.String("name", src.Name),
		zap.String("depth", depth))

	summary, err := e.generator.Generate(ctx, analysisPrompt(src, content, depth))
	if err != nil {
		return storage.Artifact{}, err
	}

	artifact, err := e.artifacts.Create(src, summary, depth)
	if err != nil {
		return storage.Artifact{}, err
	}

	e.mirrorArtifact(src, artifact)
	e.forwardIfMapped(sourceID, content)

	e.log.Info("analysis complete",
		zap.String("source_id", sourceID),
		zap.String("artifact_id", artifact.ID))
	return artifact, nil
}

// Ask answers a question about a source. When a retrieval mapping exists the
// indexed path is preferred; any retrieval failure falls through silently to
// the generative fallback over the current summary. Successful resolutions
// are appended to the source's Q&A history before returning.
func (e *Engine) Ask(ctx context.Context, sourceID, question string) (Answer, error) {
	if m, ok := e.mappings[sourceID]; ok && e.retriever != nil {
		resp, err := e.retriever.Ask(ctx, m, question)
		if err == nil {
			answer := Answer{Text: resp.Answer, Method: MethodRetrieval, ContextUnits: resp.ContextChunks}
			e.record(sourceID, question, answer)
			return answer, nil
		}
		// Retrieval unavailability must never block the feature.
		e.log.Warn("retrieval path failed, falling back to summary",
			zap.String("source_id", sourceID),
			zap.Error(err))
	}

	artifact, err := e.artifacts.CurrentFor(sourceID)
	if errors.Is(err, storage.ErrNotFound) {
		return Answer{}, fmt.Errorf("source %s: %w", sourceID, ErrNoArtifact)
	}
	if err != nil {
		return Answer{}, err
	}

	text, err := e.generator.Generate(ctx, fallbackPrompt(artifact, question))
	if err != nil {
		return Answer{}, err
	}

	answer := Answer{Text: text, Method: MethodFallback}
	e.record(sourceID, question, answer)
	return answer, nil
}

// Artifacts lists all analysis artifacts, newest first.
func (e *Engine) Artifacts() ([]storage.Artifact, error) {
	return e.artifacts.List()
}

// History returns a source's Q&A exchanges in ask order.
func (e *Engine) History(sourceID string) ([]storage.Exchange, error) {
	return e.exchanges.ListFor(sourceID)
}

// DeleteExchange removes one Q&A exchange from a source's history.
func (e *Engine) DeleteExchange(sourceID, exchangeID string) error {
	return e.exchanges.Remove(sourceID, exchangeID)
}

// DeleteSource removes a source, its raw content, all artifacts, its Q&A
// history, and its mirror entries. Deleting an already-deleted source is
// success.
func (e *Engine) DeleteSource(sourceID string) error {
	if err := e.sources.Delete(sourceID); err != nil {
		return err
	}
	if err := e.artifacts.DeleteFor(sourceID); err != nil {
		return err
	}
	if err := e.exchanges.DeleteFor(sourceID); err != nil {
		return err
	}
	if e.mirror != nil {
		if err := e.mirror.Remove(sourceID); err != nil {
			e.log.Warn("failed to remove mirror entries", zap.String("source_id", sourceID), zap.Error(err))
		}
	}
	e.log.Info("source deleted", zap.String("source_id", sourceID))
	return nil
}

func (e *Engine) forwardIfMapped(sourceID, text string) {
	if e.forwarder == nil {
		return
	}
	m, ok := e.mappings[sourceID]
	if !ok {
		return
	}
	e.forwarder.Forward(m, e.service, text)
}

func (e *Engine) mirrorArtifact(src storage.SourceItem, artifact storage.Artifact) {
	if e.mirror == nil {
		return
	}
	err := e.mirror.Upsert(mirror.Entry{
		ArtifactID: artifact.ID,
		SourceID:   src.ID,
		ChatName:   src.Name,
		Summary:    artifact.Summary,
		Origin:     e.service,
		ChatDate:   src.UploadedAt,
		CachedAt:   artifact.AnalyzedAt,
	})
	if err != nil {
		// The mirror is a cache: losing a write is non-fatal.
		e.log.Warn("failed to mirror artifact", zap.String("artifact_id", artifact.ID), zap.Error(err))
	}
}

func (e *Engine) record(sourceID, question string, answer Answer) {
	err := e.exchanges.Append(storage.Exchange{
		ID:           ulid.Make().String(),
		SourceID:     sourceID,
		Question:     question,
		Answer:       answer.Text,
		Method:       answer.Method,
		ContextUnits: answer.ContextUnits,
		AskedAt:      time.Now(),
	})
	if err != nil {
		e.log.Warn("failed to record exchange", zap.String("source_id", sourceID), zap.Error(err))
	}
}
