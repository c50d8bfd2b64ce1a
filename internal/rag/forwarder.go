package rag

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Forwarder hands newly produced transcript text to the retrieval server's
// ingest endpoint. Dispatch is fire-and-forget: the caller's request/response
// cycle never waits on it, failures are logged and never retried or surfaced.
type Forwarder struct {
	client  *Client
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewForwarder creates a forwarder with its own error-logging sink.
func NewForwarder(client *Client, log *zap.Logger) *Forwarder {
	return &Forwarder{
		client:  client,
		log:     log,
		timeout: 60 * time.Second,
	}
}

// Forward dispatches text for ingestion in the background and returns
// immediately. The dispatched call carries its own timeout context, detached
// from the caller's request.
func (f *Forwarder) Forward(m Mapping, source, text string) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()

		if err := f.client.Ingest(ctx, m, source, text); err != nil {
			f.log.Warn("ingest forwarding failed",
				zap.String("project_id", m.ProjectID),
				zap.String("team_id", m.TeamID),
				zap.Error(err))
			return
		}
		f.log.Info("forwarded text to retrieval server",
			zap.String("project_id", m.ProjectID),
			zap.String("team_id", m.TeamID),
			zap.Int("bytes", len(text)))
	}()
}

// Wait blocks until in-flight dispatches finish. Used on shutdown and in tests.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}
