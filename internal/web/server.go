package web

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/analysis"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/storage"
)

// Engine is the orchestration surface exposed over HTTP.
// Implementations: analysis.Engine.
type Engine interface {
	Upload(name, text string) (storage.SourceItem, error)
	Join(name, meetLink, driveLink string) (storage.SourceItem, error)
	Sources() ([]storage.SourceItem, error)
	Analyze(ctx context.Context, sourceID, depth string) (storage.Artifact, error)
	Ask(ctx context.Context, sourceID, question string) (analysis.Answer, error)
	Artifacts() ([]storage.Artifact, error)
	History(sourceID string) ([]storage.Exchange, error)
	DeleteExchange(sourceID, exchangeID string) error
	DeleteSource(sourceID string) error
}

// Server is one backend service's HTTP front.
type Server struct {
	engine Engine
	mirror *mirror.Store
	router *gin.Engine
	log    *zap.Logger
}

// NewServer creates a server for one engine instance. mirrorStore may be nil,
// in which case the dashboard routes are not registered.
func NewServer(engine Engine, mirrorStore *mirror.Store, log *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		engine: engine,
		mirror: mirrorStore,
		router: router,
		log:    log,
	}

	api := router.Group("/api")
	{
		api.GET("/transcripts", s.handleListSources)
		api.POST("/upload", s.handleUpload)
		api.POST("/join", s.handleJoin)
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/qa", s.handleAsk)
		api.GET("/summaries", s.handleListArtifacts)
		api.DELETE("/transcripts/:id", s.handleDeleteSource)
		api.GET("/qa/:id", s.handleHistory)
		api.DELETE("/qa/:id/:exchangeId", s.handleDeleteExchange)

		if mirrorStore != nil {
			api.GET("/dashboard", s.handleDashboard)
			api.DELETE("/dashboard", s.handleDashboardClear)
			api.DELETE("/dashboard/:artifactId", s.handleDashboardRemove)
		}
	}

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
