package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/analysis"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/provider"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/storage"
)

const maxTranscriptSize = 50 << 20 // 50MB

type uploadRequest struct {
	Name       string `json:"name"`
	Transcript string `json:"transcript"`
}

type joinRequest struct {
	Name      string `json:"name"`
	MeetLink  string `json:"meetLink"`
	DriveLink string `json:"driveLink"`
}

type analyzeRequest struct {
	SourceID string `json:"transcriptId"`
	Depth    string `json:"analysisDepth"`
}

type askRequest struct {
	SourceID string `json:"transcriptId"`
	Question string `json:"question"`
}

// renderError maps engine failures to a machine-readable kind plus a human
// message. Provider payloads never reach the client.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, provider.ErrUnconfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "ai_unconfigured",
			"message": "AI analysis is not configured",
		})
	case errors.Is(err, analysis.ErrNoArtifact):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "no_artifact",
			"message": "No summary found - analyze the source first",
		})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "not_found",
			"message": "Source not found",
		})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal",
			"message": "Request failed",
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "bad_request",
		"message": message,
	})
}

func (s *Server) handleListSources(c *gin.Context) {
	sources, err := s.engine.Sources()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transcripts": sources,
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Name == "" || req.Transcript == "" {
		badRequest(c, "Transcript text and name required")
		return
	}
	if len(req.Transcript) > maxTranscriptSize {
		badRequest(c, "Transcript exceeds maximum size of 50MB")
		return
	}

	item, err := s.engine.Upload(req.Name, req.Transcript)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transcriptId": item.ID,
	})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Name == "" || req.MeetLink == "" || req.DriveLink == "" {
		badRequest(c, "meetLink, driveLink, and name required")
		return
	}

	item, err := s.engine.Join(req.Name, req.MeetLink, req.DriveLink)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transcriptId": item.ID,
		"message":      "Meeting joined - monitoring for transcript",
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.SourceID == "" {
		badRequest(c, "transcriptId required")
		return
	}

	// A disconnecting client stops waiting, it does not cancel the analysis:
	// the work runs to completion and its artifact is still persisted.
	artifact, err := s.engine.Analyze(context.WithoutCancel(c.Request.Context()), req.SourceID, req.Depth)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"summaryId": artifact.ID,
		"summary":   artifact.Summary,
	})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.SourceID == "" || req.Question == "" {
		badRequest(c, "transcriptId and question required")
		return
	}

	answer, err := s.engine.Ask(context.WithoutCancel(c.Request.Context()), req.SourceID, req.Question)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"question": req.Question,
		"answer":   answer.Text,
		"method":   answer.Method,
	})
}

func (s *Server) handleListArtifacts(c *gin.Context) {
	artifacts, err := s.engine.Artifacts()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"summaries": artifacts,
	})
}

func (s *Server) handleDeleteSource(c *gin.Context) {
	if err := s.engine.DeleteSource(c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleHistory(c *gin.Context) {
	history, err := s.engine.History(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"exchanges": history,
	})
}

func (s *Server) handleDeleteExchange(c *gin.Context) {
	if err := s.engine.DeleteExchange(c.Param("id"), c.Param("exchangeId")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Dashboard handlers serve the cross-service mirror cache.

func (s *Server) handleDashboard(c *gin.Context) {
	var (
		entries []mirror.Entry
		err     error
	)
	if query := c.Query("q"); query != "" {
		entries, err = s.mirror.Search(query)
	} else {
		entries, err = s.mirror.List(c.Query("source"))
	}
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"summaries": entries,
		"count":     len(entries),
	})
}

func (s *Server) handleDashboardClear(c *gin.Context) {
	if err := s.mirror.Clear(); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDashboardRemove(c *gin.Context) {
	if err := s.mirror.RemoveArtifact(c.Param("artifactId")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
