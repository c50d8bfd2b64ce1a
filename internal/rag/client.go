package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external retrieval server: ingestion of raw text and
// question answering over the indexed content.
type Client struct {
	baseURL string
	client  *http.Client
}

type askRequest struct {
	ProjectID string `json:"project_id"`
	TeamID    string `json:"team_id"`
	Question  string `json:"question"`
}

// AskResponse is the retrieval server's answer payload.
type AskResponse struct {
	Answer        string `json:"answer"`
	ContextChunks int    `json:"context_chunks"`
}

type ingestRequest struct {
	ProjectID string `json:"project_id"`
	TeamID    string `json:"team_id"`
	Source    string `json:"source"`
	Text      string `json:"text"`
}

// NewClient creates a retrieval client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Ask queries the retrieval index for an answer to a question.
func (c *Client) Ask(ctx context.Context, m Mapping, question string) (AskResponse, error) {
	req := askRequest{ProjectID: m.ProjectID, TeamID: m.TeamID, Question: question}

	var resp AskResponse
	if err := c.post(ctx, "/api/v1/ask", req, &resp); err != nil {
		return AskResponse{}, err
	}
	if resp.Answer == "" {
		return AskResponse{}, fmt.Errorf("retrieval server returned empty answer")
	}
	return resp, nil
}

// Ingest submits raw text for indexing under a mapping's coordinate.
func (c *Client) Ingest(ctx context.Context, m Mapping, source, text string) error {
	req := ingestRequest{ProjectID: m.ProjectID, TeamID: m.TeamID, Source: source, Text: text}
	return c.post(ctx, "/api/v1/ingest", req, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("retrieval server error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
