package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ask" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.ProjectID != "p1" || req.TeamID != "t1" || req.Question != "what was decided?" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(AskResponse{Answer: "ship it", ContextChunks: 4})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	resp, err := c.Ask(context.Background(), Mapping{ProjectID: "p1", TeamID: "t1"}, "what was decided?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Answer != "ship it" || resp.ContextChunks != 4 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAskServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Ask(context.Background(), Mapping{ProjectID: "p1", TeamID: "t1"}, "q")
	if err == nil {
		t.Fatal("Ask: expected error")
	}
}

func TestAskEmptyAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer":""}`)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Ask(context.Background(), Mapping{}, "q")
	if err == nil {
		t.Fatal("Ask: expected error for empty answer")
	}
}

func TestIngest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ingest" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Source != "meets" || req.Text != "transcript text" {
			t.Errorf("request = %+v", req)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.Ingest(context.Background(), Mapping{ProjectID: "p", TeamID: "t"}, "meets", "transcript text")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
}

func TestForwarderDispatches(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewForwarder(NewClient(server.URL), zap.NewNop())
	f.Forward(Mapping{ProjectID: "p", TeamID: "t"}, "meets", "text")
	f.Wait()

	if calls.Load() != 1 {
		t.Errorf("ingest calls = %d, want 1", calls.Load())
	}
}

func TestForwarderSwallowsFailure(t *testing.T) {
	// No server listening: the dispatch fails, Forward must not surface it.
	f := NewForwarder(NewClient("http://127.0.0.1:1"), zap.NewNop())
	f.Forward(Mapping{ProjectID: "p", TeamID: "t"}, "meets", "text")
	f.Wait()
}

func TestLoadMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	content := `meets_1000:
  project_id: proj-a
  team_id: team-a
discord_2000:
  project_id: proj-b
  team_id: team-b
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	mappings, err := LoadMappings(path)
	if err != nil {
		t.Fatalf("LoadMappings: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("len = %d, want 2", len(mappings))
	}
	if m := mappings["meets_1000"]; m.ProjectID != "proj-a" || m.TeamID != "team-a" {
		t.Errorf("meets_1000 = %+v", m)
	}
}

func TestLoadMappingsMissingFile(t *testing.T) {
	mappings, err := LoadMappings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadMappings: %v, want missing file treated as disabled", err)
	}
	if len(mappings) != 0 {
		t.Errorf("len = %d, want 0", len(mappings))
	}
}

func TestLoadMappingsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadMappings(path); err == nil {
		t.Fatal("LoadMappings: expected parse error")
	}
}
