package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wizenheimer/cordsearch"
)

func newTestServer(t *testing.T) (*Server, *cordsearch.Engine) {
	t.Helper()
	dir := t.TempDir()
	// The engine keeps its cache files in the working directory; run each
	// test server from its own temp dir so no cache carries over.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	content := "cord_uid,title,url,publish_time,authors\nuid1,Paper One,http://a.example,2020-01-01,Smith\n"
	if err := os.WriteFile(filepath.Join(dir, "metadata.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := cordsearch.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.IndexDir = dir
	cfg.Semantic.Enabled = false

	engine := cordsearch.NewEngine(cfg, nil)
	t.Cleanup(func() { engine.Close() })

	_, err = engine.BuildSegment(context.Background(), []cordsearch.TokenDoc{
		{CordUID: "uid1", Title: "Paper One", Tokens: cordsearch.Tokenize("respiratory virus transmission dynamics")},
	})
	if err != nil {
		t.Fatalf("BuildSegment: %v", err)
	}

	admin := cordsearch.NewAdminAuth("test-secret")
	feedback := cordsearch.NewFeedbackLog(dir)
	return NewServer(engine, admin, feedback, nil), engine
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
}

func TestHandleSearchReturnsHits(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=respiratory&k=5", nil)
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	hits, ok := body["hits"].([]any)
	if !ok || len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %v", body["hits"])
	}
}

func TestHandleSearchMissingQueryParam(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing q, got %d", rec.Code)
	}
}

func TestHandleAddDocumentRequiresAdminToken(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/add_document", nil)
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestHandleFeedbackAcceptsEntry(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	body := `{"query":"respiratory virus","cord_uid":"uid1","signal":"helpful"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(body))
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
