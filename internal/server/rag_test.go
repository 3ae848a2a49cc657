package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/finease/finease-backend/engine"
	"github.com/finease/finease-backend/rag"
	"github.com/finease/finease-backend/rag/session"
)

type fakeComparator struct {
	createCalls  int
	compareCalls int

	sessionID  string
	createErr  error
	answer     string
	compareErr error
	results    engine.SearchResults
	searchErr  error

	lastLanguage string
}

func (f *fakeComparator) CreateSession(_ context.Context, urlA, urlB string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.sessionID, nil
}

func (f *fakeComparator) Compare(_ context.Context, sessionID, question, language string) (string, error) {
	f.compareCalls++
	f.lastLanguage = language
	if f.compareErr != nil {
		return "", f.compareErr
	}
	return f.answer, nil
}

func (f *fakeComparator) Search(_ context.Context, sessionID, query string, k int, mode string) (engine.SearchResults, error) {
	if f.searchErr != nil {
		return engine.SearchResults{}, f.searchErr
	}
	return f.results, nil
}

func newRAGTestServer(svc Comparator) *echo.Echo {
	e := newEcho(nil)
	(&RAGHandler{Service: svc}).Register(e.Group("/api"))
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body["detail"]
}

func TestProcessURLs(t *testing.T) {
	svc := &fakeComparator{sessionID: "abc-123"}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/process-urls", `{"urls": ["https://a.example", "https://b.example"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["session_id"] != "abc-123" {
		t.Errorf("session_id = %q", body["session_id"])
	}
}

func TestProcessURLsWrongCount(t *testing.T) {
	svc := &fakeComparator{sessionID: "abc-123"}
	e := newRAGTestServer(svc)

	for _, body := range []string{
		`{"urls": []}`,
		`{"urls": ["https://a.example"]}`,
		`{"urls": ["https://a.example", "https://b.example", "https://c.example"]}`,
		`{"urls": ["https://a.example", "   "]}`,
	} {
		rec := postJSON(e, "/api/process-urls", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if got := detail(t, rec); got != "Please provide exactly two URLs." {
			t.Errorf("body %s: detail = %q", body, got)
		}
	}
	if svc.createCalls != 0 {
		t.Errorf("no session may be created for invalid input, got %d calls", svc.createCalls)
	}
}

func TestProcessURLsIngestionFailure(t *testing.T) {
	svc := &fakeComparator{createErr: errors.New("status 404")}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/process-urls", `{"urls": ["https://a.example", "https://b.example"]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := detail(t, rec); !strings.HasPrefix(got, "Failed to process one or more URLs:") {
		t.Errorf("detail = %q", got)
	}
}

func TestDocumentChat(t *testing.T) {
	svc := &fakeComparator{answer: "Bank B offers the better rate."}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/document-chat", `{"session_id": "s1", "question": "Which is better?", "language": "kn"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["answer"] != "Bank B offers the better rate." {
		t.Errorf("answer = %q", body["answer"])
	}
	if svc.lastLanguage != "kn" {
		t.Errorf("language = %q, want kn", svc.lastLanguage)
	}
}

func TestDocumentChatDefaultsLanguage(t *testing.T) {
	svc := &fakeComparator{answer: "x"}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/document-chat", `{"session_id": "s1", "question": "q"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastLanguage != "en" {
		t.Errorf("language = %q, want en", svc.lastLanguage)
	}
}

func TestDocumentChatMissingFields(t *testing.T) {
	svc := &fakeComparator{answer: "x"}
	e := newRAGTestServer(svc)

	for _, body := range []string{
		`{"question": "q"}`,
		`{"session_id": "s1"}`,
		`{"session_id": "  ", "question": "q"}`,
	} {
		rec := postJSON(e, "/api/document-chat", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if svc.compareCalls != 0 {
		t.Errorf("no comparison may run for invalid input, got %d calls", svc.compareCalls)
	}
}

func TestDocumentChatUnknownSession(t *testing.T) {
	svc := &fakeComparator{compareErr: session.ErrNotFound}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/document-chat", `{"session_id": "nope", "question": "q"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := detail(t, rec); got != "Invalid session ID." {
		t.Errorf("detail = %q", got)
	}
}

func TestDocumentSearch(t *testing.T) {
	svc := &fakeComparator{results: engine.SearchResults{
		Doc1: []rag.Hit{{ChunkIndex: 0, Text: "rate 6.5%", Score: 0.9, Rank: 1}},
		Doc2: []rag.Hit{{ChunkIndex: 2, Text: "rate 7.1%", Score: 0.8, Rank: 1}},
	}}
	e := newRAGTestServer(svc)

	rec := postJSON(e, "/api/document-search", `{"session_id": "s1", "query": "rate", "k": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body engine.SearchResults
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Doc1) != 1 || len(body.Doc2) != 1 {
		t.Fatalf("unexpected results: %+v", body)
	}
	if body.Doc2[0].Text != "rate 7.1%" {
		t.Errorf("doc2 hit = %+v", body.Doc2[0])
	}

	rec = postJSON(e, "/api/document-search", `{"session_id": "s1", "query": "  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank query: status = %d, want 400", rec.Code)
	}
}

func TestRootAndHealth(t *testing.T) {
	e := newRAGTestServer(&fakeComparator{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["message"] != "FinEase Web-RAG Backend is running!" {
		t.Errorf("message = %q", body["message"])
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}
