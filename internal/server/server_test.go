package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"proofd/internal/candidates"
	"proofd/internal/config"
	"proofd/internal/lexicon"
	"proofd/internal/ngram"
	"proofd/internal/pipeline"
)

const testWords = "this\nsentence\nis\nfine\nthe\ncat\nsat\nhat\n"

const testNgrams = `this 10
sentence 5
is 5
fine 5
the 10
cat 4
sat 4
hat 4
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	lexPath := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(lexPath, []byte(testWords), 0600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	lex, err := lexicon.Load(lexPath)
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}

	ngramPath := filepath.Join(dir, "ngrams.txt")
	if err := os.WriteFile(ngramPath, []byte(testNgrams), 0600); err != nil {
		t.Fatalf("write ngrams: %v", err)
	}
	model, err := ngram.Load(ngramPath)
	if err != nil {
		t.Fatalf("load ngrams: %v", err)
	}

	gen := candidates.NewGenerator()
	for _, w := range lex.Words() {
		gen.AddEntry(w, model.Freq(w)+1)
	}

	analyzer := pipeline.NewAnalyzer(pipeline.Config{}, lex, model, gen, nil, nil, nil, zap.NewNop())
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0, MaxTextLength: 40}
	return NewServer(analyzer, lex, cfg, zap.NewNop())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/analyze", `{"text":"Thiss sentence is fine."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("response id is empty")
	}
	if len(resp.Spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(resp.Spans), resp.Spans)
	}
	s0 := resp.Spans[0]
	if s0.Kind != pipeline.KindNonWord {
		t.Errorf("kind = %q, want non-word", s0.Kind)
	}
	if len(s0.Candidates) == 0 || s0.Candidates[0] != "This" {
		t.Errorf("candidates = %v, want This first", s0.Candidates)
	}
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "not json"},
		{"blank text", `{"text":"   "}`},
		{"too long", `{"text":"` + strings.Repeat("word ", 20) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/v1/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleDictionarySearch(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/dictionary?q=at", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	words := resp["words"]
	if len(words) != 3 || words[0] != "cat" || words[1] != "hat" || words[2] != "sat" {
		t.Errorf("words = %v, want [cat hat sat]", words)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dictionary?q=at&limit=1", "")
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp["words"]) != 1 {
		t.Errorf("limit ignored: %v", resp["words"])
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dictionary?q=zzz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"words":[]`) {
		t.Errorf("no-match body = %s, want empty words array", rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dictionary", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", rec.Code)
	}
}

func TestCustomWordEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/custom-word", `{"word":"zorgle"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dictionary?q=zorgle", "")
	if !strings.Contains(rec.Body.String(), "zorgle") {
		t.Errorf("added word not searchable: %s", rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/custom-word/zorgle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/dictionary?q=zorgle", "")
	if strings.Contains(rec.Body.String(), "zorgle") {
		t.Errorf("removed word still searchable: %s", rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/custom-word", `{"word":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank add: status = %d, want 400", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
