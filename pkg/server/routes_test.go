package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/pkg/models"
	"github.com/millie-ai/millie/pkg/rag"
	"github.com/millie-ai/millie/pkg/store"
	"github.com/millie-ai/millie/pkg/testutils"
	"github.com/millie-ai/millie/pkg/vectorstore"
)

type testServer struct {
	appState *models.AppState
	llm      *testutils.FakeLLM
	searcher *testutils.FakeSearcher
	vectors  *vectorstore.Store
	server   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testutils.NewTestConfig(t)
	dir := cfg.Store.Dir
	llm := &testutils.FakeLLM{}
	embedder := &testutils.FakeEmbedder{}
	searcher := &testutils.FakeSearcher{}
	vectors := vectorstore.New(filepath.Join(dir, vectorstore.SnapshotFile), embedder)

	appState := &models.AppState{
		Config:           cfg,
		LLMClient:        llm,
		EmbeddingsClient: embedder,
		VectorStore:      vectors,
		Transcripts:      store.NewTranscriptFileStore(filepath.Join(dir, store.TranscriptsFile)),
		Dashboard:        store.NewDashboardFileStore(filepath.Join(dir, store.DashboardFile)),
		UploadHistory:    store.NewUploadHistoryFileStore(filepath.Join(dir, store.UploadHistoryFile)),
		SystemPrompt:     store.NewSystemPromptFileStore(filepath.Join(dir, store.SystemPromptFile), rag.DefaultSystemPrompt),
		WebSearcher:      searcher,
	}
	appState.Assistant = rag.NewOrchestrator(appState, nil)
	appState.Ingestor = rag.NewIngestor(appState)

	srv := httptest.NewServer(setupRouter(appState))
	t.Cleanup(srv.Close)

	return &testServer{
		appState: appState,
		llm:      llm,
		searcher: searcher,
		vectors:  vectors,
		server:   srv,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestChatHandler(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.Responses = []string{"Hi there!"}
	ts.searcher.Result = "Answer: BTC is $65,000\n"

	resp, body := ts.do(t, http.MethodPost, "/api/chat",
		`{"messages": [{"role": "user", "content": "What is the current price of BTC?"}]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, ChatResponse{Content: "Hi there!"}, decode[ChatResponse](t, body))
	assert.Equal(t, config.VersionString, resp.Header.Get(versionHeader))

	prompt := ts.llm.Prompts()[0]
	assert.Contains(t, prompt[1].Content, "Web search results:\nAnswer: BTC is $65,000")
	assert.Equal(t, 1, ts.vectors.Len())
}

func TestChatHandler_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`{"messages": "hello"}`,
		`{}`,
		`not json`,
	} {
		resp, b := ts.do(t, http.MethodPost, "/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, APIError{Message: "messages array required"}, decode[APIError](t, b))
	}
	assert.Empty(t, ts.llm.Prompts())
}

func TestChatHandler_MessageWithoutRole(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.Responses = []string{"ok"}

	resp, body := ts.do(t, http.MethodPost, "/api/chat", `{"messages": [{"content": "no role"}]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	prompt := ts.llm.Prompts()[0]
	assert.Equal(t, models.ChatMessage{Content: "no role"}, prompt[len(prompt)-1])
}

func TestChatHandler_CompletionFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.Err = assert.AnError

	resp, body := ts.do(t, http.MethodPost, "/api/chat", `{"messages": [{"role": "user", "content": "hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	apiErr := decode[APIError](t, body)
	assert.Equal(t, "LLM error", apiErr.Message)
	assert.Contains(t, apiErr.Detail, assert.AnError.Error())
	assert.Equal(t, 0, ts.vectors.Len())
}

func TestTranscriptRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.Respond = func(messages []models.ChatMessage) (string, error) {
		if strings.Contains(messages[0].Content, "extract key information") {
			return testutils.TestSummaryJSON, nil
		}
		return testutils.TestDashboardJSON, nil
	}

	resp, body := ts.do(t, http.MethodGet, "/api/weekly", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No transcripts found", decode[APIError](t, body).Message)

	resp, body = ts.do(t, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"weeklyMeeting": null}`, string(body))

	payload, err := json.Marshal(TranscriptRequest{
		Text: strings.Repeat("meeting notes ", 200),
		Date: "2024-03-06T18:00:00.000Z",
	})
	require.NoError(t, err)
	resp, body = ts.do(t, http.MethodPost, "/api/transcripts", string(payload))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[TranscriptResponse](t, body)
	assert.Equal(t, "Transcript ingested", created.Message)
	assert.Equal(t, "Validator Launch", created.Topic)
	assert.Len(t, created.KeyPoints, 2)

	resp, body = ts.do(t, http.MethodGet, "/api/weekly", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	weekly := decode[models.TranscriptMeta](t, body)
	assert.Equal(t, 10, weekly.WeekNumber)
	assert.True(t, weekly.Date.Equal(time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC)))

	resp, body = ts.do(t, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[SummaryResponse](t, body)
	require.NotNil(t, summary.WeeklyMeeting)
	assert.Equal(t, "Validator Launch", summary.WeeklyMeeting.Topic)
	assert.Len(t, summary.DailyQuotes, 3)
	require.NotNil(t, summary.CoinOfWeek)
	assert.Equal(t, "PLSX", summary.CoinOfWeek.Symbol)
	assert.NotNil(t, summary.LastUpdated)

	resp, body = ts.do(t, http.MethodGet, "/api/admin/transcripts-all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.TranscriptMeta](t, body), 1)

	resp, body = ts.do(t, http.MethodGet, "/api/admin/upload-history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]models.UploadHistoryEntry](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, "Week 10 - Validator Launch", history[0].Title)
}

func TestPostTranscriptHandler_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/transcripts", `{"date": "2024-03-06"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "text field required", decode[APIError](t, body).Message)

	resp, _ = ts.do(t, http.MethodPost, "/api/transcripts", `{"text": "notes", "date": "last tuesday"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, ts.vectors.Len())
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/admin/system-prompt", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rag.DefaultSystemPrompt, decode[SystemPromptResponse](t, body).Prompt)

	resp, _ = ts.do(t, http.MethodPost, "/api/admin/system-prompt", `{"prompt": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, http.MethodPost, "/api/admin/system-prompt", `{"prompt": "Be brief."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "System prompt updated", decode[MessageResponse](t, body).Message)

	_, body = ts.do(t, http.MethodGet, "/api/admin/system-prompt", "")
	assert.Equal(t, "Be brief.", decode[SystemPromptResponse](t, body).Prompt)

	resp, _ = ts.do(t, http.MethodPost, "/api/admin/daily-quotes", `{"quotes": "one"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/admin/daily-quotes", `{"quotes": ["one", "two"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = ts.do(t, http.MethodGet, "/api/summary", "")
	assert.Equal(t, []string{"one", "two"}, decode[SummaryResponse](t, body).DailyQuotes)

	resp, body = ts.do(t, http.MethodPost, "/api/admin/collective", `{"type": "wisdom"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Text required", decode[APIError](t, body).Message)

	resp, body = ts.do(t, http.MethodPost, "/api/admin/collective",
		`{"text": "Patience compounds.", "type": "wisdom", "date": "2024-07-09"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Added to collective consciousness", decode[MessageResponse](t, body).Message)
	require.Equal(t, 1, ts.vectors.Len())
	assert.Equal(t, "[Collective Consciousness - wisdom] Jul 9, 2024:\nPatience compounds.", ts.vectors.Records()[0].Text)
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSendVersion(t *testing.T) {
	handler := SendVersion(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, config.VersionString, rr.Header().Get(versionHeader))
}

func TestRequestSizeLimit(t *testing.T) {
	ts := newTestServer(t)

	big := bytes.Repeat([]byte("a"), MaxRequestBytes+1)
	payload, err := json.Marshal(TranscriptRequest{Text: string(big)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/transcripts", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	setupRouter(ts.appState).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, ts.vectors.Len())
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDate("2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = parseDate("yesterday")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
