package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/forgecore/internal/app"
	"github.com/rcliao/forgecore/internal/config"
	"github.com/rcliao/forgecore/internal/host"
	"github.com/rcliao/forgecore/internal/index"
	"github.com/rcliao/forgecore/internal/model"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	a, err := app.Open(cfg, nil)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func do(t *testing.T, h http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, url, &buf))
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestRouteEndpoint(t *testing.T) {
	h := NewHandler(newTestApp(t), nil)

	rr := do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "create a small blue cone"})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeBody[model.Result](t, rr)
	assert.True(t, res.OK(), res.Message)
	assert.Equal(t, model.MeshCreate, res.Category)
	assert.NotEmpty(t, res.RequestID)

	rr = do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "what is the weather"})
	require.Equal(t, http.StatusOK, rr.Code)
	res = decodeBody[model.Result](t, rr)
	assert.Equal(t, model.KindUnclassifiedIntent, res.Kind)

	rr = do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/route", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestJournalEndpoints(t *testing.T) {
	h := NewHandler(newTestApp(t), nil)

	rr := do(t, h, http.MethodGet, "/goal", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/goal", TextRequest{Text: "ship the exporter"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPost, "/progress", TextRequest{Text: "unity preset done"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPost, "/note", TextRequest{Text: ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/goal", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	g := decodeBody[model.JournalGoal](t, rr)
	assert.Equal(t, "ship the exporter", g.Text)
	assert.Len(t, g.Progress, 1)

	rr = do(t, h, http.MethodGet, "/recent?n=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decodeBody[[]model.Entry](t, rr)
	require.Len(t, entries, 1)
	assert.Equal(t, model.KindProgress, entries[0].Kind)
}

func TestSceneEndpoints(t *testing.T) {
	h := NewHandler(newTestApp(t), nil)
	do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "create 2 cubes"})

	rr := do(t, h, http.MethodGet, "/scene", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	scene := decodeBody[struct {
		Summary  host.Summary  `json:"summary"`
		Snapshot host.Snapshot `json:"snapshot"`
	}](t, rr)
	assert.Equal(t, 2, scene.Summary.Meshes)

	rr = do(t, h, http.MethodPut, "/scene/selection", SelectionRequest{Names: []string{"Generated_Cube"}})
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decodeBody[host.Snapshot](t, rr)
	assert.Equal(t, []string{"Generated_Cube"}, snap.Selected)

	rr = do(t, h, http.MethodPut, "/scene/selection", SelectionRequest{Names: []string{"ghost"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchStatsAndMetrics(t *testing.T) {
	h := NewHandler(newTestApp(t), nil)
	do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "create a torus"})
	do(t, h, http.MethodPost, "/route", PromptRequest{Prompt: "hello"})

	rr := do(t, h, http.MethodGet, "/search?q=torus", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	hits := decodeBody[[]index.Hit](t, rr)
	require.Len(t, hits, 1)
	assert.Equal(t, "create a torus", hits[0].Prompt)

	rr = do(t, h, http.MethodGet, "/search?q=nothing+like+this", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeBody[index.Stats](t, rr)
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, 1, st.Failures)

	rr = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `forgecore_requests_total{category="mesh_create",status="success"} 1`)

	rr = do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
