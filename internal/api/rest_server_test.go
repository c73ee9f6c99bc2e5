package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/generation"
	"github.com/annel0/worldgen/internal/level"
	"github.com/annel0/worldgen/internal/storage"
	"github.com/annel0/worldgen/internal/vec"
)

// stubWorld - управляемая заглушка уровня
type stubWorld struct {
	submitErr error
	submitted []vec.Vec2
	chunkErr  error
}

func (w *stubWorld) Submit(_ context.Context, origin vec.Vec2, radius int) (generation.LoadRequest, error) {
	if w.submitErr != nil {
		return generation.LoadRequest{}, w.submitErr
	}
	w.submitted = append(w.submitted, origin)
	return generation.NewLoadRequest(origin, radius), nil
}

func (w *stubWorld) Status(uuid.UUID) (level.RequestStatus, bool) { return level.RequestStatus{}, false }

func (w *stubWorld) Chunk(vec.Vec2) (*chunk.ChunkData, bool, error) { return nil, false, w.chunkErr }

func (w *stubWorld) Stats() level.LevelStats { return level.LevelStats{Accepted: 7} }

func newTestServer(t *testing.T, world World) *RestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRestServer(Config{
		World:     world,
		Registry:  prometheus.NewRegistry(),
		MaxRadius: 4,
		Dimension: generation.End,
	})
}

func doRequest(t *testing.T, rs *RestServer, method, path string, body interface{}) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, req)

	var resp GenericResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestGenerate_Validation(t *testing.T) {
	world := &stubWorld{}
	rs := newTestServer(t, world)

	w, resp := doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 1, "z": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code, "Радиус обязателен")
	assert.False(t, resp.Success)

	w, _ = doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 1, "z": 2, "radius": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 1, "z": 2, "radius": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code, "Радиус выше предела отклоняется")

	w, _ = doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 1 << 32, "z": 0, "radius": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code, "Центр за границей мира отклоняется")

	w, _ = doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 0, "z": vec.WorldBorder - 10, "radius": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "Зависимости за границей мира отклоняются")
	assert.Empty(t, world.submitted)

	w, resp = doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"x": 1, "z": 2, "radius": 0})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, []vec.Vec2{{X: 1, Z: 2}}, world.submitted)
}

func TestGenerate_SubmitErrors(t *testing.T) {
	cases := map[error]int{
		level.ErrClosed:          http.StatusServiceUnavailable,
		level.ErrOutOfBounds:     http.StatusBadRequest,
		context.DeadlineExceeded: http.StatusServiceUnavailable,
		errors.New("boom"):       http.StatusInternalServerError,
	}
	for submitErr, code := range cases {
		rs := newTestServer(t, &stubWorld{submitErr: submitErr})
		w, _ := doRequest(t, rs, http.MethodPost, "/api/generate", gin.H{"radius": 1})
		assert.Equal(t, code, w.Code, "Ошибка %v", submitErr)
	}
}

func TestRequestStatusAndChunk_Errors(t *testing.T) {
	rs := newTestServer(t, &stubWorld{})

	w, _ := doRequest(t, rs, http.MethodGet, "/api/requests/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, rs, http.MethodGet, "/api/requests/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, rs, http.MethodGet, "/api/chunks/a/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, rs, http.MethodGet, "/api/chunks/0/0", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, rs, http.MethodGet, "/api/chunks/4294967296/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "Колонка за границей мира отклоняется")

	broken := newTestServer(t, &stubWorld{chunkErr: errors.New("disk")})
	w, _ = doRequest(t, broken, http.MethodGet, "/api/chunks/0/0", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRing(t *testing.T) {
	rs := newTestServer(t, &stubWorld{})

	w := httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ring?x=10&z=-3&r=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []vec.Vec2 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, generation.Ring(vec.Vec2{X: 10, Z: -3}, 1), resp.Data)

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ring?r=100", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ring?x=1875000&r=1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "Кольцо за границей мира отклоняется")
}

func TestHealthStatsMetrics(t *testing.T) {
	rs := newTestServer(t, &stubWorld{})

	w, _ := doRequest(t, rs, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w, resp := doRequest(t, rs, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "end", data["dimension"])
	assert.Contains(t, data, "process")
	assert.NotContains(t, data, "scheduler", "Без планировщика секция отсутствует")

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "worldgen_api_http_request_duration_seconds")
}

func TestGenerateEndToEnd(t *testing.T) {
	store, err := storage.NewInMemoryChunkStorage()
	require.NoError(t, err)
	defer store.Close()

	lvl, err := level.New(store, level.Options{})
	require.NoError(t, err)
	defer lvl.Shutdown()

	gen := generation.NewVanillaGenerator(11, generation.End, lvl)
	scheduler := generation.NewScheduler(gen, lvl.Requests(), generation.WithObserver(lvl))
	done := make(chan struct{})
	go func() {
		scheduler.Run(context.Background())
		close(done)
	}()

	gin.SetMode(gin.TestMode)
	rs := NewRestServer(Config{
		World:     lvl,
		Scheduler: scheduler,
		Storage:   store,
		Registry:  prometheus.NewRegistry(),
		Dimension: generation.End,
	})

	w := httptest.NewRecorder()
	raw, _ := json.Marshal(gin.H{"x": 0, "z": 0, "radius": 0})
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(raw)))
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted struct {
		Data GenerateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	assert.Equal(t, 1, accepted.Data.Units)

	require.Eventually(t, func() bool {
		status, ok := lvl.Status(accepted.Data.ID)
		return ok && status.State == level.StateCompleted
	}, 30*time.Second, 20*time.Millisecond, "Запрос должен завершиться")

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/requests/"+accepted.Data.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"completed"`)

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chunks/0/0", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Data ChunkSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, vec.Vec2{}, summary.Data.Position)
	assert.Equal(t, 16, summary.Data.Sections)
	assert.Len(t, summary.Data.Heightmap, chunk.ColumnArea)
	assert.Greater(t, summary.Data.MaxHeight, 0, "В центре Края есть остров")

	w = httptest.NewRecorder()
	rs.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Contains(t, w.Body.String(), `"scheduler"`)
	assert.Contains(t, w.Body.String(), `"storage"`)

	lvl.Close()
	<-done
}
