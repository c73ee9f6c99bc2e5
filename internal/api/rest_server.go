package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/generation"
	"github.com/annel0/worldgen/internal/level"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/middleware"
	"github.com/annel0/worldgen/internal/storage"
	"github.com/annel0/worldgen/internal/vec"
)

const defaultMaxRadius = 32

// World - операции уровня, нужные REST-интерфейсу
type World interface {
	Submit(ctx context.Context, origin vec.Vec2, radius int) (generation.LoadRequest, error)
	Status(id uuid.UUID) (level.RequestStatus, bool)
	Chunk(pos vec.Vec2) (*chunk.ChunkData, bool, error)
	Stats() level.LevelStats
}

// SchedulerStatser отдаёт счётчики планировщика
type SchedulerStatser interface {
	Stats() generation.SchedulerStats
}

// StorageStatser отдаёт счётчики хранилища
type StorageStatser interface {
	Stats() storage.StorageStats
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Port      string // адрес, например ":8088"
	World     World
	Scheduler SchedulerStatser     // может быть nil
	Storage   StorageStatser       // может быть nil
	Registry  *prometheus.Registry // nil - дефолтный регистр Prometheus
	MaxRadius int                  // верхняя граница радиуса запроса
	Dimension generation.Dimension
}

// RestServer - HTTP-интерфейс генератора: приём запросов, статус, просмотр колонок
type RestServer struct {
	router    *gin.Engine
	server    *http.Server
	world     World
	scheduler SchedulerStatser
	storage   StorageStatser
	metrics   *ProcessMetrics
	maxRadius int
	dimension generation.Dimension
	logger    *logging.Logger
}

// NewRestServer создаёт сервер и настраивает маршруты
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.MaxRadius <= 0 {
		config.MaxRadius = defaultMaxRadius
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(otelgin.Middleware("worldgen_api"))
	router.Use(middleware.NewRequestLogger(nil).Handler())

	promMw := middleware.NewPrometheusMiddleware("worldgen_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:    router,
		world:     config.World,
		scheduler: config.Scheduler,
		storage:   config.Storage,
		metrics:   NewProcessMetrics(),
		maxRadius: config.MaxRadius,
		dimension: config.Dimension,
		logger:    logging.GetAPILogger(),
	}
	rs.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs
}

func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.POST("/generate", rs.handleGenerate)
		api.GET("/requests/:id", rs.handleRequestStatus)
		api.GET("/chunks/:x/:z", rs.handleChunk)
		api.GET("/ring", rs.handleRing)
		api.GET("/stats", rs.handleStats)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// GenericResponse - общий формат ответа API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// GenerateRequest - тело POST /api/generate
type GenerateRequest struct {
	X      int  `json:"x"`
	Z      int  `json:"z"`
	Radius *int `json:"radius" binding:"required"`
}

// GenerateResponse - принятый запрос генерации
type GenerateResponse struct {
	ID     uuid.UUID `json:"id"`
	Origin vec.Vec2  `json:"origin"`
	Radius int       `json:"radius"`
	Units  int       `json:"units"`
}

func (rs *RestServer) fail(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

// handleGenerate ставит запрос генерации в очередь уровня
func (rs *RestServer) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	radius := *req.Radius
	if radius < 0 || radius > rs.maxRadius {
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Радиус должен быть в диапазоне 0..%d", rs.maxRadius))
		return
	}

	origin := vec.Vec2{X: req.X, Z: req.Z}
	if !level.InBounds(origin, radius) {
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Запрос выходит за границу мира ±%d", vec.WorldBorder))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	accepted, err := rs.world.Submit(ctx, origin, radius)
	switch {
	case errors.Is(err, level.ErrOutOfBounds):
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Запрос выходит за границу мира ±%d", vec.WorldBorder))
		return
	case errors.Is(err, level.ErrClosed):
		rs.fail(c, http.StatusServiceUnavailable, "Генератор останавливается")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		rs.fail(c, http.StatusServiceUnavailable, "Очередь запросов переполнена")
		return
	case err != nil:
		rs.logger.Error("❌ Не удалось принять запрос генерации: %v", err)
		rs.fail(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	c.JSON(http.StatusAccepted, GenericResponse{
		Success: true,
		Message: "Запрос принят",
		Data: GenerateResponse{
			ID:     accepted.ID,
			Origin: accepted.Origin,
			Radius: accepted.Radius,
			Units:  accepted.UnitCount(),
		},
	})
}

// handleRequestStatus возвращает прогресс запроса
func (rs *RestServer) handleRequestStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		rs.fail(c, http.StatusBadRequest, "Неверный идентификатор запроса")
		return
	}

	status, ok := rs.world.Status(id)
	if !ok {
		rs.fail(c, http.StatusNotFound, "Запрос не найден")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Статус запроса", Data: status})
}

// ChunkSummary - сводка по готовой колонке
type ChunkSummary struct {
	Position     vec.Vec2                   `json:"position"`
	MinHeight    int                        `json:"min_height"`
	MaxHeight    int                        `json:"max_height"`
	SurfaceBlock string                     `json:"surface_block"`
	Biome        string                     `json:"biome"`
	Sections     int                        `json:"sections"`
	Heightmap    []int                      `json:"heightmap"`
	Structures   []chunk.StructureReference `json:"structures"`
}

func summarize(data *chunk.ChunkData) ChunkSummary {
	summary := ChunkSummary{
		Position:   data.Position,
		Sections:   data.Sections.Len(),
		Heightmap:  append([]int(nil), data.Heightmap[:]...),
		Structures: data.Structures,
		MinHeight:  data.Heightmap[0],
		MaxHeight:  data.Heightmap[0],
	}
	if summary.Structures == nil {
		summary.Structures = []chunk.StructureReference{}
	}
	for _, h := range data.Heightmap {
		summary.MinHeight = min(summary.MinHeight, h)
		summary.MaxHeight = max(summary.MaxHeight, h)
	}

	const center = chunk.BlockSize / 2
	top := data.Height(center, center) - 1
	summary.SurfaceBlock = data.GetBlock(center, top, center).String()
	summary.Biome = data.GetBiome(center, top, center).String()
	return summary
}

// handleChunk возвращает сводку по колонке из кэша или хранилища
func (rs *RestServer) handleChunk(c *gin.Context) {
	x, errX := strconv.Atoi(c.Param("x"))
	z, errZ := strconv.Atoi(c.Param("z"))
	if errX != nil || errZ != nil {
		rs.fail(c, http.StatusBadRequest, "Координаты колонки должны быть целыми")
		return
	}
	pos := vec.Vec2{X: x, Z: z}
	if !pos.WithinBorder(0) {
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Колонка за границей мира ±%d", vec.WorldBorder))
		return
	}

	data, ok, err := rs.world.Chunk(pos)
	if err != nil {
		rs.logger.Error("❌ Ошибка чтения колонки (%d,%d): %v", x, z, err)
		rs.fail(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}
	if !ok {
		rs.fail(c, http.StatusNotFound, "Колонка ещё не сгенерирована")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Колонка", Data: summarize(data)})
}

// handleRing возвращает колонки кольца в порядке обхода генератора
func (rs *RestServer) handleRing(c *gin.Context) {
	x, errX := strconv.Atoi(c.DefaultQuery("x", "0"))
	z, errZ := strconv.Atoi(c.DefaultQuery("z", "0"))
	r, errR := strconv.Atoi(c.Query("r"))
	if errX != nil || errZ != nil || errR != nil {
		rs.fail(c, http.StatusBadRequest, "Параметры x, z, r должны быть целыми")
		return
	}
	limit := rs.maxRadius + generation.StageStructureStarts.Padding()
	if r < 0 || r > limit {
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Кольцо должно быть в диапазоне 0..%d", limit))
		return
	}
	if !(vec.Vec2{X: x, Z: z}).WithinBorder(r) {
		rs.fail(c, http.StatusBadRequest, fmt.Sprintf("Кольцо выходит за границу мира ±%d", vec.WorldBorder))
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Кольцо",
		Data:    generation.Ring(vec.Vec2{X: x, Z: z}, r),
	})
}

// handleStats возвращает статистику уровня, планировщика, хранилища и процесса
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := map[string]interface{}{
		"dimension": rs.dimension.String(),
		"level":     rs.world.Stats(),
		"process":   rs.metrics.Snapshot(),
	}
	if rs.scheduler != nil {
		stats["scheduler"] = rs.scheduler.Stats()
	}
	if rs.storage != nil {
		stats["storage"] = rs.storage.Stats()
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Статистика получена", Data: stats})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.Uptime(),
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP-сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.server.Addr)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	rs.logger.Info("🛑 Остановка REST API")
	return rs.server.Shutdown(ctx)
}
