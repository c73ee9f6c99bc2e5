package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/worldgen/internal/generation"
	"github.com/annel0/worldgen/internal/vec"
)

const namespace = "worldgen"

// GeneratorMetrics - Prometheus-метрики планировщика и генератора.
// Реализует generation.SchedulerObserver и generation.GeneratorObserver.
type GeneratorMetrics struct {
	requestsAdmitted  prometheus.Counter
	requestsCompleted prometheus.Counter
	unitsExecuted     prometheus.Counter
	unitDuration      prometheus.Histogram
	queueDepth        prometheus.Gauge
	stageDuration     *prometheus.HistogramVec
	stageColumns      *prometheus.CounterVec
	chunksGenerated   prometheus.Counter

	protoBuffers prometheus.Gauge
	protoEvicted prometheus.Counter
	storageBytes prometheus.Counter
}

// NewGeneratorMetrics создаёт метрики и регистрирует их в reg (nil - дефолтный регистр)
func NewGeneratorMetrics(reg prometheus.Registerer) *GeneratorMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &GeneratorMetrics{
		requestsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_admitted_total",
			Help:      "Запросы генерации, принятые планировщиком.",
		}),
		requestsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_completed_total",
			Help:      "Полностью выполненные запросы генерации.",
		}),
		unitsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_executed_total",
			Help:      "Выполненные единицы работы (кольца запросов).",
		}),
		unitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Длительность выполнения единицы работы.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Количество активных запросов в очереди планировщика.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Длительность стадии генерации над одним кольцом.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"stage"}),
		stageColumns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_columns_total",
			Help:      "Колонки, обойдённые стадией генерации.",
		}, []string{"stage"}),
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Готовые колонки, переданные уровню.",
		}),
		protoBuffers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proto_buffers",
			Help:      "Рабочие буферы колонок в памяти.",
		}),
		protoEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proto_evicted_total",
			Help:      "Рабочие буферы, вытесненные при переполнении.",
		}),
		storageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_bytes_written_total",
			Help:      "Сжатые байты колонок, записанные в хранилище.",
		}),
	}

	reg.MustRegister(
		m.requestsAdmitted, m.requestsCompleted, m.unitsExecuted, m.unitDuration, m.queueDepth,
		m.stageDuration, m.stageColumns, m.chunksGenerated,
		m.protoBuffers, m.protoEvicted, m.storageBytes,
	)
	return m
}

func (m *GeneratorMetrics) RequestAdmitted(generation.LoadRequest) {
	m.requestsAdmitted.Inc()
}

func (m *GeneratorMetrics) UnitExecuted(_ generation.WorkUnit, elapsed time.Duration) {
	m.unitsExecuted.Inc()
	m.unitDuration.Observe(elapsed.Seconds())
}

func (m *GeneratorMetrics) RequestCompleted(generation.LoadRequest) {
	m.requestsCompleted.Inc()
}

func (m *GeneratorMetrics) QueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *GeneratorMetrics) StageCompleted(stage generation.Stage, columns int, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage.String()).Observe(elapsed.Seconds())
	m.stageColumns.WithLabelValues(stage.String()).Add(float64(columns))
}

func (m *GeneratorMetrics) ChunkGenerated(vec.Vec2) {
	m.chunksGenerated.Inc()
}
