package metrics

import (
	"time"
)

// Sample - значения, которые снимаются периодически, а не по событиям
type Sample struct {
	ProtoBuffers int
	ProtoEvicted uint64
	StorageBytes int64
}

// SampleSource возвращает текущие значения счётчиков
type SampleSource func() Sample

// Sampler раз в interval переносит значения источника в метрики.
// Монотонные счётчики увеличиваются на приращение с прошлого снятия.
type Sampler struct {
	metrics  *GeneratorMetrics
	source   SampleSource
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
	prev     Sample
}

// NewSampler создаёт сэмплер, но не запускает его
func NewSampler(m *GeneratorMetrics, source SampleSource, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{
		metrics:  m,
		source:   source,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновое снятие значений
func (s *Sampler) Start() {
	go s.loop()
}

// Stop останавливает снятие значений и ждёт выхода из цикла
func (s *Sampler) Stop() {
	close(s.quit)
	<-s.done
}

func (s *Sampler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.collect()
		case <-s.quit:
			return
		}
	}
}

// collect снимает одно значение источника
func (s *Sampler) collect() {
	cur := s.source()

	s.metrics.protoBuffers.Set(float64(cur.ProtoBuffers))
	if cur.ProtoEvicted > s.prev.ProtoEvicted {
		s.metrics.protoEvicted.Add(float64(cur.ProtoEvicted - s.prev.ProtoEvicted))
	}
	if cur.StorageBytes > s.prev.StorageBytes {
		s.metrics.storageBytes.Add(float64(cur.StorageBytes - s.prev.StorageBytes))
	}
	s.prev = cur
}
