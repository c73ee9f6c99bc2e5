package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/worldgen/internal/api"
	"github.com/annel0/worldgen/internal/config"
	"github.com/annel0/worldgen/internal/generation"
	"github.com/annel0/worldgen/internal/level"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/metrics"
	"github.com/annel0/worldgen/internal/observability"
	"github.com/annel0/worldgen/internal/storage"
	"github.com/annel0/worldgen/internal/vec"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или WORLDGEN_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.Logging.Dir != "" {
		logging.SetLogDir(cfg.Logging.Dir)
	}
	if err := logging.InitDefaultLogger("worldgen"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Генератор остановлен")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dim, err := generation.ParseDimension(cfg.Generator.GetDimension())
	if err != nil {
		return err
	}
	seed := cfg.Generator.GetSeed()
	logging.Info("🌱 Запуск генератора мира: измерение %s, сид %d", dim, seed)

	// === TELEMETRY ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.GetServiceName())
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("⚠️ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === STORAGE ===
	var store *storage.ChunkStorage
	if cfg.Storage.InMemory {
		store, err = storage.NewInMemoryChunkStorage()
	} else {
		store, err = storage.NewChunkStorage(cfg.Storage.GetPath())
	}
	if err != nil {
		return fmt.Errorf("хранилище колонок: %w", err)
	}
	defer store.Close()

	lvl, err := level.New(store, level.Options{
		QueueSize:   cfg.Scheduler.GetQueueSize(),
		CacheChunks: cfg.Cache.GetMaxChunks(),
	})
	if err != nil {
		return err
	}
	defer lvl.Shutdown()

	// === METRICS ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	genMetrics := metrics.NewGeneratorMetrics(registry)

	// === GENERATION ===
	pool := generation.NewWorkerPool(cfg.Generator.GetWorkers())
	defer pool.Stop()

	gen := generation.NewVanillaGenerator(seed, dim, lvl,
		generation.WithWorkerPool(pool),
		generation.WithProtoCapacity(cfg.Generator.ProtoCapacity),
		generation.WithGeneratorObserver(genMetrics),
	)
	scheduler := generation.NewScheduler(gen, lvl.Requests(),
		generation.WithObserver(generation.ObserverGroup{lvl, genMetrics}),
	)

	sampler := metrics.NewSampler(genMetrics, func() metrics.Sample {
		return metrics.Sample{
			ProtoBuffers: gen.Protos().Len(),
			ProtoEvicted: gen.Protos().Evicted(),
			StorageBytes: store.Stats().BytesWritten,
		}
	}, 5*time.Second)
	sampler.Start()
	defer sampler.Stop()

	restPort := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	rest := api.NewRestServer(api.Config{
		Port:      restPort,
		World:     lvl,
		Scheduler: scheduler,
		Storage:   store,
		Registry:  registry,
		Dimension: dim,
	})

	if logLevel, err := logging.ParseLevel(cfg.Logging.GetLevel()); err == nil {
		logging.SetDefaultLevel(logLevel)
		logging.GetLoggerManager().SetAllLevels(logLevel, logging.DEBUG)
	}
	if stageLevel, err := logging.ParseLevel(cfg.Logging.GetStageLevel()); err == nil {
		logging.GetLoggerManager().SetGroupLevels(logging.ComponentGeneration, stageLevel, min(stageLevel, logging.DEBUG))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})

	g.Go(rest.Start)

	g.Go(func() error {
		for _, p := range cfg.Scheduler.Preload {
			if _, err := lvl.Submit(gctx, vec.Vec2{X: p.X, Z: p.Z}, p.Radius); err != nil {
				logging.Warn("⚠️ Запрос прогрева (%d,%d) r=%d не принят: %v", p.X, p.Z, p.Radius, err)
				return nil
			}
		}
		return nil
	})

	// === GRACEFUL SHUTDOWN ===
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("📡 Завершение работы: принятые запросы будут доработаны")
		lvl.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return rest.Stop(shutdownCtx)
	})

	logging.Info("✅ Генератор готов: REST API http://localhost%s, метрики http://localhost%s/metrics", restPort, restPort)

	if err := g.Wait(); err != nil {
		return err
	}

	stats := scheduler.Stats()
	logging.Info("📊 Итог: запросов %d, единиц %d, колонок %d",
		stats.Completed, stats.Executed, gen.Generated())
	return nil
}
