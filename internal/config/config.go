package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации генератора мира.
// Незаданные поля заменяются значениями окружения или значениями по умолчанию через геттеры.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type GeneratorConfig struct {
	Seed          *int64 `yaml:"seed"`
	Dimension     string `yaml:"dimension"`
	Workers       int    `yaml:"workers"`
	ProtoCapacity int    `yaml:"proto_capacity"`
}

type SchedulerConfig struct {
	QueueSize int `yaml:"queue_size"`
	// Запросы, отправляемые при старте (прогрев спавна)
	Preload []PreloadRequest `yaml:"preload"`
}

type PreloadRequest struct {
	X      int `yaml:"x"`
	Z      int `yaml:"z"`
	Radius int `yaml:"radius"`
}

type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type CacheConfig struct {
	MaxChunks int `yaml:"max_chunks"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// Уровень генератора и его стадий; пусто - как Level
	StageLevel string `yaml:"stage_level"`
	Dir        string `yaml:"dir"`
}

// Default возвращает конфигурацию, в которой все значения берутся из геттеров
func Default() *Config {
	return &Config{}
}

// GetSeed возвращает сид мира с поддержкой fallback значений
func (g *GeneratorConfig) GetSeed() int64 {
	if g.Seed != nil {
		return *g.Seed
	}
	if envVal := os.Getenv("WORLDGEN_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 0
}

// GetDimension возвращает имя измерения (по умолчанию overworld)
func (g *GeneratorConfig) GetDimension() string {
	if g.Dimension != "" {
		return g.Dimension
	}
	if envVal := os.Getenv("WORLDGEN_DIMENSION"); envVal != "" {
		return envVal
	}
	return "overworld"
}

// GetWorkers возвращает размер пула воркеров; 0 означает по числу CPU
func (g *GeneratorConfig) GetWorkers() int {
	return getIntWithEnvFallback(g.Workers, "WORLDGEN_WORKERS", 0)
}

// GetQueueSize возвращает ёмкость канала запросов
func (s *SchedulerConfig) GetQueueSize() int {
	return getIntWithEnvFallback(s.QueueSize, "WORLDGEN_QUEUE_SIZE", 256)
}

// GetPath возвращает каталог badger с поддержкой fallback значений
func (s *StorageConfig) GetPath() string {
	if s.Path != "" {
		return s.Path
	}
	if envVal := os.Getenv("WORLDGEN_STORAGE_PATH"); envVal != "" {
		return envVal
	}
	return "data/chunks"
}

// GetMaxChunks возвращает ёмкость кэша готовых колонок
func (c *CacheConfig) GetMaxChunks() int {
	return getIntWithEnvFallback(c.MaxChunks, "WORLDGEN_CACHE_CHUNKS", 1024)
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getIntWithEnvFallback(s.RESTPort, "WORLDGEN_REST_PORT", 8088)
}

// GetServiceName возвращает имя сервиса для трассировки
func (t *TelemetryConfig) GetServiceName() string {
	if t.ServiceName != "" {
		return t.ServiceName
	}
	return "worldgen"
}

// GetLevel возвращает уровень логирования
func (l *LoggingConfig) GetLevel() string {
	if l.Level != "" {
		return l.Level
	}
	return os.Getenv("WORLDGEN_LOG_LEVEL")
}

// GetStageLevel возвращает уровень логирования стадий генерации
func (l *LoggingConfig) GetStageLevel() string {
	if l.StageLevel != "" {
		return l.StageLevel
	}
	if env := os.Getenv("WORLDGEN_STAGE_LOG_LEVEL"); env != "" {
		return env
	}
	return l.GetLevel()
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV WORLDGEN_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLDGEN_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан - использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфига %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("разбор конфига %s: %w", path, err)
	}

	for i, p := range cfg.Scheduler.Preload {
		if p.Radius < 0 {
			return nil, fmt.Errorf("preload[%d]: отрицательный радиус %d", i, p.Radius)
		}
	}

	return &cfg, nil
}
