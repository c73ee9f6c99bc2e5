package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Компоненты генератора, для каждого свой логгер и свой файл
const (
	ComponentGeneration = "generation"
	ComponentScheduler  = "scheduler"
	ComponentStorage    = "storage"
	ComponentLevel      = "level"
	ComponentAPI        = "api"
)

// LoggerManager хранит логгеры компонентов. Стадии генерации получают подлоггеры
// вида "generation.<стадия>", их уровни можно менять группой.
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	// Компоненты, которым не удалось открыть файл; пишут только в fallbackOut
	degraded    map[string]error
	fallbackOut io.Writer
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newLoggerManager(fallbackOut io.Writer) *LoggerManager {
	return &LoggerManager{
		loggers:     make(map[string]*Logger),
		degraded:    make(map[string]error),
		fallbackOut: fallbackOut,
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager(os.Stdout)
	})
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if ok {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента. Если файл лога не открылся, компонент
// один раз получает консольный логгер, и дальше используется он же.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if logger, ok := lm.loggers[component]; ok {
		return logger
	}
	logger = NewConsoleLogger(component, lm.fallbackOut)
	lm.loggers[component] = logger
	lm.degraded[component] = err
	logger.Warn("⚠️ Файловый лог недоступен, вывод только в консоль: %v", err)
	return logger
}

// Degraded возвращает компоненты, пишущие только в консоль, с причиной
func (lm *LoggerManager) Degraded() map[string]error {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	out := make(map[string]error, len(lm.degraded))
	for component, err := range lm.degraded {
		out[component] = err
	}
	return out
}

// CloseAll закрывает все логгеры и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие логгера %s: %w", component, err)
		}
	}
	lm.loggers = make(map[string]*Logger)
	lm.degraded = make(map[string]error)
	return lastErr
}

// ListComponents возвращает отсортированный список компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel устанавливает уровни одному компоненту
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.RLock()
	logger, ok := lm.loggers[component]
	lm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("логгер %s не найден", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// SetGroupLevels устанавливает уровни компоненту и всем его подлоггерам ("generation" и "generation.*").
// Возвращает количество затронутых логгеров.
func (lm *LoggerManager) SetGroupLevels(group string, consoleLevel, fileLevel LogLevel) int {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	n := 0
	for component, logger := range lm.loggers {
		if component == group || strings.HasPrefix(component, group+".") {
			logger.SetLevels(consoleLevel, fileLevel)
			n++
		}
	}
	return n
}

// SetAllLevels устанавливает уровни всем уже созданным логгерам
func (lm *LoggerManager) SetAllLevels(consoleLevel, fileLevel LogLevel) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()
	for _, logger := range lm.loggers {
		logger.SetLevels(consoleLevel, fileLevel)
	}
}

// GetComponentLogger возвращает логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

// StageComponent - имя подлоггера стадии генерации
func StageComponent(stage fmt.Stringer) string {
	return ComponentGeneration + "." + stage.String()
}

// GetStageLogger возвращает логгер стадии генерации
func GetStageLogger(stage fmt.Stringer) *Logger {
	return GetComponentLogger(StageComponent(stage))
}

func GetGenerationLogger() *Logger { return GetComponentLogger(ComponentGeneration) }
func GetSchedulerLogger() *Logger  { return GetComponentLogger(ComponentScheduler) }
func GetStorageLogger() *Logger    { return GetComponentLogger(ComponentStorage) }
func GetLevelLogger() *Logger      { return GetComponentLogger(ComponentLevel) }
func GetAPILogger() *Logger        { return GetComponentLogger(ComponentAPI) }
