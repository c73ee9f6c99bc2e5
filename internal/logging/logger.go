package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int32

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации ("debug", "INFO", ...)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
	}
}

// Logger представляет логгер компонента с выводом в консоль и (опционально) в файл
type Logger struct {
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel atomic.Int32
	minFileLevel    atomic.Int32
}

var (
	// Каталог файловых логов; пустая строка отключает запись в файлы
	logDir   string
	logDirMu sync.RWMutex

	defaultLogger   = NewConsoleLogger("server", os.Stdout)
	defaultLoggerMu sync.RWMutex
)

// SetLogDir включает запись логов компонентов в файлы каталога dir ("" - только консоль)
func SetLogDir(dir string) {
	logDirMu.Lock()
	defer logDirMu.Unlock()
	logDir = dir
}

func currentLogDir() string {
	logDirMu.RLock()
	defer logDirMu.RUnlock()
	return logDir
}

// NewConsoleLogger создаёт логгер, пишущий только в w (уровень INFO и выше)
func NewConsoleLogger(component string, w io.Writer) *Logger {
	l := &Logger{
		component:     component,
		consoleLogger: log.New(w, "", log.LstdFlags),
	}
	l.minConsoleLevel.Store(int32(INFO))
	l.minFileLevel.Store(int32(DEBUG))
	return l
}

// NewLogger создаёт логгер компонента. Если задан каталог логов, дополнительно открывает файл
// <dir>/<component>_<timestamp>.log, куда пишутся сообщения уровня DEBUG и выше.
func NewLogger(component string) (*Logger, error) {
	l := NewConsoleLogger(component, os.Stdout)

	dir := currentLogDir()
	if dir == "" {
		return l, nil
	}

	// Создаем директорию для логов
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	// Создаем файл для логов с временной меткой
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l.file = file
	l.fileLogger = log.New(file, "", log.LstdFlags)
	return l, nil
}

// SetLevels устанавливает минимальные уровни для консоли и файла
func (l *Logger) SetLevels(console, file LogLevel) {
	l.minConsoleLevel.Store(int32(console))
	l.minFileLevel.Store(int32(file))
}

// Close закрывает файл логов, если он был открыт
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.logMessage(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.logMessage(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.logMessage(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.logMessage(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.logMessage(ERROR, format, args...) }

// logMessage внутренняя функция для логирования
func (l *Logger) logMessage(level LogLevel, format string, args ...interface{}) {
	consoleOn := int32(level) >= l.minConsoleLevel.Load()
	fileOn := l.fileLogger != nil && int32(level) >= l.minFileLevel.Load()
	if !consoleOn && !fileOn {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	if fileOn {
		l.fileLogger.Println(message)
	}
	if consoleOn {
		l.consoleLogger.Println(message)
	}
}

// InitDefaultLogger пересоздаёт глобальный логгер для компонента процесса
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultLoggerMu.Lock()
	old := defaultLogger
	defaultLogger = logger
	defaultLoggerMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseDefaultLogger закрывает файл глобального логгера
func CloseDefaultLogger() {
	if err := getDefault().Close(); err != nil {
		log.Printf("ошибка закрытия логгера: %v", err)
	}
}

// SetDefaultLevel задаёт минимальный консольный уровень глобального логгера
func SetDefaultLevel(level LogLevel) {
	getDefault().SetLevels(level, DEBUG)
}

func getDefault() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE глобальным логгером
func Trace(format string, args ...interface{}) { getDefault().logMessage(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG глобальным логгером
func Debug(format string, args ...interface{}) { getDefault().logMessage(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO глобальным логгером
func Info(format string, args ...interface{}) { getDefault().logMessage(INFO, format, args...) }

// Warn логирует сообщение уровня WARN глобальным логгером
func Warn(format string, args ...interface{}) { getDefault().logMessage(WARN, format, args...) }

// Error логирует сообщение уровня ERROR глобальным логгером
func Error(format string, args ...interface{}) { getDefault().logMessage(ERROR, format, args...) }

// LogChunkRequest логирует поступивший запрос генерации
func LogChunkRequest(source string, chunkX, chunkZ, radius int) {
	Debug("Запрос генерации от %s: колонка (%d,%d), радиус %d", source, chunkX, chunkZ, radius)
}
