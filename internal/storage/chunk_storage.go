package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/worldgen/internal/chunk"
	"github.com/annel0/worldgen/internal/logging"
	"github.com/annel0/worldgen/internal/vec"
)

// ErrNotReady возвращается после закрытия хранилища
var ErrNotReady = errors.New("хранилище не готово")

// ChunkStorage хранит готовые колонки в BadgerDB.
// Значение - JSON-запись колонки, сжатая zstd.
type ChunkStorage struct {
	db           *badger.DB
	dbPath       string
	mutex        sync.RWMutex
	isReady      bool
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
	logger       *logging.Logger

	saved        atomic.Int64
	bytesWritten atomic.Int64
}

// StorageStats - счётчики хранилища
type StorageStats struct {
	Saved        int64 `json:"saved"`
	BytesWritten int64 `json:"bytes_written"`
}

// NewChunkStorage открывает хранилище в каталоге dataPath/chunks
func NewChunkStorage(dataPath string) (*ChunkStorage, error) {
	dbPath := filepath.Join(dataPath, "chunks")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB
	return openChunkStorage(opts, dbPath)
}

// NewInMemoryChunkStorage создаёт хранилище без записи на диск (тесты, эфемерные миры)
func NewInMemoryChunkStorage() (*ChunkStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openChunkStorage(opts, "")
}

func openChunkStorage(opts badger.Options, dbPath string) (*ChunkStorage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	s := &ChunkStorage{
		db:           db,
		dbPath:       dbPath,
		isReady:      true,
		compressor:   compressor,
		decompressor: decompressor,
		logger:       logging.GetStorageLogger(),
	}
	s.logger.Info("💾 Хранилище колонок открыто: %s", describePath(dbPath))
	return s, nil
}

func describePath(p string) string {
	if p == "" {
		return "in-memory"
	}
	return p
}

// Close закрывает хранилище данных
func (s *ChunkStorage) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}

	s.isReady = false
	s.compressor.Close()
	s.decompressor.Close()
	return s.db.Close()
}

func chunkKey(pos vec.Vec2) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", pos.X, pos.Z))
}

// SaveChunk сохраняет колонку, перезаписывая предыдущую версию
func (s *ChunkStorage) SaveChunk(data *chunk.ChunkData) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrNotReady
	}

	raw, err := encodeChunk(data)
	if err != nil {
		return err
	}
	compressed := s.compressor.EncodeAll(raw, nil)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(data.Position), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	s.saved.Add(1)
	s.bytesWritten.Add(int64(len(compressed)))
	s.logger.Trace("💾 Колонка %s сохранена (%d → %d байт)", data.Position, len(raw), len(compressed))
	return nil
}

// LoadChunk загружает колонку; false, если колонка не сохранялась
func (s *ChunkStorage) LoadChunk(pos vec.Vec2) (*chunk.ChunkData, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, false, ErrNotReady
	}

	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(pos))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})

	// Если колонка не найдена, это не ошибка
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	raw, err := s.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка распаковки колонки %s: %w", pos, err)
	}

	data, err := decodeChunk(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// HasChunk проверяет наличие колонки без чтения значения
func (s *ChunkStorage) HasChunk(pos vec.Vec2) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return false, ErrNotReady
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(chunkKey(pos))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return true, nil
}

// DeleteChunk удаляет колонку (повторная генерация)
func (s *ChunkStorage) DeleteChunk(pos vec.Vec2) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrNotReady
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(pos))
	}); err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

// CountChunks возвращает количество сохранённых колонок
func (s *ChunkStorage) CountChunks() (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return 0, ErrNotReady
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("chunk:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка обхода BadgerDB: %w", err)
	}
	return count, nil
}

// Stats возвращает счётчики хранилища
func (s *ChunkStorage) Stats() StorageStats {
	return StorageStats{
		Saved:        s.saved.Load(),
		BytesWritten: s.bytesWritten.Load(),
	}
}
