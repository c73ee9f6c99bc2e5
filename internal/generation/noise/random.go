package noise

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// RandomConfig хранит сид мира и выводит из него независимые сиды подсистем.
// Значение неизменяемо и безопасно для параллельного чтения.
type RandomConfig struct {
	seed int64
}

// NewRandomConfig создаёт конфигурацию случайности для сида мира
func NewRandomConfig(seed int64) RandomConfig {
	return RandomConfig{seed: seed}
}

// Seed возвращает исходный сид мира
func (c RandomConfig) Seed() int64 {
	return c.seed
}

// Fork возвращает детерминированный сид для именованной подсистемы
func (c RandomConfig) Fork(name string) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(c.seed))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(name)
	return int64(d.Sum64())
}

// PositionalHash возвращает детерминированный хэш колонки для соли salt
func (c RandomConfig) PositionalHash(salt string, x, z int) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(c.seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(z)))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(salt)
	return d.Sum64()
}
