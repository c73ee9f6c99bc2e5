package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats - снимок ресурсов процесса генератора
type ProcessStats struct {
	Uptime      string  `json:"uptime"`
	RSSMB       float64 `json:"rss_mb"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	HeapSysMB   float64 `json:"heap_sys_mb"`
	NumGC       uint32  `json:"num_gc"`
	Goroutines  int     `json:"goroutines"`
	CPUPercent  float64 `json:"cpu_percent"`
	CPUCores    int     `json:"cpu_cores"`
}

// ProcessMetrics снимает метрики процесса через gopsutil
type ProcessMetrics struct {
	startTime time.Time
	proc      *process.Process
}

// NewProcessMetrics создаёт сборщик для текущего процесса
func NewProcessMetrics() *ProcessMetrics {
	pm := &ProcessMetrics{startTime: time.Now()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		pm.proc = proc
	}
	return pm
}

// Uptime возвращает время работы в виде "1д 2ч 3м 4с"
func (pm *ProcessMetrics) Uptime() string {
	return formatUptime(time.Since(pm.startTime))
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// CPUPercent возвращает загрузку CPU процессом; если процесс недоступен - загрузку системы
func (pm *ProcessMetrics) CPUPercent() (float64, error) {
	if pm.proc != nil {
		if percent, err := pm.proc.CPUPercent(); err == nil {
			return percent, nil
		}
	}

	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("cpu.Percent вернул пустой результат")
	}
	return percents[0], nil
}

// RSS возвращает резидентную память процесса в MB
func (pm *ProcessMetrics) RSS() (float64, error) {
	if pm.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	info, err := pm.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / 1024 / 1024, nil
}

// Snapshot собирает ProcessStats; недоступные значения остаются нулевыми
func (pm *ProcessMetrics) Snapshot() ProcessStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := ProcessStats{
		Uptime:      pm.Uptime(),
		HeapAllocMB: float64(m.HeapAlloc) / 1024 / 1024,
		HeapSysMB:   float64(m.HeapSys) / 1024 / 1024,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		CPUCores:    runtime.NumCPU(),
	}
	if rss, err := pm.RSS(); err == nil {
		stats.RSSMB = rss
	}
	if percent, err := pm.CPUPercent(); err == nil {
		stats.CPUPercent = percent
	}
	return stats
}
