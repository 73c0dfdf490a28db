package runner

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ResourceMonitor samples the process's resource usage over a run.
type ResourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
}

// NewResourceMonitor starts measuring from now. A monitor that cannot
// inspect the process reports only Go runtime figures.
func NewResourceMonitor() *ResourceMonitor {
	rm := &ResourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return rm
	}
	rm.process = proc
	if cpuTime, err := proc.Times(); err == nil {
		rm.startCPUTime = cpuTime.Total()
	}
	return rm
}

// ResourceUsage contains resource usage information
type ResourceUsage struct {
	CPUPercent          float64
	MemoryRSS           uint64
	HeapAlloc           uint64
	SystemMemoryPercent float64
	GoroutineCount      int
}

// Usage returns the usage since the monitor started.
func (rm *ResourceMonitor) Usage() ResourceUsage {
	var usage ResourceUsage

	if rm.process != nil {
		if cpuTime, err := rm.process.Times(); err == nil {
			if elapsed := time.Since(rm.startTime).Seconds(); elapsed > 0 {
				usage.CPUPercent = ((cpuTime.Total() - rm.startCPUTime) / elapsed) * 100
			}
		}
		if memInfo, err := rm.process.MemoryInfo(); err == nil {
			usage.MemoryRSS = memInfo.RSS
		}
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	usage.HeapAlloc = memStats.HeapAlloc
	usage.GoroutineCount = runtime.NumGoroutine()
	return usage
}

// Fields renders the usage as log fields.
func (u ResourceUsage) Fields() []zap.Field {
	return []zap.Field{
		zap.Float64("cpu_percent", u.CPUPercent),
		zap.Uint64("rss_bytes", u.MemoryRSS),
		zap.Uint64("heap_alloc_bytes", u.HeapAlloc),
		zap.Float64("system_memory_percent", u.SystemMemoryPercent),
		zap.Int("goroutines", u.GoroutineCount),
	}
}
