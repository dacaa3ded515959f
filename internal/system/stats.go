package system

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of the process and host resources.
type Stats struct {
	Goroutines   int
	RSSBytes     uint64
	CPUPercent   float64
	HostTotal    uint64
	HostUsedPerc float64
}

// CollectStats samples the current process. Host figures are left zero when
// the platform does not expose them.
func CollectStats() (Stats, error) {
	s := Stats{Goroutines: runtime.NumGoroutine()}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, err
	}
	if mi, err := p.MemoryInfo(); err == nil {
		s.RSSBytes = mi.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.HostTotal = vm.Total
		s.HostUsedPerc = vm.UsedPercent
	}
	return s, nil
}
