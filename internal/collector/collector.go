// Package collector implements the gopsutil-backed metrics source.
package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"sysmon/internal/monitor"
)

type Collector struct{}

func New() *Collector {
	return &Collector{}
}

// Refresh reads the full host state. CPU percentages are relative to the
// previous Refresh call, so the first reading after startup is only useful
// as a baseline.
func (c *Collector) Refresh(ctx context.Context) (monitor.Sample, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return monitor.Sample{}, fmt.Errorf("cpu: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return monitor.Sample{}, fmt.Errorf("memory: %w", err)
	}

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return monitor.Sample{}, fmt.Errorf("swap: %w", err)
	}

	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return monitor.Sample{}, fmt.Errorf("network: %w", err)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return monitor.Sample{}, fmt.Errorf("processes: %w", err)
	}

	sample := monitor.Sample{
		CPU:  percents,
		Mem:  monitor.MemStats{Total: vm.Total, Used: vm.Used},
		Swap: monitor.MemStats{Total: swap.Total, Used: swap.Used},
		Net:  make(map[string]monitor.Counters, len(counters)),
	}

	for _, ioc := range counters {
		sample.Net[ioc.Name] = monitor.Counters{Rx: ioc.BytesRecv, Tx: ioc.BytesSent}
	}

	sample.Processes = make([]monitor.Status, 0, len(procs))
	for _, p := range procs {
		statuses, err := p.StatusWithContext(ctx)
		if err != nil {
			// The process exited between the table scan and the
			// status read.
			continue
		}
		status := ""
		if len(statuses) > 0 {
			status = statuses[0]
		}
		sample.Processes = append(sample.Processes, monitor.ParseStatus(status))
	}

	return sample, nil
}
