package monitor

import "context"

// Counters holds cumulative byte totals for one interface since it came up.
type Counters struct {
	Rx uint64
	Tx uint64
}

// Sample is one raw reading from the metrics source. It carries no derived
// values; rates come from the Monitor comparing two consecutive samples.
type Sample struct {
	CPU       []float64
	Mem       MemStats
	Swap      MemStats
	Net       map[string]Counters
	Processes []Status
}

// Source provides raw host readings. Refresh returns the complete current
// state: per-core CPU utilization in percent, memory and swap in bytes, the
// cumulative traffic counters of every currently present interface, and the
// state of every process.
type Source interface {
	Refresh(ctx context.Context) (Sample, error)
}
