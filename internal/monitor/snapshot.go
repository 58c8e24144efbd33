// Package monitor holds the sampling core: the snapshot data model and the
// engine that turns cumulative OS counters into per-second rates.
package monitor

// Snapshot is the complete result of one sampling tick. It is built fresh
// each tick and never mutated afterwards. The JSON tags are the wire format
// consumed by the receiving endpoint and must stay stable.
type Snapshot struct {
	CPU  []float64          `json:"cpu" validate:"min=1,dive,gte=0"`
	Mem  MemStats           `json:"mem"`
	Swap MemStats           `json:"swap"`
	Net  map[string]NetRate `json:"net"`
	Proc ProcStats          `json:"proc"`
}

// MemStats is a total/used pair in bytes, used for both memory and swap.
type MemStats struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used" validate:"ltefield=Total"`
}

// NetRate is the derived throughput of one interface in bytes per second,
// averaged over the elapsed wall time between two ticks.
type NetRate struct {
	Rx uint64 `json:"rx"`
	Tx uint64 `json:"tx"`
}

// ProcStats counts processes by state. Total covers every process; states
// outside the running/sleeping/zombie set contribute to Total only, so
// Total >= Running+Sleeping+Zombie always holds.
type ProcStats struct {
	Total    int `json:"total" validate:"gte=0"`
	Running  int `json:"running" validate:"gte=0"`
	Sleeping int `json:"sleeping" validate:"gte=0"`
	Zombie   int `json:"zombie" validate:"gte=0"`
}
