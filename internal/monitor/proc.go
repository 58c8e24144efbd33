package monitor

import "strings"

// Status is the closed set of process states the snapshot distinguishes.
type Status int

const (
	StatusOther Status = iota
	StatusRunning
	StatusSleeping
	StatusZombie
)

// ParseStatus maps an OS-reported process state to the closed set. Both the
// one-letter /proc codes and gopsutil's long names are accepted. Anything
// unrecognized (idle, stopped, disk wait, ...) is StatusOther.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "running":
		return StatusRunning
	case "s", "sleep", "sleeping":
		return StatusSleeping
	case "z", "zombie":
		return StatusZombie
	default:
		return StatusOther
	}
}

// CountProcs tallies process states into ProcStats.
func CountProcs(statuses []Status) ProcStats {
	stats := ProcStats{Total: len(statuses)}
	for _, s := range statuses {
		switch s {
		case StatusRunning:
			stats.Running++
		case StatusSleeping:
			stats.Sleeping++
		case StatusZombie:
			stats.Zombie++
		}
	}
	return stats
}
