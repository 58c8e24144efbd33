package monitor

import (
	"context"
	"fmt"
	"time"
)

// minElapsed guards the rate division when two ticks land within clock
// resolution. A degenerate tick then yields a large but finite rate.
const minElapsed = time.Millisecond

// Monitor turns cumulative source counters into per-tick snapshots. It owns
// the counter baseline and is driven synchronously from a single loop; it
// does no locking of its own.
type Monitor struct {
	source   Source
	baseline map[string]Counters
	lastAt   time.Time
	now      func() time.Time
}

func New(source Source) *Monitor {
	return &Monitor{source: source, now: time.Now}
}

// Init performs the first refresh and captures the initial baseline without
// producing a snapshot. Network rates are undefined until a second reading
// exists, so the first emitted snapshot always comes from the next Tick.
func (m *Monitor) Init(ctx context.Context) error {
	sample, err := m.source.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	m.baseline = sample.Net
	m.lastAt = m.now()
	return nil
}

// Tick refreshes the source and derives one snapshot. On source failure the
// baseline is left untouched and the tick is skipped; the caller retries on
// the next interval.
func (m *Monitor) Tick(ctx context.Context) (Snapshot, error) {
	sample, err := m.source.Refresh(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("refresh: %w", err)
	}

	now := m.now()
	rates := deriveRates(sample.Net, m.baseline, now.Sub(m.lastAt))

	// Counters and timestamp commit together so the next tick sees one
	// consistent baseline. Interfaces gone from the current reading drop
	// out here.
	m.baseline = sample.Net
	m.lastAt = now

	return assemble(sample, rates), nil
}

// deriveRates computes per-second rates for every interface present in both
// the current reading and the baseline. An interface seen for the first
// time has no reportable rate and is omitted until the next tick. A
// negative delta (interface reset or counter rollover) clamps to zero
// rather than underflowing; the baseline rebases at commit either way.
func deriveRates(current, baseline map[string]Counters, elapsed time.Duration) map[string]NetRate {
	if elapsed < minElapsed {
		elapsed = minElapsed
	}
	secs := elapsed.Seconds()

	rates := make(map[string]NetRate, len(current))
	for name, cur := range current {
		prev, ok := baseline[name]
		if !ok {
			continue
		}
		rates[name] = NetRate{
			Rx: rate(cur.Rx, prev.Rx, secs),
			Tx: rate(cur.Tx, prev.Tx, secs),
		}
	}
	return rates
}

func rate(cur, prev uint64, secs float64) uint64 {
	if cur < prev {
		return 0
	}
	return uint64(float64(cur-prev) / secs)
}

// assemble combines one raw sample with the derived rates into a snapshot.
// Pure and deterministic: instantaneous values pass through untouched.
func assemble(sample Sample, rates map[string]NetRate) Snapshot {
	return Snapshot{
		CPU:  sample.CPU,
		Mem:  sample.Mem,
		Swap: sample.Swap,
		Net:  rates,
		Proc: CountProcs(sample.Processes),
	}
}
