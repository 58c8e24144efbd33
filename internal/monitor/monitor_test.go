package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	samples []Sample
	errs    []error
	calls   int
}

func (f *fakeSource) Refresh(ctx context.Context) (Sample, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return Sample{}, f.errs[i]
	}
	if i >= len(f.samples) {
		return f.samples[len(f.samples)-1], nil
	}
	return f.samples[i], nil
}

func netSample(net map[string]Counters) Sample {
	return Sample{
		CPU:  []float64{10, 20},
		Mem:  MemStats{Total: 8 << 30, Used: 4 << 30},
		Swap: MemStats{Total: 2 << 30, Used: 0},
		Net:  net,
	}
}

// newMonitorAt wires a monitor to a controllable clock. Each Init/Tick call
// observes the next timestamp in sequence.
func newMonitorAt(src Source, times ...time.Time) *Monitor {
	m := New(src)
	i := 0
	m.now = func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
	return m
}

func TestTickComputesRatesOverElapsedTime(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 1000, Tx: 2000}}),
		netSample(map[string]Counters{"eth0": {Rx: 1500, Tx: 2200}}),
	}}
	t0 := time.Unix(100, 0)
	m := newMonitorAt(src, t0, t0.Add(2*time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	snap, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}

	got, ok := snap.Net["eth0"]
	if !ok {
		t.Fatal("eth0 missing from snapshot")
	}
	if got.Rx != 250 || got.Tx != 100 {
		t.Errorf("got rx=%d tx=%d, want rx=250 tx=100", got.Rx, got.Tx)
	}
}

func TestFirstEmittedSnapshotHasValidRates(t *testing.T) {
	// Init consumes the zeroth reading; the very first Tick must already
	// report real rates, not placeholders.
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 0, Tx: 0}}),
		netSample(map[string]Counters{"eth0": {Rx: 4096, Tx: 1024}}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	snap, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := snap.Net["eth0"]; got.Rx != 4096 || got.Tx != 1024 {
		t.Errorf("got rx=%d tx=%d, want rx=4096 tx=1024", got.Rx, got.Tx)
	}
}

func TestRateTruncatesTowardZero(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 0, Tx: 0}}),
		netSample(map[string]Counters{"eth0": {Rx: 1001, Tx: 3}}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(2*time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	snap, _ := m.Tick(context.Background())

	if got := snap.Net["eth0"]; got.Rx != 500 || got.Tx != 1 {
		t.Errorf("got rx=%d tx=%d, want rx=500 tx=1", got.Rx, got.Tx)
	}
}

func TestNewInterfaceOmittedUntilBaselined(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 100, Tx: 100}}),
		netSample(map[string]Counters{
			"eth0":  {Rx: 200, Tx: 200},
			"wlan0": {Rx: 500, Tx: 500},
		}),
		netSample(map[string]Counters{
			"eth0":  {Rx: 300, Tx: 300},
			"wlan0": {Rx: 700, Tx: 600},
		}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(1*time.Second), t0.Add(2*time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	first, _ := m.Tick(context.Background())
	if _, ok := first.Net["wlan0"]; ok {
		t.Error("wlan0 reported on the tick it first appeared")
	}
	if _, ok := first.Net["eth0"]; !ok {
		t.Error("eth0 missing from first tick")
	}

	second, _ := m.Tick(context.Background())
	got, ok := second.Net["wlan0"]
	if !ok {
		t.Fatal("wlan0 missing one tick after appearing")
	}
	if got.Rx != 200 || got.Tx != 100 {
		t.Errorf("wlan0 rated against wrong baseline: rx=%d tx=%d, want rx=200 tx=100", got.Rx, got.Tx)
	}
}

func TestVanishedInterfaceDropped(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {}, "usb0": {Rx: 10, Tx: 10}}),
		netSample(map[string]Counters{"eth0": {Rx: 50, Tx: 50}}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	snap, _ := m.Tick(context.Background())

	if _, ok := snap.Net["usb0"]; ok {
		t.Error("vanished interface still reported")
	}
	if len(m.baseline) != 1 {
		t.Errorf("stale baseline entries: %d, want 1", len(m.baseline))
	}
}

func TestZeroElapsedClampsToEpsilon(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 0, Tx: 0}}),
		netSample(map[string]Counters{"eth0": {Rx: 1000, Tx: 500}}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0) // same instant twice

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	snap, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}

	// 1000 bytes over the 1ms floor, give or take one unit of float
	// truncation.
	got := snap.Net["eth0"]
	if got.Rx < 999_999 || got.Rx > 1_000_000 {
		t.Errorf("rx = %d, want ~1000000", got.Rx)
	}
	if got.Tx < 499_999 || got.Tx > 500_000 {
		t.Errorf("tx = %d, want ~500000", got.Tx)
	}
}

func TestNegativeElapsedClampsToEpsilon(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 0, Tx: 0}}),
		netSample(map[string]Counters{"eth0": {Rx: 100, Tx: 100}}),
	}}
	t0 := time.Unix(100, 0)
	m := newMonitorAt(src, t0, t0.Add(-time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := m.Tick(context.Background()); err != nil {
		t.Fatalf("Tick with non-monotonic clock: %v", err)
	}
}

func TestCounterRollbackClampsToZero(t *testing.T) {
	src := &fakeSource{samples: []Sample{
		netSample(map[string]Counters{"eth0": {Rx: 5000, Tx: 5000}}),
		netSample(map[string]Counters{"eth0": {Rx: 100, Tx: 8000}}),
		netSample(map[string]Counters{"eth0": {Rx: 300, Tx: 9000}}),
	}}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(1*time.Second), t0.Add(2*time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	snap, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick after counter reset: %v", err)
	}
	got := snap.Net["eth0"]
	if got.Rx != 0 {
		t.Errorf("rolled-back rx not clamped: %d", got.Rx)
	}
	if got.Tx != 3000 {
		t.Errorf("tx rate skewed by rx rollback: %d, want 3000", got.Tx)
	}

	// The reset counters became the new baseline.
	next, _ := m.Tick(context.Background())
	if got := next.Net["eth0"]; got.Rx != 200 || got.Tx != 1000 {
		t.Errorf("post-reset baseline wrong: rx=%d tx=%d, want rx=200 tx=1000", got.Rx, got.Tx)
	}
}

func TestSourceFailureSkipsTickKeepsBaseline(t *testing.T) {
	src := &fakeSource{
		samples: []Sample{
			netSample(map[string]Counters{"eth0": {Rx: 0, Tx: 0}}),
			{},
			netSample(map[string]Counters{"eth0": {Rx: 600, Tx: 300}}),
		},
		errs: []error{nil, errors.New("proc scan failed"), nil},
	}
	t0 := time.Unix(0, 0)
	m := newMonitorAt(src, t0, t0.Add(3*time.Second))

	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := m.Tick(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}

	// The next successful tick rates against the untouched baseline and
	// the full elapsed time since it.
	snap, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick after recovery: %v", err)
	}
	if got := snap.Net["eth0"]; got.Rx != 200 || got.Tx != 100 {
		t.Errorf("got rx=%d tx=%d, want rx=200 tx=100", got.Rx, got.Tx)
	}
}

func TestAssemblePassesInstantaneousValuesThrough(t *testing.T) {
	sample := Sample{
		CPU:  []float64{12.5, 88.0, 50.0},
		Mem:  MemStats{Total: 16 << 30, Used: 7 << 30},
		Swap: MemStats{Total: 4 << 30, Used: 1 << 30},
		Processes: []Status{
			StatusRunning, StatusSleeping, StatusSleeping,
			StatusZombie, StatusOther,
		},
	}
	rates := map[string]NetRate{"eth0": {Rx: 1, Tx: 2}}

	snap := assemble(sample, rates)

	if len(snap.CPU) != 3 || snap.CPU[1] != 88.0 {
		t.Errorf("cpu not passed through: %v", snap.CPU)
	}
	if snap.Mem != sample.Mem || snap.Swap != sample.Swap {
		t.Error("mem/swap not passed through")
	}
	if snap.Mem.Used > snap.Mem.Total || snap.Swap.Used > snap.Swap.Total {
		t.Error("used exceeds total")
	}
	if snap.Net["eth0"] != rates["eth0"] {
		t.Error("rates not passed through")
	}
	want := ProcStats{Total: 5, Running: 1, Sleeping: 2, Zombie: 1}
	if snap.Proc != want {
		t.Errorf("proc counts = %+v, want %+v", snap.Proc, want)
	}
}

func TestCountProcsTotalCoversOtherStates(t *testing.T) {
	stats := CountProcs([]Status{
		StatusRunning, StatusOther, StatusOther, StatusSleeping,
	})
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if sum := stats.Running + stats.Sleeping + stats.Zombie; sum > stats.Total {
		t.Errorf("subset counts %d exceed total %d", sum, stats.Total)
	}
	if stats.Running != 1 || stats.Sleeping != 1 || stats.Zombie != 0 {
		t.Errorf("unexpected counts: %+v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"R", StatusRunning},
		{"running", StatusRunning},
		{"S", StatusSleeping},
		{"sleep", StatusSleeping},
		{"sleeping", StatusSleeping},
		{"Z", StatusZombie},
		{"zombie", StatusZombie},
		{"idle", StatusOther},
		{"stop", StatusOther},
		{"D", StatusOther},
		{"", StatusOther},
	}
	for _, tc := range cases {
		if got := ParseStatus(tc.in); got != tc.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
