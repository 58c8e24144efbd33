package display

import (
	"bytes"
	"strings"
	"testing"

	"sysmon/internal/monitor"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{5 << 30, "5.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1.00 PB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{out: &buf}

	r.Render(monitor.Snapshot{
		CPU:  []float64{10.0, 30.0},
		Mem:  monitor.MemStats{Total: 2 << 30, Used: 1 << 30},
		Swap: monitor.MemStats{Total: 1 << 30, Used: 0},
		Net: map[string]monitor.NetRate{
			"wlan0": {Rx: 2048, Tx: 1024},
			"eth0":  {Rx: 250, Tx: 100},
		},
		Proc: monitor.ProcStats{Total: 120, Running: 2, Sleeping: 110, Zombie: 1},
	})

	out := buf.String()
	for _, want := range []string{
		"cores: 2",
		"cpu avg: 20.0%",
		"mem:  1.00 GB / 2.00 GB (50.0%)",
		"eth0: rx 250.00 B/s, tx 100.00 B/s",
		"proc: total 120, running 2, sleeping 110, zombie 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// Interfaces render in stable order.
	if strings.Index(out, "eth0") > strings.Index(out, "wlan0") {
		t.Error("interfaces not sorted")
	}

	// No ANSI clear when not attached to a TTY.
	if strings.Contains(out, "\x1b[2J") {
		t.Error("screen clear emitted without a TTY")
	}
}

func TestRenderZeroTotals(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{out: &buf}

	r.Render(monitor.Snapshot{Swap: monitor.MemStats{}})

	if !strings.Contains(buf.String(), "n/a") {
		t.Error("zero-total swap should render n/a, not divide")
	}
}
