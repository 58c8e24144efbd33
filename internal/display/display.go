// Package display renders snapshots to the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/term"

	"sysmon/internal/monitor"
)

type Renderer struct {
	out   io.Writer
	isTTY bool
}

func New() *Renderer {
	return &Renderer{
		out:   os.Stdout,
		isTTY: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (r *Renderer) Render(snap monitor.Snapshot) {
	if r.isTTY {
		fmt.Fprint(r.out, "\x1b[2J\x1b[H")
	}

	fmt.Fprintln(r.out, "=== system resources ===")

	fmt.Fprintf(r.out, "cores: %d\n", len(snap.CPU))
	var sum float64
	for i, usage := range snap.CPU {
		sum += usage
		fmt.Fprintf(r.out, "  core %d: %.1f%%\n", i, usage)
	}
	if len(snap.CPU) > 0 {
		fmt.Fprintf(r.out, "cpu avg: %.1f%%\n", sum/float64(len(snap.CPU)))
	}

	fmt.Fprintf(r.out, "mem:  %s / %s (%s)\n",
		FormatBytes(snap.Mem.Used), FormatBytes(snap.Mem.Total), usedPercent(snap.Mem))
	fmt.Fprintf(r.out, "swap: %s / %s (%s)\n",
		FormatBytes(snap.Swap.Used), FormatBytes(snap.Swap.Total), usedPercent(snap.Swap))

	fmt.Fprintln(r.out, "net:")
	names := make([]string, 0, len(snap.Net))
	for name := range snap.Net {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rate := snap.Net[name]
		fmt.Fprintf(r.out, "  %s: rx %s/s, tx %s/s\n",
			name, FormatBytes(rate.Rx), FormatBytes(rate.Tx))
	}

	fmt.Fprintf(r.out, "proc: total %d, running %d, sleeping %d, zombie %d\n",
		snap.Proc.Total, snap.Proc.Running, snap.Proc.Sleeping, snap.Proc.Zombie)
}

func usedPercent(m monitor.MemStats) string {
	if m.Total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(m.Used)/float64(m.Total)*100)
}

// FormatBytes renders a byte count with a binary-step unit.
func FormatBytes(n uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, units[i])
}
