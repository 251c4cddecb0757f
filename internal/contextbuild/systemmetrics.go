package contextbuild

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ftahirops/swiftsweep/internal/model"
	"golang.org/x/sys/unix"
)

// SystemMetricsCollector populates model.SystemMetrics. Disk usage comes
// from a direct unix.Statfs syscall (grounded on golang.org/x/sys/unix,
// already a pack dependency); CPU and memory usage are read from the same
// BSD tools the teacher reads procfs counters from, since no library in the
// example pack wraps macOS's host_statistics Mach APIs.
type SystemMetricsCollector struct {
	// WatchPath is the filesystem root whose usage represents "disk usage",
	// typically the user's home volume.
	WatchPath string
}

func (c *SystemMetricsCollector) Name() string { return "system_metrics" }

func (c *SystemMetricsCollector) Collect(ctx context.Context, out *model.RecommendationContext) error {
	m := &model.SystemMetrics{}

	if err := statDisk(c.WatchPath, m); err != nil {
		return fmt.Errorf("disk stats: %w", err)
	}
	if err := statMemory(ctx, m); err != nil {
		return fmt.Errorf("memory stats: %w", err)
	}
	if err := statCPU(ctx, m); err != nil {
		return fmt.Errorf("cpu stats: %w", err)
	}

	out.SystemMetrics = m
	return nil
}

func statDisk(path string, m *model.SystemMetrics) error {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return err
	}
	total := st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	m.DiskTotalBytes = total
	m.DiskFreeBytes = free
	if total > 0 {
		m.DiskUsageFraction = 1.0 - float64(free)/float64(total)
	}
	return nil
}

// statMemory shells out to vm_stat, the same key: value counter format the
// teacher's procfs readers parse, and combines it with hw.memsize from
// sysctl for the total.
func statMemory(ctx context.Context, m *model.SystemMetrics) error {
	total, err := sysctlUint64("hw.memsize")
	if err != nil {
		return err
	}
	m.MemoryTotalBytes = total

	out, err := exec.CommandContext(ctx, "vm_stat").Output()
	if err != nil {
		// vm_stat is macOS-only and absent in some sandboxes/CI; degrade to
		// "total known, usage unknown" rather than failing the whole scan.
		return nil
	}

	pageSize := uint64(4096)
	free, active, inactive, wired, speculative := uint64(0), uint64(0), uint64(0), uint64(0), uint64(0)
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Mach Virtual Memory Statistics") {
			continue
		}
		if strings.Contains(line, "page size of") {
			fields := strings.Fields(line)
			for i, f := range fields {
				if f == "of" && i+1 < len(fields) {
					if v, err := strconv.ParseUint(fields[i+1], 10, 64); err == nil {
						pageSize = v
					}
				}
			}
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		valStr := strings.TrimRight(strings.TrimSpace(parts[1]), ".")
		val, err := strconv.ParseUint(valStr, 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "Pages free":
			free = val
		case "Pages active":
			active = val
		case "Pages inactive":
			inactive = val
		case "Pages wired down":
			wired = val
		case "Pages speculative":
			speculative = val
		}
	}

	usedPages := active + inactive + wired
	_ = speculative
	usedBytes := usedPages * pageSize
	m.MemoryUsedBytes = usedBytes
	if m.MemoryTotalBytes > 0 {
		m.MemoryUsageFraction = float64(usedBytes) / float64(m.MemoryTotalBytes)
		if m.MemoryUsageFraction > 1 {
			m.MemoryUsageFraction = 1
		}
	}
	_ = free
	return nil
}

// statCPU approximates CPU usage fraction from the 1-minute load average
// divided by core count, clamped to [0,1]. This mirrors the teacher's
// CPUPct-from-deltas heuristic in shape (a ratio of a live counter against a
// capacity) without depending on a counter macOS does not expose via sysctl.
func statCPU(ctx context.Context, m *model.SystemMetrics) error {
	ncpu, err := sysctlUint64("hw.ncpu")
	if err != nil || ncpu == 0 {
		ncpu = 1
	}

	out, err := exec.CommandContext(ctx, "sysctl", "-n", "vm.loadavg").Output()
	if err != nil {
		return nil
	}
	fields := strings.Fields(strings.Trim(strings.TrimSpace(string(out)), "{}"))
	if len(fields) == 0 {
		return nil
	}
	load1, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	frac := load1 / float64(ncpu)
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	m.CPUUsageFraction = frac
	return nil
}

func sysctlUint64(name string) (uint64, error) {
	v, err := unix.SysctlUint64(name)
	if err != nil {
		return 0, err
	}
	return v, nil
}
