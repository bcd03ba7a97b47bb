// Package collector assembles memory-inventory snapshots of the local host.
package collector

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/go-tangra/go-tangra-memdev/internal/memory"
	"github.com/go-tangra/go-tangra-memdev/internal/props"
)

const bytesPerGB = 1024 * 1024 * 1024

// Collect takes a property snapshot from src and wraps the resulting
// inventory with host metadata, RAM usage, and the summary line.
// sourceName labels which property source produced the snapshot.
func Collect(src props.Source, sourceName string) (*Snapshot, error) {
	hostname, _ := os.Hostname()

	snap := &Snapshot{
		CollectedAt: time.Now().UTC(),
		Hostname:    hostname,
		Source:      sourceName,
	}
	snap.Kernel, snap.Arch = hostInfo()

	inv, err := memory.New(src)
	if err != nil {
		return nil, fmt.Errorf("memory inventory: %w", err)
	}
	snap.Memory = inv

	// Usage is best effort; a summary without the used/total figures is
	// still worth returning.
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.Usage = UsageInfo{
			TotalBytes: vm.Total,
			UsedBytes:  vm.Used,
			TotalGB:    float64(vm.Total) / bytesPerGB,
			UsedGB:     float64(vm.Used) / bytesPerGB,
		}
	}
	snap.Summary = inv.DisplayUnit(snap.Usage.UsedGB, snap.Usage.TotalGB, "GB")

	return snap, nil
}
