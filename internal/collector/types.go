package collector

import (
	"time"

	"github.com/go-tangra/go-tangra-memdev/internal/memory"
)

// Snapshot holds one host's memory inventory plus the context it was
// taken in.
type Snapshot struct {
	CollectedAt time.Time      `json:"collected_at"`
	Hostname    string         `json:"hostname"`
	Kernel      string         `json:"kernel,omitempty"`
	Arch        string         `json:"arch,omitempty"`
	Source      string         `json:"source"`
	Usage       UsageInfo      `json:"usage"`
	Memory      *memory.Memory `json:"memory"`
	Summary     string         `json:"summary"`
}

// UsageInfo holds the host's RAM usage at collection time.
type UsageInfo struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	TotalGB    float64 `json:"total_gb"`
	UsedGB     float64 `json:"used_gb"`
}
