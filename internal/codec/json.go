// Package codec fixes the wire and storage encoding of snapshots in one
// place so the store, the sender and the CLI all agree on it.
package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-tangra/go-tangra-memdev/internal/collector"
)

// MarshalSnapshot encodes a snapshot for storage and transfer.
func MarshalSnapshot(snap *collector.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a stored or received snapshot.
func UnmarshalSnapshot(data []byte) (*collector.Snapshot, error) {
	var snap collector.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// WriteSnapshot writes the snapshot to w indented, for human-facing
// output such as the CLI.
func WriteSnapshot(w io.Writer, snap *collector.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
