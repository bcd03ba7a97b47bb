// Package memory builds a typed per-DIMM inventory from the flat DMI
// property namespace.
package memory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-tangra/go-tangra-memdev/internal/props"
)

// Property names within one device's slot-prefixed group.
const (
	manufacturerKey = "MANUFACTURER"
	speedKey        = "CONFIGURED_SPEED_MTS"
	formFactorKey   = "FORM_FACTOR"
	typeKey         = "TYPE"
)

const (
	devicePrefix   = "MEMORY_DEVICE_"
	deviceCountKey = "MEMORY_ARRAY_NUM_DEVICES"
)

// ErrDeviceCountMissing is returned when the property snapshot carries no
// device-count entry. Without it there is no authoritative slot count, so
// no inventory can be built.
var ErrDeviceCountMissing = errors.New("memory device count property not found")

// Memory is the whole-host DIMM inventory. It is built once from a single
// property snapshot and never mutated afterwards.
type Memory struct {
	Devices []MemDevice `json:"devices"`
}

// MemDevice describes one physical memory slot. Pointer fields are nil
// when the backing property is absent (or, for Frequency, unparseable).
type MemDevice struct {
	Manufacturer *string           `json:"manufacturer,omitempty"`
	Frequency    *uint64           `json:"frequency,omitempty"`
	FormFactor   *string           `json:"form_factor,omitempty"`
	MemType      MemType           `json:"mem_type"`
	ExtraProps   map[string]string `json:"extra_props"`
}

// New takes a property snapshot from src and builds the inventory.
func New(src props.Source) (*Memory, error) {
	propmap, err := props.Collect(src)
	if err != nil {
		return nil, err
	}

	return FromProperties(propmap)
}

// FromProperties builds the inventory from an already-collected property
// map. The map is not modified.
func FromProperties(propmap map[string]string) (*Memory, error) {
	count, err := deviceCount(propmap)
	if err != nil {
		return nil, err
	}

	devices := make([]MemDevice, 0, count)
	for i := 0; i < count; i++ {
		devices = append(devices, newDevice(deviceProperties(propmap, i)))
	}

	return &Memory{Devices: devices}, nil
}

// deviceCount resolves the authoritative slot count. The count key is
// matched exactly first; some property tables decorate the name, so a
// substring scan serves as a compatibility fallback.
func deviceCount(propmap map[string]string) (int, error) {
	raw, ok := propmap[deviceCountKey]
	if !ok {
		for name, value := range propmap {
			if strings.Contains(name, deviceCountKey) {
				raw, ok = value, true
				break
			}
		}
	}
	if !ok {
		return 0, ErrDeviceCountMissing
	}

	count, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", deviceCountKey, err)
	}

	return int(count), nil
}

// deviceProperties extracts the slot-index-i subset of the snapshot with
// the slot prefix stripped. Keys matching no slot prefix are ignored; an
// index with no matching keys yields an empty map, not an error.
func deviceProperties(propmap map[string]string, index int) map[string]string {
	prefix := devicePrefix + strconv.Itoa(index) + "_"

	slot := make(map[string]string)
	for key, value := range propmap {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			slot[name] = value
		}
	}
	return slot
}

// newDevice lifts the named fields out of one per-slot map; whatever is
// left over stays as extra properties. The extraction order fixes what
// remains in ExtraProps. Pure and total: malformed input degrades to
// nil/Unknown, never an error.
func newDevice(slot map[string]string) MemDevice {
	var dev MemDevice

	if v, ok := slot[manufacturerKey]; ok {
		delete(slot, manufacturerKey)
		dev.Manufacturer = &v
	}

	if v, ok := slot[speedKey]; ok {
		delete(slot, speedKey)
		// A garbled speed value degrades to "no frequency"; only the
		// device count is allowed to fail parsing fatally.
		if mts, err := strconv.ParseUint(v, 10, 64); err == nil {
			dev.Frequency = &mts
		}
	}

	if v, ok := slot[formFactorKey]; ok {
		delete(slot, formFactorKey)
		dev.FormFactor = &v
	}

	if v, ok := slot[typeKey]; ok {
		delete(slot, typeKey)
		dev.MemType = ClassifyMemType(v)
	} else {
		dev.MemType = MemType{Kind: MemTypeUnknown}
	}

	dev.ExtraProps = slot
	return dev
}
