package memory

import (
	"fmt"
	"strings"
)

// AvgFrequency returns the truncating mean of the configured speeds of
// the devices that report one. Zero means no device carries a frequency;
// it is a sentinel, not an error.
func (m *Memory) AvgFrequency() uint64 {
	var sum, count uint64
	for _, dev := range m.Devices {
		if dev.Frequency != nil {
			sum += *dev.Frequency
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// MemTypes returns each distinct memory type in the inventory, rendered
// for display. Order is unspecified.
func (m *Memory) MemTypes() []string {
	return m.distinct(func(dev MemDevice) (string, bool) {
		return dev.MemType.String(), true
	})
}

// FormFactors returns each distinct form factor, skipping devices that
// report none. Order is unspecified.
func (m *Memory) FormFactors() []string {
	return m.distinct(func(dev MemDevice) (string, bool) {
		if dev.FormFactor == nil {
			return "", false
		}
		return *dev.FormFactor, true
	})
}

func (m *Memory) distinct(value func(MemDevice) (string, bool)) []string {
	seen := make(map[string]struct{})

	var list []string
	for _, dev := range m.Devices {
		v, ok := value(dev)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		list = append(list, v)
	}
	return list
}

// DisplayUnit composes the human-readable summary line, e.g.
//
//	8.00GB / 16.00GB DDR5 (SODIMM) @ 4800 MHz
//
// Used and total come from the caller. Each optional segment is omitted
// entirely when its source is empty or zero.
func (m *Memory) DisplayUnit(used, total float64, unit string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%.2f%s / %.2f%s", used, unit, total, unit)

	if types := m.MemTypes(); len(types) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(types, ", "))
	}

	if factors := m.FormFactors(); len(factors) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(factors, ", "))
	}

	if avg := m.AvgFrequency(); avg != 0 {
		fmt.Fprintf(&b, " @ %d MHz", avg)
	}

	return b.String()
}
