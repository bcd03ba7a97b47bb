// Package props reads the host's DMI device-property namespace as flat
// name/value string pairs.
package props

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultUdevPath is the udev database entry for the DMI id device, where
// udev's dmi_memory_id builtin exports the MEMORY_ARRAY_* and
// MEMORY_DEVICE_* properties.
const DefaultUdevPath = "/run/udev/data/+dmi:id"

// Property is a single name/value pair from a property source.
type Property struct {
	Name  string
	Value string
}

// Source yields the property namespace of the DMI device. Order and
// duplicate names are unspecified.
type Source interface {
	Properties() ([]Property, error)
}

// Collect takes a one-time snapshot of src as a name-to-value map.
// When a name repeats, the later occurrence wins.
func Collect(src Source) (map[string]string, error) {
	list, err := src.Properties()
	if err != nil {
		return nil, fmt.Errorf("read device properties: %w", err)
	}

	propmap := make(map[string]string, len(list))
	for _, p := range list {
		propmap[p.Name] = p.Value
	}
	return propmap, nil
}

// UdevSource reads properties from a udev database file. Property lines
// have the form "E:NAME=value"; everything else is skipped.
type UdevSource struct {
	// Path of the udev db entry. Empty means DefaultUdevPath.
	Path string
}

// Properties implements Source.
func (s UdevSource) Properties() ([]Property, error) {
	path := s.Path
	if path == "" {
		path = DefaultUdevPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var list []Property

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "E:")
		if !ok {
			continue
		}
		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		list = append(list, Property{Name: name, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
