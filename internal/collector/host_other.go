//go:build !linux

package collector

// hostInfo is a no-op on platforms without the DMI property sources.
func hostInfo() (kernel, arch string) {
	return "", ""
}
