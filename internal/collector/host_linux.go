package collector

import "golang.org/x/sys/unix"

// hostInfo returns the kernel release and machine architecture.
func hostInfo() (kernel, arch string) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", ""
	}
	return unix.ByteSliceToString(uts.Release[:]), unix.ByteSliceToString(uts.Machine[:])
}
