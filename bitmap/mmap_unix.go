//go:build linux || darwin

package bitmap

import (
	"os"

	"golang.org/x/sys/unix"
)

const protReadWrite = unix.PROT_READ | unix.PROT_WRITE

func mapAnonymous(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, protReadWrite, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	adviseWillNeed(data)
	return data, nil
}

func mapFile(f *os.File, size int, private bool) ([]byte, error) {
	flags := unix.MAP_SHARED
	if private {
		flags = unix.MAP_PRIVATE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, protReadWrite, flags)
	if err != nil {
		return nil, err
	}
	adviseWillNeed(data)
	return data, nil
}

// adviseWillNeed faults the region in ahead of use. Failure only costs
// latency, so it is not reported.
func adviseWillNeed(data []byte) {
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}

func syncRegion(data []byte, async bool) error {
	flags := unix.MS_SYNC
	if async {
		flags = unix.MS_ASYNC
	}
	return unix.Msync(data, flags)
}

func unmap(data []byte) error {
	return unix.Munmap(data)
}
