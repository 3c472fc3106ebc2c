//go:build !linux && !darwin

package bitmap

import "os"

// Platforms without the unix mapping calls get heap backed anonymous regions
// and no file backing.

func mapAnonymous(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func mapFile(f *os.File, size int, private bool) ([]byte, error) {
	return nil, ErrMmapUnsupported
}

func syncRegion(data []byte, async bool) error { return nil }

func unmap(data []byte) error { return nil }
