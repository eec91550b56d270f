//go:build linux || freebsd || darwin

package arena

import (
	"golang.org/x/sys/unix"
)

// mapSlab reserves size bytes of anonymous memory outside the Go heap.
func mapSlab(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
}

// unmapSlab returns a slab obtained from mapSlab to the kernel.
func unmapSlab(slab []byte) error {
	return unix.Munmap(slab)
}
