//go:build !linux && !darwin
// +build !linux,!darwin

package mmap

import (
	"io"
	"os"
)

// Without mmap the file is read into memory.
func mmap(f *os.File, length int) ([]byte, error) {
	data := make([]byte, length)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func munmap(b []byte) error { return nil }

func madvise(b []byte, advice int) error { return nil }

const (
	MadvSequential = 2 //nolint:stylecheck
	MadvWillneed   = 3 //nolint:stylecheck
)
