// Package mmap maps local files read-only into memory so random-access
// readers such as Parquet can seek without a full copy.
package mmap

import (
	"io"
	"os"
	"sync"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// File is a read-only mapping of a whole file.
type File struct {
	file *os.File
	data []byte

	mu     sync.Mutex
	closed bool
}

// Open maps path. Empty files cannot be mapped and are reported as data
// errors.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
			WithDetail("path", path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").
			WithDetail("path", path)
	}
	if stat.Size() == 0 {
		f.Close()
		return nil, errors.New(errors.ErrorTypeData, "file is empty").
			WithDetail("path", path)
	}

	data, err := mmap(f, int(stat.Size()))
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to mmap file").
			WithDetail("path", path)
	}
	// advisory only
	_ = madvise(data, MadvSequential)

	return &File{file: f, data: data}, nil
}

// Bytes returns the mapped contents. They are invalid after Close.
func (m *File) Bytes() []byte { return m.data }

// Size returns the file size in bytes.
func (m *File) Size() int64 { return int64(len(m.data)) }

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Newf(errors.ErrorTypeValidation, "negative offset %d", off)
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. It is safe to call more than once.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to unmap file")
	}
	return nil
}
