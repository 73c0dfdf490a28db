// Package compression opens compressed input streams and compresses report
// output.
//
// # Overview
//
// Inputs are decompressed transparently based on their file extension
// (.gz, .zst, .lz4, .sz, .s2, .deflate). Reports can be written through any
// of the same algorithms.
//
// # Basic Usage
//
//	alg, inner := compression.DetectAlgorithm("people.csv.gz") // Gzip, "people.csv"
//	r, err := compression.NewReader(f, alg)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	w, err := compression.NewWriter(out, compression.Zstd, compression.Default)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
// # Algorithm Selection
//
//   - Snappy/S2: fast, moderate ratio
//   - LZ4: fastest, decent ratio
//   - Zstd: best ratio with good speed
//   - Gzip/Deflate: widest compatibility
package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":      Gzip,
	".gzip":    Gzip,
	".zst":     Zstd,
	".zstd":    Zstd,
	".lz4":     LZ4,
	".sz":      Snappy,
	".snappy":  Snappy,
	".s2":      S2,
	".deflate": Deflate,
}

// unsupported extensions are rejected rather than read as plain data
var unsupported = map[string]string{
	".bz2": "bzip2",
	".xz":  "xz",
	".zip": "zip",
}

// Algorithms lists the supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}
}

// ParseAlgorithm parses an algorithm name. The empty string is None.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return None, nil
	}
	for _, alg := range Algorithms() {
		if strings.EqualFold(name, string(alg)) {
			return alg, nil
		}
	}
	return None, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", name)
}

// DetectAlgorithm picks the algorithm from the file extension and returns
// the path without that extension. Paths without a known extension are
// uncompressed.
func DetectAlgorithm(path string) (Algorithm, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := extensions[ext]; ok {
		return alg, path[:len(path)-len(ext)]
	}
	return None, path
}

// CheckSupported rejects paths whose extension names a compression format
// that cannot be read.
func CheckSupported(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := unsupported[ext]; ok {
		return errors.Newf(errors.ErrorTypeCapability, "%s compressed input is not supported", name).
			WithDetail("path", path)
	}
	return nil
}

var canonical = map[Algorithm]string{
	Gzip:    ".gz",
	Zstd:    ".zst",
	LZ4:     ".lz4",
	Snappy:  ".sz",
	S2:      ".s2",
	Deflate: ".deflate",
}

// Extension returns the conventional file extension for an algorithm, empty
// for None.
func Extension(alg Algorithm) string {
	return canonical[alg]
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func nopClose() error { return nil }

// NewReader wraps r so that reads return decompressed data. Closing the
// returned reader releases decoder resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid gzip stream")
		}
		return gr, nil
	case Snappy:
		return readCloser{Reader: snappy.NewReader(r), close: nopClose}, nil
	case LZ4:
		return readCloser{Reader: lz4.NewReader(r), close: nopClose}, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid zstd stream")
		}
		return dec.IOReadCloser(), nil
	case S2:
		return readCloser{Reader: s2.NewReader(r), close: nopClose}, nil
	case Deflate:
		return flate.NewReader(r), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", alg)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w so that writes are compressed. Close flushes the
// compressed stream but does not close w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriterLevel(w, mapGzipLevel(level))
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid lz4 level")
		}
		return lw, nil
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
	case S2:
		return s2.NewWriter(w), nil
	case Deflate:
		return flate.NewWriter(w, mapDeflateLevel(level))
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", alg)
	}
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
