package source

import (
	"bytes"
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/mmap"
)

// readIPC reads an Arrow IPC file. Streams written without the file footer
// are accepted too.
func (l *Loader) readIPC(r io.Reader) (*dataset.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Arrow data")
	}

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()

	var sc *arrow.Schema
	if fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(l.mem)); err == nil {
		defer fr.Close()
		sc = fr.Schema()
		for i := 0; i < fr.NumRecords(); i++ {
			rec, err := fr.Record(i)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Arrow record batch").
					WithDetail("batch", i)
			}
			rec.Retain()
			records = append(records, rec)
		}
	} else {
		sr, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(l.mem))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid Arrow IPC data")
		}
		defer sr.Release()
		sc = sr.Schema()
		for sr.Next() {
			rec := sr.Record()
			rec.Retain()
			records = append(records, rec)
		}
		if err := sr.Err(); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Arrow stream")
		}
	}

	tbl := array.NewTableFromRecords(sc, records)
	defer tbl.Release()
	return dataset.FromTable(tbl), nil
}

// readParquet reads a Parquet file through pqarrow.
func (l *Loader) readParquet(r io.Reader) (*dataset.Dataset, error) {
	// Parquet needs random access to the footer
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Parquet data")
	}
	return l.parquetBytes(data)
}

// parquetBytes decodes a Parquet file held in memory. Decoded columns own
// their buffers, so data may be released afterwards.
func (l *Loader) parquetBytes(data []byte) (*dataset.Dataset, error) {
	fr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create Parquet reader")
	}
	defer fr.Close()

	arrowReader, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{}, l.mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create Arrow reader")
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Parquet table")
	}
	defer tbl.Release()
	return dataset.FromTable(tbl), nil
}

// mapParquet reads an uncompressed local Parquet file through a memory
// mapping instead of copying it onto the heap.
func (l *Loader) mapParquet(path string) (*dataset.Dataset, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return l.parquetBytes(m.Bytes())
}
