package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// readCSV reads delimited text. Every column is typed by inference over its
// cells; short rows pad with nulls and long rows add generated columns.
func (l *Loader) readCSV(r io.Reader, delimiter rune) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.ReuseRecord = true

	var (
		header []string
		cells  [][]string
		valid  [][]bool
		rows   int
	)

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "malformed CSV").
				WithDetail("line", line+1)
		}
		line++

		if line == 1 && !l.cfg.NoHeader {
			header = make([]string, len(record))
			copy(header, record)
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
			cells = make([][]string, len(header))
			valid = make([][]bool, len(header))
			continue
		}

		// widen for rows longer than anything seen so far
		for len(cells) < len(record) {
			cells = append(cells, make([]string, rows))
			valid = append(valid, make([]bool, rows))
		}
		for j := range cells {
			if j < len(record) {
				cells[j] = append(cells[j], record[j])
				valid[j] = append(valid[j], !l.infer.IsNullToken(record[j]))
			} else {
				cells[j] = append(cells[j], "")
				valid[j] = append(valid[j], false)
			}
		}
		rows++
	}

	columns := make([]dataset.Column, len(cells))
	for j := range cells {
		name := columnName(header, j)
		arr, inferred, err := l.infer.TextArray(l.mem, cells[j], valid[j])
		if err != nil {
			releaseColumns(columns[:j])
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to build column").
				WithDetail("column", name)
		}
		columns[j] = dataset.NewArrowColumn(name, arr)
		arr.Release()

		l.logger.Debug("inferred CSV column",
			zap.String("column", name),
			zap.Stringer("storage", inferred.Storage),
			zap.Int("nulls", inferred.NullCount))
	}
	return dataset.New(columns...), nil
}

// columnName returns the header name, or column_N for headerless and
// overflow columns.
func columnName(header []string, j int) string {
	if j < len(header) {
		return header[j]
	}
	return fmt.Sprintf("column_%d", j+1)
}

func releaseColumns(columns []dataset.Column) {
	dataset.New(columns...).Release()
}
