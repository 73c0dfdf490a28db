// Package dataset is the tabular container the profiler reads from.
//
// A Dataset is an ordered list of named columns. Columns are usually backed
// by Apache Arrow arrays (built by the loaders in pkg/source or taken from an
// existing arrow.Record or arrow.Table); heterogeneous inputs that Arrow
// cannot type use plain Go value columns instead. The package also provides
// the aggregate primitives the summarizers compose: null and distinct
// counting, numeric samples with quantiles, and temporal extraction.
package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Dataset is an ordered collection of columns. It is treated as an immutable
// snapshot once built.
type Dataset struct {
	columns []Column
}

// New builds a dataset from columns in the given order.
func New(columns ...Column) *Dataset {
	return &Dataset{columns: columns}
}

// FromRecord wraps every column of an Arrow record.
func FromRecord(rec arrow.Record) *Dataset {
	columns := make([]Column, 0, rec.NumCols())
	for i := 0; i < int(rec.NumCols()); i++ {
		columns = append(columns, NewArrowColumn(rec.ColumnName(i), rec.Column(i)))
	}
	return New(columns...)
}

// FromTable wraps every column of an Arrow table, keeping its chunks.
func FromTable(tbl arrow.Table) *Dataset {
	columns := make([]Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		col := tbl.Column(i)
		columns = append(columns, NewArrowColumn(col.Name(), col.Data().Chunks()...))
	}
	return New(columns...)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Column returns column i.
func (d *Dataset) Column(i int) Column { return d.columns[i] }

// Columns returns the columns in order.
func (d *Dataset) Columns() []Column { return d.columns }

// ColumnByName returns the first column with the given name.
func (d *Dataset) ColumnByName(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name()
	}
	return names
}

// NumRows returns the length of the longest column.
func (d *Dataset) NumRows() int {
	n := 0
	for _, c := range d.columns {
		if c.Len() > n {
			n = c.Len()
		}
	}
	return n
}

// Release drops the references held on Arrow arrays.
func (d *Dataset) Release() {
	for _, c := range d.columns {
		if ac, ok := c.(*arrowColumn); ok {
			ac.release()
		}
	}
}
