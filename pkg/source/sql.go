package source

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

var driverAliases = map[string]string{
	"pgx":        "pgx",
	"postgres":   "pgx",
	"postgresql": "pgx",
	"mysql":      "mysql",
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
	"snowflake":  "snowflake",
}

// DriverName resolves a configured driver to the registered database/sql
// driver.
func DriverName(driver string) (string, error) {
	if name, ok := driverAliases[strings.ToLower(driver)]; ok {
		return name, nil
	}
	return "", errors.Newf(errors.ErrorTypeCapability, "unsupported SQL driver %q", driver)
}

func (l *Loader) loadSQL(ctx context.Context) (*dataset.Dataset, error) {
	driver, err := DriverName(l.cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, l.cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to open database").
			WithDetail("driver", driver)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to database").
			WithDetail("driver", driver)
	}

	l.logger.Debug("running query", zap.String("driver", driver), zap.Int64("limit", l.cfg.Limit))
	return l.queryDataset(ctx, db, l.cfg.Query)
}

// queryDataset runs query and pivots the result set into columns.
func (l *Loader) queryDataset(ctx context.Context, db *sql.DB, query string) (*dataset.Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read result columns")
	}

	values := make([][]interface{}, len(types))
	scan := make([]interface{}, len(types))
	for n := int64(0); rows.Next(); n++ {
		if l.cfg.Limit > 0 && n >= l.cfg.Limit {
			break
		}
		cells := make([]interface{}, len(types))
		for j := range cells {
			scan[j] = &cells[j]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to scan row").
				WithDetail("row", n+1)
		}
		for j, v := range cells {
			// drivers may reuse byte buffers between rows
			if b, ok := v.([]byte); ok {
				v = append([]byte(nil), b...)
			}
			values[j] = append(values[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to iterate rows")
	}

	columns := make([]dataset.Column, len(types))
	for j, ct := range types {
		col, err := l.infer.Column(l.mem, ct.Name(), values[j], !isTextType(ct.DatabaseTypeName()))
		if err != nil {
			releaseColumns(columns[:j])
			return nil, err
		}
		columns[j] = col
	}
	return dataset.New(columns...), nil
}

// isTextType reports whether a database type holds free text, whose cells
// must stay strings even when they look like numbers.
func isTextType(name string) bool {
	name = strings.ToUpper(name)
	for _, marker := range []string{"CHAR", "TEXT", "STRING", "CLOB", "UUID", "ENUM", "JSON", "NAME"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
