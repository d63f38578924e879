package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domrepo "PopPredict/internal/domain/repository"
	pkgch "PopPredict/pkg/clickhouse"
	applogger "PopPredict/pkg/logger"
)

// CHDatasets persists encoded datasets and encoding tables. Both tables are
// append-only with a built_at version column; readers always take the latest
// build, which keeps writes cheap on ClickHouse and leaves an audit trail of
// past builds.
type CHDatasets struct {
	db            *sql.DB
	datasetTable  string
	encodingTable string
	l             *applogger.Logger
	now           func() time.Time
}

func NewCHDatasets(ch *pkgch.Client, datasetTable, encodingTable string) *CHDatasets {
	return &CHDatasets{
		db:            ch.DB(),
		datasetTable:  datasetTable,
		encodingTable: encodingTable,
		now:           time.Now,
	}
}

// SetLogger injects a structured logger.
func (d *CHDatasets) SetLogger(l *applogger.Logger) { d.l = l }

// WriteDataset inserts one split's rows. Each row carries the label first and
// the 18 features as an array column.
func (d *CHDatasets) WriteDataset(ctx context.Context, split string, rows []domrepo.DatasetRow) error {
	if len(rows) == 0 {
		return nil
	}
	builtAt := d.now()

	const chunkSize = 2000
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for i, row := range rows[start:end] {
			if len(row) < 2 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, split, uint32(start+i), row[0], []float64(row[1:]), builtAt)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (split, row_index, label, features, built_at) VALUES %s",
			d.datasetTable, strings.Join(values, ","))
		if _, err := d.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("write dataset %s: %w", split, err)
		}
	}

	if d.l != nil {
		d.l.Info("dataset split written",
			applogger.String("split", split),
			applogger.Int("rows", len(rows)))
	}
	return nil
}

// WriteEncodingTable persists one categorical field's value→code mapping.
func (d *CHDatasets) WriteEncodingTable(ctx context.Context, field string, codes map[string]int) error {
	if len(codes) == 0 {
		return nil
	}
	builtAt := d.now()

	values := make([]string, 0, len(codes))
	args := make([]interface{}, 0, len(codes)*4)
	for value, code := range codes {
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, field, value, int32(code), builtAt)
	}
	q := fmt.Sprintf("INSERT INTO %s (field, value, code, built_at) VALUES %s",
		d.encodingTable, strings.Join(values, ","))
	if _, err := d.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("write encoding table %s: %w", field, err)
	}
	return nil
}

// ReadEncodingTable loads the latest build of one field's mapping. An empty
// map (no build yet) is not an error; the encoder falls back to default codes.
func (d *CHDatasets) ReadEncodingTable(ctx context.Context, field string) (map[string]int, error) {
	q := fmt.Sprintf(`
        SELECT value, code
        FROM %s
        WHERE field = ? AND built_at = (SELECT max(built_at) FROM %s WHERE field = ?)
    `, d.encodingTable, d.encodingTable)
	rows, err := d.db.QueryContext(ctx, q, field, field)
	if err != nil {
		if d.l != nil {
			d.l.Error("clickhouse read_encoding_table error",
				applogger.String("field", field), applogger.Error(err))
		}
		return nil, fmt.Errorf("read encoding table %s: %w", field, err)
	}
	defer rows.Close()

	out := make(map[string]int, 256)
	for rows.Next() {
		var (
			value string
			code  int32
		)
		if err := rows.Scan(&value, &code); err != nil {
			return nil, fmt.Errorf("scan encoding row: %w", err)
		}
		out[value] = int(code)
	}
	return out, rows.Err()
}

var _ domrepo.Datasets = (*CHDatasets)(nil)
