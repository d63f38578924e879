package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	pkgch "PopPredict/pkg/clickhouse"
	applogger "PopPredict/pkg/logger"
)

const itemColumns = "id, name, series, character, funko_number, release_date, is_chase, is_exclusive, is_vaulted, estimated_value, rarity"

// CHCatalog implements Catalog backed by the ClickHouse items table. The
// catalog is written by an external process; this side only reads.
type CHCatalog struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCatalog(ch *pkgch.Client, table string) *CHCatalog {
	return &CHCatalog{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (c *CHCatalog) SetLogger(l *applogger.Logger) { c.l = l }

func (c *CHCatalog) GetItem(ctx context.Context, id string) (models.Item, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", itemColumns, c.table)
	row := c.db.QueryRowContext(ctx, q, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, models.ErrItemNotFound
		}
		if c.l != nil {
			c.l.Error("clickhouse get_item error", applogger.String("id", id), applogger.Error(err))
		}
		return models.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (c *CHCatalog) ListItems(ctx context.Context) ([]models.Item, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", itemColumns, c.table)
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		if c.l != nil {
			c.l.Error("clickhouse list_items error", applogger.Error(err))
		}
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]models.Item, 0, 1024)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (c *CHCatalog) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(r rowScanner) (models.Item, error) {
	var (
		item      models.Item
		release   time.Time
		chase     uint8
		exclusive uint8
		vaulted   uint8
		estimated sql.NullFloat64
	)
	err := r.Scan(&item.ID, &item.Name, &item.Series, &item.Character, &item.FunkoNumber,
		&release, &chase, &exclusive, &vaulted, &estimated, &item.Rarity)
	if err != nil {
		return models.Item{}, err
	}
	item.ReleaseDate = release
	item.IsChase = chase != 0
	item.IsExclusive = exclusive != 0
	item.IsVaulted = vaulted != 0
	if estimated.Valid {
		v := estimated.Float64
		item.EstimatedValue = &v
	}
	return item, nil
}

var _ domrepo.Catalog = (*CHCatalog)(nil)
