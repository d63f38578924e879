package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	pkgch "PopPredict/pkg/clickhouse"
	applogger "PopPredict/pkg/logger"
	"PopPredict/pkg/util"
)

// CHSales implements Sales backed by the append-only sale_records table.
type CHSales struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSales(ch *pkgch.Client, table string) *CHSales {
	return &CHSales{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSales) SetLogger(l *applogger.Logger) { s.l = l }

// RecentSales returns the last `limit` records for one item, oldest first.
func (s *CHSales) RecentSales(ctx context.Context, itemID string, limit int) ([]models.SaleRecord, error) {
	// Fetch newest-first for the LIMIT, then flip back to chronological order
	// for the rolling windows.
	q := fmt.Sprintf(`
        SELECT item_id, price, marketplace, condition, sold_at
        FROM %s
        WHERE item_id = ?
        ORDER BY sold_at DESC
        LIMIT ?
    `, s.table)
	records, err := s.query(ctx, q, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	reverse(records)
	return records, nil
}

// SalesSince returns records newer than `days` ago, oldest first.
func (s *CHSales) SalesSince(ctx context.Context, itemID string, days int) ([]models.SaleRecord, error) {
	q := fmt.Sprintf(`
        SELECT item_id, price, marketplace, condition, sold_at
        FROM %s
        WHERE item_id = ? AND sold_at >= ?
        ORDER BY sold_at ASC
    `, s.table)
	cutoff := util.DaysAgo(time.Now(), days)
	records, err := s.query(ctx, q, itemID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("sales since: %w", err)
	}
	return records, nil
}

// ListSales streams the full table ordered by (item_id, sold_at) for training.
func (s *CHSales) ListSales(ctx context.Context) ([]models.SaleRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT item_id, price, marketplace, condition, sold_at
        FROM %s
        ORDER BY item_id ASC, sold_at ASC
    `, s.table)
	records, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse list_sales ok",
			applogger.Int("rows", len(records)),
			applogger.Duration("duration_ms", time.Since(start)))
	}
	return records, nil
}

func (s *CHSales) query(ctx context.Context, q string, args ...interface{}) ([]models.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse sales query error", applogger.Error(err))
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SaleRecord, 0, 256)
	for rows.Next() {
		var (
			rec         models.SaleRecord
			marketplace string
			condition   string
		)
		if err := rows.Scan(&rec.ItemID, &rec.Price, &marketplace, &condition, &rec.SoldAt); err != nil {
			return nil, fmt.Errorf("scan sale record: %w", err)
		}
		rec.Marketplace = models.Marketplace(marketplace)
		rec.Condition = models.Condition(condition)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func reverse(records []models.SaleRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

var _ domrepo.Sales = (*CHSales)(nil)
