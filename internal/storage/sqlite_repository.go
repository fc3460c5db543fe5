package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) RecordDelivery(ctx context.Context, in Delivery) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO deliveries (id, reminder_id, name_to_call, phone_number, description, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.ReminderID, in.NameToCall, in.PhoneNumber, in.Description, mustTime(in.DeliveredAt),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SQLiteRepository) GetDelivery(ctx context.Context, reminderID string) (Delivery, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, reminder_id, name_to_call, phone_number, description, delivered_at
		FROM deliveries WHERE reminder_id = ?`, reminderID)
	item, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Delivery{}, ErrNotFound
		}
		return Delivery{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) ListDeliveries(ctx context.Context, filter DeliveryListFilter) ([]Delivery, error) {
	query := `SELECT id, reminder_id, name_to_call, phone_number, description, delivered_at
		FROM deliveries ORDER BY delivered_at DESC`
	args := make([]any, 0, 2)
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Delivery, 0)
	for rows.Next() {
		item, scanErr := scanDelivery(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) PruneDeliveries(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE delivered_at < ?`, mustTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) ReplaceReminderCache(ctx context.Context, reminders []CachedReminder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_cache`); err != nil {
		return err
	}
	for _, item := range reminders {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reminder_cache (id, name_to_call, phone_number, description, date_time, status, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.NameToCall, item.PhoneNumber, item.Description,
			mustTime(item.DateTime), item.Status, mustTime(item.CachedAt),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListCachedReminders(ctx context.Context) ([]CachedReminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name_to_call, phone_number, description, date_time, status, cached_at
		FROM reminder_cache ORDER BY date_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CachedReminder, 0)
	for rows.Next() {
		item, scanErr := scanCachedReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(s scanner) (Delivery, error) {
	var out Delivery
	var delivered string
	if err := s.Scan(&out.ID, &out.ReminderID, &out.NameToCall, &out.PhoneNumber, &out.Description, &delivered); err != nil {
		return Delivery{}, err
	}
	deliveredAt, err := parseRequiredTime(delivered)
	if err != nil {
		return Delivery{}, err
	}
	out.DeliveredAt = deliveredAt
	return out, nil
}

func scanCachedReminder(s scanner) (CachedReminder, error) {
	var out CachedReminder
	var due string
	var cached string
	if err := s.Scan(&out.ID, &out.NameToCall, &out.PhoneNumber, &out.Description, &due, &out.Status, &cached); err != nil {
		return CachedReminder{}, err
	}
	dueAt, err := parseRequiredTime(due)
	if err != nil {
		return CachedReminder{}, err
	}
	cachedAt, err := parseRequiredTime(cached)
	if err != nil {
		return CachedReminder{}, err
	}
	out.DateTime = dueAt
	out.CachedAt = cachedAt
	return out, nil
}
