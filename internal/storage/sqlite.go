package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reisekosten/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTrip(ctx context.Context, t core.Trip) error {
	allowances, err := marshalAllowances(t.MealAllowances)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO trips (id, name, destination, start_datetime, end_datetime, status, meal_allowances, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Destination,
		formatTime(t.StartDateTime), formatTime(t.EndDateTime),
		string(t.Status), allowances,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved to SQLite", "id", t.ID, "name", t.Name, "status", t.Status)
	return nil
}

func (r *SQLiteRepository) UpdateTrip(ctx context.Context, t core.Trip) error {
	allowances, err := marshalAllowances(t.MealAllowances)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET name = ?, destination = ?, start_datetime = ?, end_datetime = ?, status = ?, meal_allowances = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Destination,
		formatTime(t.StartDateTime), formatTime(t.EndDateTime),
		string(t.Status), allowances, formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, destination, start_datetime, end_datetime, status, meal_allowances, created_at, updated_at
		FROM trips WHERE id = ?`, id)
	return scanTrip(row)
}

func (r *SQLiteRepository) ListTrips(ctx context.Context) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, destination, start_datetime, end_datetime, status, meal_allowances, created_at, updated_at
		FROM trips ORDER BY start_datetime DESC`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteTrip removes the trip and all its expenses in one transaction.
func (r *SQLiteRepository) DeleteTrip(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete trip: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE trip_id = ?`, id); err != nil {
		return fmt.Errorf("delete trip expenses: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip deleted with expenses", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, trip_id, category, description, date,
			gross_amount_cents, net_amount_cents, vat_amount_cents, amount_cents, vat_rate_id,
			distance_km, duration_minutes, direction, start_address, end_address, license_plate, manual_distance,
			created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TripID, string(e.Category), e.Description, formatTime(e.Date),
		e.GrossAmount.Cents, e.NetAmount.Cents, e.VatAmount.Cents, e.Amount.Cents, string(e.VatRateID),
		e.DistanceKm, e.DurationMinutes, string(e.Direction), e.StartAddress, e.EndAddress, e.LicensePlate, boolToInt(e.ManualDistance),
		formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"trip_id", e.TripID,
		"category", e.Category,
		"gross_cents", e.GrossAmount.Cents)
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET trip_id = ?, category = ?, description = ?, date = ?,
			gross_amount_cents = ?, net_amount_cents = ?, vat_amount_cents = ?, amount_cents = ?, vat_rate_id = ?,
			distance_km = ?, duration_minutes = ?, direction = ?, start_address = ?, end_address = ?, license_plate = ?, manual_distance = ?
		WHERE id = ?`,
		e.TripID, string(e.Category), e.Description, formatTime(e.Date),
		e.GrossAmount.Cents, e.NetAmount.Cents, e.VatAmount.Cents, e.Amount.Cents, string(e.VatRateID),
		e.DistanceKm, e.DurationMinutes, string(e.Direction), e.StartAddress, e.EndAddress, e.LicensePlate, boolToInt(e.ManualDistance),
		e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id)
	return scanExpense(row)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx, expenseSelect+` ORDER BY date ASC`)
}

func (r *SQLiteRepository) ListExpensesByTrip(ctx context.Context, tripID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx, expenseSelect+` WHERE trip_id = ? ORDER BY date ASC`, tripID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

const expenseSelect = `
	SELECT id, trip_id, category, description, date,
		gross_amount_cents, net_amount_cents, vat_amount_cents, amount_cents, vat_rate_id,
		distance_km, duration_minutes, direction, start_address, end_address, license_plate, manual_distance,
		created_at
	FROM expenses`

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var t core.Trip
	var start, end, createdAt, updatedAt, status string
	var allowances sql.NullString

	err := row.Scan(&t.ID, &t.Name, &t.Destination, &start, &end, &status, &allowances, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("scan trip: %w", err)
	}

	t.Status = core.TripStatus(status)
	if t.StartDateTime, err = parseTime(start); err != nil {
		return t, err
	}
	if t.EndDateTime, err = parseTime(end); err != nil {
		return t, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return t, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return t, err
	}

	if allowances.Valid && allowances.String != "" {
		var summary core.AllowanceSummary
		if err := json.Unmarshal([]byte(allowances.String), &summary); err != nil {
			return t, fmt.Errorf("decode meal allowances for trip %s: %w", t.ID, err)
		}
		t.MealAllowances = &summary
	}

	return t, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var date, createdAt, category, vatRateID, direction string
	var manualDistance int

	err := row.Scan(&e.ID, &e.TripID, &category, &e.Description, &date,
		&e.GrossAmount.Cents, &e.NetAmount.Cents, &e.VatAmount.Cents, &e.Amount.Cents, &vatRateID,
		&e.DistanceKm, &e.DurationMinutes, &direction, &e.StartAddress, &e.EndAddress, &e.LicensePlate, &manualDistance,
		&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("scan expense: %w", err)
	}

	e.Category = core.Category(category)
	e.VatRateID = core.VatRateID(vatRateID)
	e.Direction = core.TripDirection(direction)
	e.ManualDistance = manualDistance != 0
	if e.Date, err = parseTime(date); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return e, err
	}

	return e, nil
}

func marshalAllowances(summary *core.AllowanceSummary) (sql.NullString, error) {
	if summary == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode meal allowances: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
