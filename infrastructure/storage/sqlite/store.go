package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

const columns = "id, years, weeks, days, am, pm, ambreak, pmbreak, amdgone, amdgtwo, pmdgone, pmdgtwo"

// Store is a SQLite-backed implementation of calendar.Store.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite calendar store.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewStoreFromDB creates a store over an existing connection and migrates it.
func NewStoreFromDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrate creates table1 if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS table1 (
			id INTEGER PRIMARY KEY,
			years INTEGER NOT NULL,
			weeks INTEGER NOT NULL,
			days TEXT NOT NULL,
			am TEXT,
			pm TEXT,
			ambreak TEXT,
			pmbreak TEXT,
			amdgone TEXT,
			amdgtwo TEXT,
			pmdgone TEXT,
			pmdgtwo TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_table1_year_week ON table1(years, weeks);
		CREATE INDEX IF NOT EXISTS idx_table1_days ON table1(days);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert writes records in one transaction, skipping IDs already present.
// It returns the number of rows inserted.
func (s *Store) Insert(ctx context.Context, records ...calendar.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.wrapError(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO table1 (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, s.wrapError(err)
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx,
			r.ID, r.Year, r.Week, string(r.Day), nullable(r.Am), nullable(r.Pm),
			nullable(r.AmBreak), nullable(r.PmBreak),
			nullable(r.AmDgOne), nullable(r.AmDgTwo),
			nullable(r.PmDgOne), nullable(r.PmDgTwo),
		)
		if err != nil {
			return 0, s.wrapError(fmt.Errorf("insert record %d: %w", r.ID, err))
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, s.wrapError(err)
	}
	return inserted, nil
}

// FetchAll returns every record.
func (s *Store) FetchAll(ctx context.Context) ([]calendar.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM table1 ORDER BY id")
}

// FetchByYearWeek returns the records of one week.
func (s *Store) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM table1 WHERE years = ? AND weeks = ? ORDER BY id", year, week)
}

// FetchByWeeks returns the records of several weeks in one query.
func (s *Store) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	result := make(map[calendar.WeekKey][]calendar.Record, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values := make([]string, len(keys))
	args := make([]any, 0, 2*len(keys))
	for i, k := range keys {
		values[i] = "(?, ?)"
		args = append(args, k.Year, k.Week)
	}
	query := fmt.Sprintf(
		"SELECT %s FROM table1 WHERE (years, weeks) IN (VALUES %s) ORDER BY id",
		columns, strings.Join(values, ", "),
	)

	records, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		result[r.Key()] = append(result[r.Key()], r)
	}
	return result, nil
}

// FetchByYear returns the records of one year.
func (s *Store) FetchByYear(ctx context.Context, year int) ([]calendar.Record, error) {
	return s.query(ctx, "SELECT "+columns+" FROM table1 WHERE years = ? ORDER BY id", year)
}

// FetchLatest returns the n records with the highest IDs in ascending order.
func (s *Store) FetchLatest(ctx context.Context, n int) ([]calendar.Record, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: latest count must be positive, got %d", calendar.ErrInvalidArgument, n)
	}
	query := fmt.Sprintf(
		"SELECT %s FROM (SELECT %s FROM table1 ORDER BY id DESC LIMIT ?) ORDER BY id",
		columns, columns,
	)
	return s.query(ctx, query, n)
}

// FetchFiltered pushes the day and year range down to SQL and applies
// predicate to the returned rows.
func (s *Store) FetchFiltered(ctx context.Context, filter calendar.Filter, predicate calendar.Predicate) ([]calendar.Record, error) {
	var conditions []string
	var args []any
	if filter.Day != "" {
		conditions = append(conditions, "days = ?")
		args = append(args, string(filter.Day))
	}
	if filter.Years.From != 0 {
		conditions = append(conditions, "years >= ?")
		args = append(args, filter.Years.From)
	}
	if filter.Years.To != 0 {
		conditions = append(conditions, "years <= ?")
		args = append(args, filter.Years.To)
	}

	query := "SELECT " + columns + " FROM table1"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	records, err := s.query(ctx, query, args...)
	if err != nil || predicate == nil {
		return records, err
	}

	out := records[:0]
	for _, r := range records {
		if predicate(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]calendar.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	var records []calendar.Record
	for rows.Next() {
		var r calendar.Record
		var day string
		var am, pm, amBreak, pmBreak, amDgOne, amDgTwo, pmDgOne, pmDgTwo sql.NullString

		if err := rows.Scan(
			&r.ID, &r.Year, &r.Week, &day, &am, &pm,
			&amBreak, &pmBreak, &amDgOne, &amDgTwo, &pmDgOne, &pmDgTwo,
		); err != nil {
			return nil, s.wrapError(fmt.Errorf("scan record: %w", err))
		}

		r.Day = calendar.Day(day)
		r.Am, r.Pm = am.String, pm.String
		r.AmBreak, r.PmBreak = amBreak.String, pmBreak.String
		r.AmDgOne, r.AmDgTwo = amDgOne.String, amDgTwo.String
		r.PmDgOne, r.PmDgTwo = pmDgOne.String, pmDgTwo.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapError(err)
	}
	return records, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// wrapError wraps database errors with domain errors.
func (s *Store) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return errors.Join(calendar.ErrStorageFailure, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(calendar.ErrStorageFailure, calendar.ErrOperationTimeout, err)
	}
	return errors.Join(calendar.ErrStorageFailure, err)
}

var _ calendar.Store = (*Store)(nil)
