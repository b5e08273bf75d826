package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

const columns = "id, years, weeks, days, am, pm, ambreak, pmbreak, amdgone, amdgtwo, pmdgone, pmdgtwo"

// Store is a PostgreSQL-backed implementation of calendar.Store.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// NewStore creates a calendar store over the table1 table in schema.
func NewStore(pool *pgxpool.Pool, schema string) *Store {
	if schema == "" {
		schema = "public"
	}
	return &Store{
		pool:   pool,
		schema: schema,
	}
}

// tableName returns the fully qualified table name.
func (s *Store) tableName() string {
	return fmt.Sprintf("%s.table1", s.schema)
}

// FetchAll returns every record.
func (s *Store) FetchAll(ctx context.Context) ([]calendar.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", columns, s.tableName())
	return s.query(ctx, query)
}

// FetchByYearWeek returns the records of one week.
func (s *Store) FetchByYearWeek(ctx context.Context, year, week int) ([]calendar.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE years = $1 AND weeks = $2 ORDER BY id", columns, s.tableName())
	return s.query(ctx, query, year, week)
}

// FetchByWeeks returns the records of several weeks in one query.
func (s *Store) FetchByWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	result := make(map[calendar.WeekKey][]calendar.Record, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query, args := s.weeksQuery(keys)
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
	query := fmt.Sprintf("SELECT %s FROM %s WHERE years = $1 ORDER BY id", columns, s.tableName())
	return s.query(ctx, query, year)
}

// FetchLatest returns the n records with the highest IDs in ascending order.
func (s *Store) FetchLatest(ctx context.Context, n int) ([]calendar.Record, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: latest count must be positive, got %d", calendar.ErrInvalidArgument, n)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s FROM %s ORDER BY id DESC LIMIT $1
		) latest
		ORDER BY id
	`, columns, columns, s.tableName())
	return s.query(ctx, query, n)
}

// FetchFiltered pushes the day and year range down to SQL and applies
// predicate to the returned rows.
func (s *Store) FetchFiltered(ctx context.Context, filter calendar.Filter, predicate calendar.Predicate) ([]calendar.Record, error) {
	query, args := s.filterQuery(filter)
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

// filterQuery builds the SELECT for a filter.
func (s *Store) filterQuery(filter calendar.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Day != "" {
		args = append(args, string(filter.Day))
		conditions = append(conditions, fmt.Sprintf("days = $%d", len(args)))
	}
	if filter.Years.From != 0 {
		args = append(args, filter.Years.From)
		conditions = append(conditions, fmt.Sprintf("years >= $%d", len(args)))
	}
	if filter.Years.To != 0 {
		args = append(args, filter.Years.To)
		conditions = append(conditions, fmt.Sprintf("years <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY id", columns, s.tableName(), where)
	return query, args
}

// weeksQuery builds a batch lookup over parallel year and week arrays.
func (s *Store) weeksQuery(keys []calendar.WeekKey) (string, []any) {
	years := make([]int32, len(keys))
	weeks := make([]int32, len(keys))
	for i, k := range keys {
		years[i] = int32(k.Year)
		weeks[i] = int32(k.Week)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (years, weeks) IN (SELECT * FROM unnest($1::int[], $2::int[]))
		ORDER BY id
	`, columns, s.tableName())
	return query, []any{years, weeks}
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]calendar.Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, s.wrapError(err)
	}
	return records, nil
}

// scanRecords reads rows selected with the columns list.
func scanRecords(rows pgx.Rows) ([]calendar.Record, error) {
	var records []calendar.Record
	for rows.Next() {
		var r calendar.Record
		var day, am, pm, amBreak, pmBreak, amDgOne, amDgTwo, pmDgOne, pmDgTwo *string

		if err := rows.Scan(
			&r.ID, &r.Year, &r.Week, &day, &am, &pm,
			&amBreak, &pmBreak, &amDgOne, &amDgTwo, &pmDgOne, &pmDgTwo,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		r.Day = calendar.Day(deref(day))
		r.Am = deref(am)
		r.Pm = deref(pm)
		r.AmBreak = deref(amBreak)
		r.PmBreak = deref(pmBreak)
		r.AmDgOne = deref(amDgOne)
		r.AmDgTwo = deref(amDgTwo)
		r.PmDgOne = deref(pmDgOne)
		r.PmDgTwo = deref(pmDgTwo)
		records = append(records, r)
	}
	return records, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
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

	return errors.Join(calendar.ErrStorageFailure, calendar.ErrConnectionFailed, err)
}

var _ calendar.Store = (*Store)(nil)
