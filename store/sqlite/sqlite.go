/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements all persistence contracts (stats.DocumentStore,
  tracker.EntryStore, tracker.AbsenceStore) over a single SQLite database.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  log_entries: one row per tracked interval, indexed by date and year
  statistics:  one row per year document, JSON body + revision counter
  absences:    one row per absence day, keyed by the date-derived id

OPTIMISTIC CONCURRENCY:
  The statistics table carries an integer revision. Replace runs a
  conditional UPDATE (WHERE id = ? AND revision = ?); zero affected rows
  means a concurrent writer won and the caller gets stats.ErrConflict.
  Create relies on the primary key: a constraint violation maps to
  stats.ErrConflict as well.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - stats/store.go:   document store contract
  - tracker/store.go: entry/absence store contracts
  - store/memory:     in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", stats.ErrInitialization, dbPath, err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", stats.ErrInitialization, err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS log_entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		duration INTEGER NOT NULL,
		project TEXT,
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_log_entries_date ON log_entries(date);
	CREATE INDEX IF NOT EXISTS idx_log_entries_year ON log_entries(year);
	CREATE INDEX IF NOT EXISTS idx_log_entries_year_project
		ON log_entries(year, project);

	CREATE TABLE IF NOT EXISTS statistics (
		id TEXT PRIMARY KEY,
		revision INTEGER NOT NULL,
		document TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		home_office INTEGER NOT NULL DEFAULT 0,
		public_holiday INTEGER NOT NULL DEFAULT 0,
		sick_leave INTEGER NOT NULL DEFAULT 0,
		vacation INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_absences_year ON absences(year);
	`
	_, err := s.db.Exec(schema)
	return err
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// =============================================================================
// DOCUMENT STORE (stats.DocumentStore)
// =============================================================================

func (s *Store) Get(ctx context.Context, key string) (*stats.YearDocument, stats.Revision, error) {
	var (
		body string
		rev  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT document, revision FROM statistics WHERE id = ?`, key,
	).Scan(&body, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, stats.ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read statistics %s: %w", key, err)
	}

	var doc stats.YearDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, 0, fmt.Errorf("decode statistics %s: %w", key, err)
	}
	return &doc, stats.Revision(rev), nil
}

func (s *Store) Create(ctx context.Context, doc *stats.YearDocument) (stats.Revision, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode statistics %s: %w", doc.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO statistics (id, revision, document) VALUES (?, 1, ?)`,
		doc.ID, string(body))
	if isConstraintViolation(err) {
		return 0, stats.ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("insert statistics %s: %w", doc.ID, err)
	}
	return 1, nil
}

func (s *Store) Replace(ctx context.Context, doc *stats.YearDocument, rev stats.Revision) (stats.Revision, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encode statistics %s: %w", doc.ID, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE statistics SET document = ?, revision = revision + 1
		 WHERE id = ? AND revision = ?`,
		string(body), doc.ID, int64(rev))
	if err != nil {
		return 0, fmt.Errorf("update statistics %s: %w", doc.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update statistics %s: %w", doc.ID, err)
	}
	if affected == 0 {
		// Stale revision or vanished document; either way the caller
		// must re-read before writing again.
		return 0, stats.ErrConflict
	}
	return rev + 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM statistics WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete statistics %s: %w", key, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete statistics %s: %w", key, err)
	}
	if affected == 0 {
		return stats.ErrNotFound
	}
	return nil
}

// =============================================================================
// ENTRY STORE (tracker.EntryStore)
// =============================================================================

func (s *Store) CreateEntry(ctx context.Context, entry *model.LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO log_entries
			(id, date, year, month, week, start_time, end_time, duration, project, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Date, entry.Year, entry.Month, entry.Week,
		entry.Start, entry.End, entry.Duration, entry.Project, entry.Description)
	if isConstraintViolation(err) {
		return stats.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*model.LogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, year, month, week, start_time, end_time, duration, project, description
		 FROM log_entries WHERE id = ?`, id)

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stats.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", id, err)
	}
	return entry, nil
}

func (s *Store) ReplaceEntry(ctx context.Context, entry *model.LogEntry) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE log_entries
		 SET date = ?, year = ?, month = ?, week = ?, start_time = ?, end_time = ?,
		     duration = ?, project = ?, description = ?
		 WHERE id = ?`,
		entry.Date, entry.Year, entry.Month, entry.Week, entry.Start, entry.End,
		entry.Duration, entry.Project, entry.Description, entry.ID)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", entry.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry %s: %w", entry.ID, err)
	}
	if affected == 0 {
		return stats.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM log_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if affected == 0 {
		return stats.ErrNotFound
	}
	return nil
}

func (s *Store) EntriesByDate(ctx context.Context, date string) ([]*model.LogEntry, error) {
	return s.queryEntries(ctx,
		`SELECT id, date, year, month, week, start_time, end_time, duration, project, description
		 FROM log_entries WHERE date = ? ORDER BY start_time`, date)
}

func (s *Store) EntriesByYear(ctx context.Context, year int) ([]*model.LogEntry, error) {
	return s.queryEntries(ctx,
		`SELECT id, date, year, month, week, start_time, end_time, duration, project, description
		 FROM log_entries WHERE year = ? ORDER BY date, start_time`, year)
}

func (s *Store) FindEntries(ctx context.Context, year int, project, query string) ([]*model.LogEntry, error) {
	sqlQuery := `SELECT id, date, year, month, week, start_time, end_time, duration, project, description
		 FROM log_entries WHERE year = ?`
	args := []any{year}
	if project != "" {
		sqlQuery += ` AND TRIM(project) = ?`
		args = append(args, project)
	}
	if query != "" {
		sqlQuery += ` AND description LIKE '%' || ? || '%'`
		args = append(args, query)
	}
	sqlQuery += ` ORDER BY date, start_time`
	return s.queryEntries(ctx, sqlQuery, args...)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var result []*model.LogEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanEntry(scan func(...any) error) (*model.LogEntry, error) {
	var (
		entry       model.LogEntry
		project     sql.NullString
		description sql.NullString
	)
	err := scan(&entry.ID, &entry.Date, &entry.Year, &entry.Month, &entry.Week,
		&entry.Start, &entry.End, &entry.Duration, &project, &description)
	if err != nil {
		return nil, err
	}
	entry.Project = project.String
	entry.Description = description.String
	return &entry, nil
}

// =============================================================================
// ABSENCE STORE (tracker.AbsenceStore)
// =============================================================================

func (s *Store) UpsertAbsence(ctx context.Context, absence *model.Absence) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO absences (id, date, year, month, home_office, public_holiday, sick_leave, vacation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			home_office = excluded.home_office,
			public_holiday = excluded.public_holiday,
			sick_leave = excluded.sick_leave,
			vacation = excluded.vacation`,
		absence.ID, absence.Date, absence.Year, absence.Month,
		absence.HomeOffice, absence.PublicHoliday, absence.SickLeave, int(absence.Vacation))
	if err != nil {
		return fmt.Errorf("upsert absence %s: %w", absence.Date, err)
	}
	return nil
}

func (s *Store) AbsencesByYear(ctx context.Context, year int) ([]*model.Absence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, year, month, home_office, public_holiday, sick_leave, vacation
		 FROM absences WHERE year = ? ORDER BY date`, year)
	if err != nil {
		return nil, fmt.Errorf("query absences: %w", err)
	}
	defer rows.Close()

	var result []*model.Absence
	for rows.Next() {
		var (
			absence  model.Absence
			vacation int
		)
		err := rows.Scan(&absence.ID, &absence.Date, &absence.Year, &absence.Month,
			&absence.HomeOffice, &absence.PublicHoliday, &absence.SickLeave, &vacation)
		if err != nil {
			return nil, fmt.Errorf("scan absence: %w", err)
		}
		absence.Vacation = model.VacationType(vacation)
		result = append(result, &absence)
	}
	return result, rows.Err()
}
