/*
Package sqlite provides the SQLite-backed implementation of rotation.Store.

PURPOSE:
  Production persistence for owner-scoped rotation data. The same SQL
  shapes port to PostgreSQL with only minor dialect changes.

KEY TABLES:
  vendors:   Roster records, keyed by client-generated id
  holidays:  Per-year holiday sets
  schedules: One row per (owner, year) with the vendors-per-day setting
  entries:   Schedule entries; vendor_ids stored as a JSON array

ATOMICITY:
  Batch operations (InsertHolidays, ReplaceHolidays, SaveSchedule,
  SetEntriesLocked) run inside a single database transaction, matching
  the all-or-nothing contract of rotation.Store.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control would handle this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/escala.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rotation/store.go: Interface definition and contract
  - rotation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/escala/rotation-engine/rotation"
)

// Store implements rotation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roster
	CREATE TABLE IF NOT EXISTS vendors (
		owner_id TEXT NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vendors_owner
		ON vendors(owner_id);

	-- Per-year holiday sets
	CREATE TABLE IF NOT EXISTS holidays (
		owner_id TEXT NOT NULL,
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_owner_year
		ON holidays(owner_id, year);

	-- Schedule metadata, one row per (owner, year)
	CREATE TABLE IF NOT EXISTS schedules (
		owner_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		vendors_per_day INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (owner_id, year)
	);

	-- Schedule entries; vendor_ids is a JSON array of vendor id strings
	CREATE TABLE IF NOT EXISTS entries (
		owner_id TEXT NOT NULL,
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		vendor_ids TEXT NOT NULL DEFAULT '[]',
		closed BOOLEAN NOT NULL DEFAULT FALSE,
		locked BOOLEAN NOT NULL DEFAULT FALSE,
		note TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_entries_owner_year_date
		ON entries(owner_id, year, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// FETCH
// =============================================================================

// FetchAll returns everything stored for the owner in one call.
func (s *Store) FetchAll(ctx context.Context, owner rotation.OwnerID) (*rotation.OwnerData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &rotation.OwnerData{
		Holidays:  make(map[int][]rotation.Holiday),
		Schedules: make(map[int]*rotation.Schedule),
	}

	vendors, err := s.queryVendors(ctx, owner)
	if err != nil {
		return nil, err
	}
	data.Vendors = vendors

	if err := s.fetchHolidays(ctx, owner, data); err != nil {
		return nil, err
	}
	if err := s.fetchSchedules(ctx, owner, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) queryVendors(ctx context.Context, owner rotation.OwnerID) ([]rotation.Vendor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, active FROM vendors WHERE owner_id = ? ORDER BY created_at ASC",
		string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []rotation.Vendor
	for rows.Next() {
		var v rotation.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Active); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (s *Store) fetchHolidays(ctx context.Context, owner rotation.OwnerID, data *rotation.OwnerData) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, year, date, name FROM holidays WHERE owner_id = ? ORDER BY date ASC",
		string(owner),
	)
	if err != nil {
		return fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h       rotation.Holiday
			year    int
			dateStr string
		)
		if err := rows.Scan(&h.ID, &year, &dateStr, &h.Name); err != nil {
			return fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.Date, err = rotation.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("failed to parse holiday date: %w", err)
		}
		data.Holidays[year] = append(data.Holidays[year], h)
	}
	return rows.Err()
}

func (s *Store) fetchSchedules(ctx context.Context, owner rotation.OwnerID, data *rotation.OwnerData) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT year, vendors_per_day FROM schedules WHERE owner_id = ?",
		string(owner),
	)
	if err != nil {
		return fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			year   int
			perDay int
		)
		if err := rows.Scan(&year, &perDay); err != nil {
			return fmt.Errorf("failed to scan schedule: %w", err)
		}
		data.Schedules[year] = &rotation.Schedule{
			Year:          year,
			VendorsPerDay: rotation.VendorsPerDay(perDay),
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT id, year, date, type, vendor_ids, closed, locked, note
		 FROM entries WHERE owner_id = ? ORDER BY date ASC`,
		string(owner),
	)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var year int
		entry, err := scanEntry(entryRows, &year)
		if err != nil {
			return err
		}
		schedule, ok := data.Schedules[year]
		if !ok {
			// Orphaned entries (schedule row lost) are skipped.
			continue
		}
		schedule.Entries = append(schedule.Entries, entry)
	}
	if err := entryRows.Err(); err != nil {
		return err
	}

	for _, schedule := range data.Schedules {
		schedule.SortEntries()
	}
	return nil
}

func scanEntry(rows *sql.Rows, year *int) (rotation.ScheduleEntry, error) {
	var (
		entry      rotation.ScheduleEntry
		dateStr    string
		vendorJSON string
	)
	if err := rows.Scan(&entry.ID, year, &dateStr, &entry.Type, &vendorJSON,
		&entry.Closed, &entry.Locked, &entry.Note); err != nil {
		return entry, fmt.Errorf("failed to scan entry: %w", err)
	}

	date, err := rotation.ParseDate(dateStr)
	if err != nil {
		return entry, fmt.Errorf("failed to parse entry date: %w", err)
	}
	entry.Date = date

	if err := json.Unmarshal([]byte(vendorJSON), &entry.VendorIDs); err != nil {
		return entry, fmt.Errorf("failed to decode entry vendor ids: %w", err)
	}
	if len(entry.VendorIDs) == 0 {
		entry.VendorIDs = nil
	}
	return entry, nil
}

// =============================================================================
// VENDORS
// =============================================================================

// InsertVendors adds a batch of roster records atomically.
func (s *Store) InsertVendors(ctx context.Context, owner rotation.OwnerID, vendors []rotation.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, v := range vendors {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vendors (owner_id, id, name, active, created_at) VALUES (?, ?, ?, ?, ?)",
			string(owner), string(v.ID), v.Name, v.Active, now,
		); err != nil {
			return fmt.Errorf("failed to insert vendor: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateVendor rewrites one roster record.
func (s *Store) UpdateVendor(ctx context.Context, owner rotation.OwnerID, vendor rotation.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE vendors SET name = ?, active = ? WHERE owner_id = ? AND id = ?",
		vendor.Name, vendor.Active, string(owner), string(vendor.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	return noneAffected(res, rotation.ErrVendorNotFound)
}

// DeleteVendor removes a roster record. Entry references are untouched.
func (s *Store) DeleteVendor(ctx context.Context, owner rotation.OwnerID, id rotation.VendorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM vendors WHERE owner_id = ? AND id = ?",
		string(owner), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	return noneAffected(res, rotation.ErrVendorNotFound)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// InsertHolidays adds a batch of holidays to the year's set atomically.
func (s *Store) InsertHolidays(ctx context.Context, owner rotation.OwnerID, year int, holidays []rotation.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertHolidaysTx(ctx, tx, owner, year, holidays); err != nil {
		return err
	}
	return tx.Commit()
}

func insertHolidaysTx(ctx context.Context, tx *sql.Tx, owner rotation.OwnerID, year int, holidays []rotation.Holiday) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, h := range holidays {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO holidays (owner_id, id, year, date, name, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			string(owner), string(h.ID), year, h.Date.String(), h.Name, now,
		); err != nil {
			return fmt.Errorf("failed to insert holiday: %w", err)
		}
	}
	return nil
}

// UpdateHoliday rewrites one holiday record.
func (s *Store) UpdateHoliday(ctx context.Context, owner rotation.OwnerID, year int, holiday rotation.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE holidays SET date = ?, name = ? WHERE owner_id = ? AND year = ? AND id = ?",
		holiday.Date.String(), holiday.Name, string(owner), year, string(holiday.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update holiday: %w", err)
	}
	return noneAffected(res, rotation.ErrHolidayNotFound)
}

// DeleteHoliday removes one holiday record.
func (s *Store) DeleteHoliday(ctx context.Context, owner rotation.OwnerID, id rotation.HolidayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM holidays WHERE owner_id = ? AND id = ?",
		string(owner), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return noneAffected(res, rotation.ErrHolidayNotFound)
}

// ReplaceHolidays swaps the year's holiday set wholesale, atomically.
func (s *Store) ReplaceHolidays(ctx context.Context, owner rotation.OwnerID, year int, holidays []rotation.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holidays WHERE owner_id = ? AND year = ?",
		string(owner), year,
	); err != nil {
		return fmt.Errorf("failed to clear holidays: %w", err)
	}
	if err := insertHolidaysTx(ctx, tx, owner, year, holidays); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// SCHEDULES + ENTRIES
// =============================================================================

// SaveSchedule upserts the year's metadata row and replaces its entries
// wholesale, in one transaction.
func (s *Store) SaveSchedule(ctx context.Context, owner rotation.OwnerID, schedule *rotation.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedules (owner_id, year, vendors_per_day, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id, year) DO UPDATE SET
			vendors_per_day = excluded.vendors_per_day,
			updated_at = excluded.updated_at`,
		string(owner), schedule.Year, int(schedule.VendorsPerDay),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entries WHERE owner_id = ? AND year = ?",
		string(owner), schedule.Year,
	); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	for _, entry := range schedule.Entries {
		vendorJSON, err := encodeVendorIDs(entry.VendorIDs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (owner_id, id, year, date, type, vendor_ids, closed, locked, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(owner), string(entry.ID), schedule.Year, entry.Date.String(),
			string(entry.Type), vendorJSON, entry.Closed, entry.Locked, entry.Note,
		); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateEntry rewrites one schedule entry.
func (s *Store) UpdateEntry(ctx context.Context, owner rotation.OwnerID, year int, entry rotation.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendorJSON, err := encodeVendorIDs(entry.VendorIDs)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET date = ?, type = ?, vendor_ids = ?, closed = ?, locked = ?, note = ?
		 WHERE owner_id = ? AND year = ? AND id = ?`,
		entry.Date.String(), string(entry.Type), vendorJSON,
		entry.Closed, entry.Locked, entry.Note,
		string(owner), year, string(entry.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return noneAffected(res, rotation.ErrEntryNotFound)
}

// SetEntriesLocked bulk-toggles the locked flag over an id set, atomically.
func (s *Store) SetEntriesLocked(ctx context.Context, owner rotation.OwnerID, ids []rotation.EntryID, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+2)
	args = append(args, locked, string(owner))
	for _, id := range ids {
		args = append(args, string(id))
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE entries SET locked = ? WHERE owner_id = ? AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to set entries locked: %w", err)
	}
	return nil
}

// ClearUnlockedVendors empties vendor_ids on every unlocked entry of the
// year in one statement.
func (s *Store) ClearUnlockedVendors(ctx context.Context, owner rotation.OwnerID, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE entries SET vendor_ids = '[]' WHERE owner_id = ? AND year = ? AND locked = FALSE",
		string(owner), year,
	)
	if err != nil {
		return fmt.Errorf("failed to clear unlocked vendors: %w", err)
	}
	return nil
}

// DeleteSchedule removes the metadata row and all of the year's entries.
func (s *Store) DeleteSchedule(ctx context.Context, owner rotation.OwnerID, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM entries WHERE owner_id = ? AND year = ?",
		string(owner), year,
	); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schedules WHERE owner_id = ? AND year = ?",
		string(owner), year,
	); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func encodeVendorIDs(ids []rotation.VendorID) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode vendor ids: %w", err)
	}
	return string(b), nil
}

// noneAffected maps a zero-row UPDATE/DELETE to the given sentinel.
func noneAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
