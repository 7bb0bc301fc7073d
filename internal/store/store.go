package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jchaskell/cr/internal/record"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when no record exists for a chamber-day.
var ErrNotFound = errors.New("record not found")

//go:embed schema.sql
var schema string

// Store persists parsed records in SQLite, one row per section and turn.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	} else {
		dsn = path + "?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save stores rec, replacing any record for the same chamber and date. It
// returns the new record id.
func (s *Store) Save(ctx context.Context, rec *record.Record) (int64, error) {
	if rec.Chamber == "" || rec.Date.IsZero() {
		return 0, fmt.Errorf("save record: chamber and date are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	date := rec.Date.Format(dateLayout)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE chamber = ? AND date = ?`, rec.Chamber, date); err != nil {
		return 0, fmt.Errorf("delete previous record: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (chamber, date, source, parsed_at) VALUES (?, ?, ?, ?)`,
		rec.Chamber, date, rec.Source, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record id: %w", err)
	}

	sectionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (record_id, seq, title) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare sections: %w", err)
	}
	defer sectionStmt.Close()

	turnStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns (record_id, section_seq, seq, speaker, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare turns: %w", err)
	}
	defer turnStmt.Close()

	for i, sec := range rec.Sections {
		if _, err := sectionStmt.ExecContext(ctx, id, i, sec.Title); err != nil {
			return 0, fmt.Errorf("insert section %q: %w", sec.Title, err)
		}
		for j, t := range sec.Turns {
			if _, err := turnStmt.ExecContext(ctx, id, i, j, t.Speaker, t.Text); err != nil {
				return 0, fmt.Errorf("insert turn %d of %q: %w", j, sec.Title, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Get rebuilds the stored record for a chamber-day, sections and turns in
// document order.
func (s *Store) Get(ctx context.Context, chamber string, day time.Time) (*record.Record, error) {
	rec := &record.Record{Chamber: chamber, Date: day}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source FROM records WHERE chamber = ? AND date = ?`,
		chamber, day.Format(dateLayout)).Scan(&id, &rec.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, chamber, day.Format(dateLayout))
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, title FROM sections WHERE record_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	for rows.Next() {
		var seq int
		var sec record.Section
		if err := rows.Scan(&seq, &sec.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan section: %w", err)
		}
		rec.Sections = append(rec.Sections, sec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT section_seq, speaker, text FROM turns WHERE record_id = ? ORDER BY section_seq, seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sec int
		var t record.Turn
		if err := rows.Scan(&sec, &t.Speaker, &t.Text); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if sec < 0 || sec >= len(rec.Sections) {
			return nil, fmt.Errorf("turn references missing section %d", sec)
		}
		rec.Sections[sec].Turns = append(rec.Sections[sec].Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return rec, nil
}

// Dates lists the stored days of a chamber, oldest first.
func (s *Store) Dates(ctx context.Context, chamber string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM records WHERE chamber = ? ORDER BY date`, chamber)
	if err != nil {
		return nil, fmt.Errorf("query dates: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", raw, err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SpeakerTurns counts turns per speaker across all stored records, most
// active first.
func (s *Store) SpeakerTurns(ctx context.Context, chamber string, limit int) ([]SpeakerCount, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.speaker, COUNT(*) AS n
		FROM turns t JOIN records r ON r.id = t.record_id
		WHERE t.speaker != '' AND (? = '' OR r.chamber = ?)
		GROUP BY t.speaker
		ORDER BY n DESC, t.speaker
		LIMIT ?`, chamber, chamber, limit)
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	var out []SpeakerCount
	for rows.Next() {
		var sc SpeakerCount
		if err := rows.Scan(&sc.Speaker, &sc.Turns); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// SpeakerCount is one row of SpeakerTurns.
type SpeakerCount struct {
	Speaker string `json:"speaker"`
	Turns   int    `json:"turns"`
}
