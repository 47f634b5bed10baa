package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: could not open %q: %w", ErrStorageUnavailable, s.connectionString, err)
	}

	// AUTOINCREMENT guarantees ids are never reused, even after the newest row is gone.
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		text TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("%w: could not create entries table: %w", ErrStorageUnavailable, err)
	}

	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist(ctx context.Context) bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.PingContext(ctx)
	return err == nil
}

func (s *SQLiteDatabase) CreateEntry(ctx context.Context, date string, text string) (*Entry, error) {
	entry := &Entry{
		Date: date,
		Text: text,
	}

	err := withTx(ctx, s.db, func(ctx context.Context, tx dbtx) error {
		result, err := tx.ExecContext(ctx, "INSERT INTO entries (date, text) VALUES (?, ?)", date, text)
		if err != nil {
			return err
		}
		entry.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return entry, nil
}

func (s *SQLiteDatabase) GetAllEntries(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, date, text FROM entries ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Text); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return entries, nil
}
