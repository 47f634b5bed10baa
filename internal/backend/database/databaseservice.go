package database

import "context"

type DatabaseService interface {
	// CreateDatabase opens the record space, creating it on first use.
	CreateDatabase(ctx context.Context) error
	DoesDatabaseExist(ctx context.Context) bool
	Close() error

	// CreateEntry stores a new entry in a single transaction and returns it
	// with the id assigned by the store.
	CreateEntry(ctx context.Context, date string, text string) (*Entry, error)
	// GetAllEntries returns every stored entry in insertion order.
	GetAllEntries(ctx context.Context) ([]*Entry, error)
}
