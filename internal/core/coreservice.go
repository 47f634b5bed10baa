package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/jo-hoe/gojournal/internal/backend/export"
)

// MaxEntryLength is the largest accepted entry body, in runes.
const MaxEntryLength = 65536

// ErrInvalidEntry is returned when an entry text cannot be stored or exported
// as typed: it is too long, not valid UTF-8 or carries characters a document
// cannot hold.
var ErrInvalidEntry = errors.New("invalid entry")

// ErrEntryTooLong is the ErrInvalidEntry case for text above MaxEntryLength.
var ErrEntryTooLong = fmt.Errorf("%w: too long", ErrInvalidEntry)

// SaveEntryRequest is the body accepted by the save actions of the web shell and the API.
type SaveEntryRequest struct {
	// max must equal MaxEntryLength; tags cannot reference constants.
	Text string `json:"text" form:"text" validate:"max=65536"`
}

// ValidateEntryText checks text against the rules SaveEntry enforces.
func ValidateEntryText(text string) error {
	if err := export.ValidateText(text); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if length := utf8.RuneCountInString(text); length > MaxEntryLength {
		return fmt.Errorf("%w: %d characters exceed the limit of %d", ErrEntryTooLong, length, MaxEntryLength)
	}
	return nil
}

// CoreService owns the journal state: the store and the in-memory entry list
// shown to the user, newest first. The list is seeded from the store once and
// only grows by prepending entries the store has confirmed.
type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	location        *time.Location
	now             func() time.Time

	mu      sync.RWMutex
	entries []*database.Entry
}

// NewCoreService opens the configured store and loads the existing entries.
// Storage failures are returned wrapped in database.ErrStorageUnavailable.
func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(ctx, config)
	if err != nil {
		return nil, err
	}
	return newCoreService(ctx, config, databaseService)
}

func newCoreService(ctx context.Context, config *ServiceConfig, databaseService database.DatabaseService) (*CoreService, error) {
	location, err := config.Location()
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}

	stored, err := databaseService.GetAllEntries(ctx)
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	// storage order is oldest first
	slices.Reverse(stored)
	slog.Info("journal loaded", "entries", len(stored))

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		location:        location,
		now:             time.Now,
		entries:         stored,
	}, nil
}

func getDatabaseService(ctx context.Context, config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(ctx, config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// Entries returns a copy of the in-memory list, newest first.
func (service *CoreService) Entries() []*database.Entry {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return slices.Clone(service.entries)
}

// SaveEntry stamps text with the current date and persists it. The entry is
// prepended to the in-memory list only once the store has committed it, so a
// failed save leaves the list untouched. The store is called without holding
// the lock: overlapping saves all land, in the order they complete.
// Text failing ValidateEntryText is rejected before the store is touched.
func (service *CoreService) SaveEntry(ctx context.Context, text string) (*database.Entry, error) {
	if err := ValidateEntryText(text); err != nil {
		return nil, err
	}
	date := service.now().In(service.location).Format(service.config.DateLayout)

	entry, err := service.databaseService.CreateEntry(ctx, date, text)
	if err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	service.mu.Lock()
	service.entries = slices.Insert(service.entries, 0, entry)
	service.mu.Unlock()

	slog.Debug("entry saved", "id", entry.ID, "length", len(text))
	return entry, nil
}

// ExportJSON returns the current list as a JSON artifact.
func (service *CoreService) ExportJSON() (*export.Artifact, error) {
	return export.NewJSONArtifact(service.Entries(), service.config.Export.JSONFileName)
}

// ExportDocument returns the current list as a .docx artifact.
func (service *CoreService) ExportDocument() (*export.Artifact, error) {
	return export.NewDocumentArtifact(service.Entries(), service.config.Export.DocumentFileName)
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}
