package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "journal"

// recordIDPrefix is how every marshalled record with a zero id begins.
const recordIDPrefix = `{"id":0`

// createEntryScript allocates the id and appends the record in one atomic
// step, so list order always equals id order.
// KEYS[1] sequence, KEYS[2] entries list, ARGV[1] record after the id.
var createEntryScript = redis.NewScript(`
local id = redis.call('INCR', KEYS[1])
redis.call('RPUSH', KEYS[2], '{"id":' .. id .. ARGV[1])
return id
`)

// RedisDatabase keeps entries as JSON records in a list, with ids drawn from
// an INCR counter so they stay unique for the lifetime of the keyspace.
// Both happen inside one Lua script per entry.
type RedisDatabase struct {
	client     *redis.Client
	entriesKey string
	sequence   string
}

// NewRedisDatabase accepts a redis URL, e.g. redis://localhost:6379/0?prefix=journal.
// The optional prefix query parameter namespaces the keys.
func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	parsed, err := url.Parse(connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %w", ErrStorageUnavailable, err)
	}
	query := parsed.Query()
	prefix := query.Get("prefix")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	query.Del("prefix")
	parsed.RawQuery = query.Encode()

	options, err := redis.ParseURL(parsed.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %w", ErrStorageUnavailable, err)
	}

	return &RedisDatabase{
		client:     redis.NewClient(options),
		entriesKey: prefix + ":entries",
		sequence:   prefix + ":entries:seq",
	}, nil
}

func (r *RedisDatabase) CreateDatabase(ctx context.Context) error {
	// Redis keys spring into existence on first write; reachability is all there is to check.
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisDatabase) DoesDatabaseExist(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

func (r *RedisDatabase) CreateEntry(ctx context.Context, date string, text string) (*Entry, error) {
	entry := &Entry{
		Date: date,
		Text: text,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	tail, ok := bytes.CutPrefix(data, []byte(recordIDPrefix))
	if !ok {
		return nil, fmt.Errorf("%w: unexpected record layout %q", ErrStorageWrite, data)
	}

	id, err := createEntryScript.Run(ctx, r.client, []string{r.sequence, r.entriesKey}, string(tail)).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	entry.ID = id

	return entry, nil
}

func (r *RedisDatabase) GetAllEntries(ctx context.Context) ([]*Entry, error) {
	records, err := r.client.LRange(ctx, r.entriesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	entries := make([]*Entry, 0, len(records))
	for _, record := range records {
		var entry Entry
		if err := json.Unmarshal([]byte(record), &entry); err != nil {
			return nil, fmt.Errorf("%w: malformed record: %w", ErrStorageUnavailable, err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
