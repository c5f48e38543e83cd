package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

type fakeCache struct {
	entries map[string][]byte
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	f.entries = map[string][]byte{}
	return nil
}

type fakeInner struct {
	rows      map[string][]Row
	readCount int
	writeErr  error
}

func newFakeInner() *fakeInner {
	return &fakeInner{rows: map[string][]Row{}}
}

func (f *fakeInner) ReadTable(ctx context.Context, table Table) ([]Row, error) {
	f.readCount++
	return f.rows[table.Name], nil
}

func (f *fakeInner) OverwriteTable(ctx context.Context, table Table, rows []Row) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.rows[table.Name] = rows
	return nil
}

func (f *fakeInner) AppendRow(ctx context.Context, table Table, row Row) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.rows[table.Name] = append(f.rows[table.Name], row)
	return nil
}

type recordingMetrics struct {
	hits   int
	misses int
}

func (r *recordingMetrics) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func TestCachedReadThrough(t *testing.T) {
	inner := newFakeInner()
	inner.rows[TableRoster.Name] = []Row{{"name": "Ayse"}}
	metrics := &recordingMetrics{}
	cached := NewCached(inner, newFakeCache(), time.Minute, metrics, nil)
	ctx := context.Background()

	rows, err := cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, inner.readCount)
	assert.Equal(t, 1, metrics.misses)

	rows, err = cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, inner.readCount, "second read must be served from cache")
	assert.Equal(t, 1, metrics.hits)
}

func TestCachedWriteInvalidatesEveryTable(t *testing.T) {
	inner := newFakeInner()
	inner.rows[TableRoster.Name] = []Row{{"name": "Ayse"}}
	inner.rows[TableTransactions.Name] = []Row{{"memo": "x"}}
	cached := NewCached(inner, newFakeCache(), time.Minute, nil, nil)
	ctx := context.Background()

	_, err := cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)
	_, err = cached.ReadTable(ctx, TableTransactions)
	require.NoError(t, err)
	require.Equal(t, 2, inner.readCount)

	// appending to one table drops the cache of all tables
	require.NoError(t, cached.AppendRow(ctx, TableActivityLog, Row{"action": "Lesson Consumed"}))

	_, err = cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)
	_, err = cached.ReadTable(ctx, TableTransactions)
	require.NoError(t, err)
	assert.Equal(t, 4, inner.readCount)
}

func TestCachedFailedWriteKeepsCache(t *testing.T) {
	inner := newFakeInner()
	inner.rows[TableRoster.Name] = []Row{{"name": "Ayse"}}
	cached := NewCached(inner, newFakeCache(), time.Minute, nil, nil)
	ctx := context.Background()

	_, err := cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)

	inner.writeErr = errors.New("store down")
	require.Error(t, cached.OverwriteTable(ctx, TableRoster, nil))

	_, err = cached.ReadTable(ctx, TableRoster)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.readCount, "cache entry must survive a failed write")
}

func TestCachedDegradesWhenCacheErrors(t *testing.T) {
	inner := newFakeInner()
	inner.rows[TableRoster.Name] = []Row{{"name": "Ayse"}}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cached := NewCached(inner, cache, time.Minute, nil, nil)

	rows, err := cached.ReadTable(context.Background(), TableRoster)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
