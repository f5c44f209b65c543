// Package chunkindex holds transcript fragments between ingest and final assembly.
// Entries and their per-(session, question) sets expire after a fixed TTL.
package chunkindex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"interview-capture/internal/app/model"
)

// Store is an ephemeral keyed store with expiring entries and set membership
type Store interface {
	// Put writes value under key, adds key to the set, and refreshes the TTL of both
	Put(ctx context.Context, setKey, key string, value []byte, ttl time.Duration) error
	// Members lists the keys currently in a set, in no particular order
	Members(ctx context.Context, setKey string) ([]string, error)
	// Values fetches the values of keys. Missing or expired keys yield a nil slot.
	Values(ctx context.Context, keys []string) ([][]byte, error)
	// Remove deletes key and drops it from the set. Removing an absent key is not an error.
	Remove(ctx context.Context, setKey, key string) error
	Close() error
}

// SetKey is the per-(session, question) set enumerating fragment keys
func SetKey(sessionID int64, questionIndex int) string {
	return fmt.Sprintf("stt_chunks:%d:%d", sessionID, questionIndex)
}

// FragmentKey addresses one fragment. It is scoped by chunk index so a
// re-submitted chunk replaces the earlier fragment.
func FragmentKey(sessionID int64, questionIndex, chunkIndex int) string {
	return fmt.Sprintf("stt:%d:%d:%d", sessionID, questionIndex, chunkIndex)
}

// Index records and reads fragments on top of a Store
type Index struct {
	store Store
	ttl   time.Duration
}

// NewIndex creates an Index with the given entry TTL
func NewIndex(store Store, ttl time.Duration) *Index {
	return &Index{store: store, ttl: ttl}
}

// Record writes a fragment and returns its key
func (i *Index) Record(ctx context.Context, f model.Fragment) (string, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode fragment: %w", err)
	}
	key := FragmentKey(f.SessionID, f.QuestionIndex, f.ChunkIndex)
	if err := i.store.Put(ctx, SetKey(f.SessionID, f.QuestionIndex), key, raw, i.ttl); err != nil {
		return "", err
	}
	return key, nil
}

// Forget drops the fragment of one chunk index, if any
func (i *Index) Forget(ctx context.Context, sessionID int64, questionIndex, chunkIndex int) error {
	return i.store.Remove(ctx, SetKey(sessionID, questionIndex), FragmentKey(sessionID, questionIndex, chunkIndex))
}

// Raw returns the stored value per key for a (session, question). Keys whose
// value has expired are reported with a nil value.
func (i *Index) Raw(ctx context.Context, sessionID int64, questionIndex int) ([]string, [][]byte, error) {
	keys, err := i.store.Members(ctx, SetKey(sessionID, questionIndex))
	if err != nil {
		return nil, nil, err
	}
	if len(keys) == 0 {
		return nil, nil, nil
	}
	values, err := i.store.Values(ctx, keys)
	if err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

// DecodeFragment parses a stored fragment value
func DecodeFragment(key string, raw []byte) (model.Fragment, error) {
	var f model.Fragment
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.Fragment{}, fmt.Errorf("decode fragment %s: %w", key, err)
	}
	f.Key = key
	return f, nil
}
