// Package redis persists documents and the embedding cache in Redis via rueidis.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/store"
)

// Compile-time checks.
var (
	_ store.DocumentStore = (*Store)(nil)
	_ store.KV            = (*Store)(nil)
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements the document store and the embedding-cache KV on Redis.
// Documents live in hashes under <prefix>doc:<id>; a sorted seq field keeps
// the original ingestion order.
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "marketlens:"
	}

	return &Store{client: client, prefix: prefix}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) docKey(id string) string { return s.prefix + "doc:" + id }

// Add stores documents as hashes in a single DoMulti round-trip. Re-adding a
// known ID overwrites its fields; HSETNX leaves the original sequence number
// in place so ingestion order survives restarts.
func (s *Store) Add(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	seq, err := s.nextSeq(ctx, int64(len(docs)))
	if err != nil {
		return err
	}
	base := seq - int64(len(docs))

	cmds := make([]rueidis.Completed, 0, len(docs)*2)
	for i, d := range docs {
		key := s.docKey(d.ID)
		cmds = append(cmds,
			s.client.B().Hset().Key(key).FieldValue().
				FieldValue("content", d.Content).
				FieldValue("source", d.Source).
				FieldValue("date", d.Date).
				Build(),
			s.client.B().Hsetnx().Key(key).Field("seq").
				Value(strconv.FormatInt(base+int64(i), 10)).Build(),
		)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return fmt.Errorf("hset %s: %w", docs[i/2].ID, err)
		}
	}
	return nil
}

// nextSeq reserves n sequence numbers and returns the new counter value.
func (s *Store) nextSeq(ctx context.Context, n int64) (int64, error) {
	cmd := s.client.B().Incrby().Key(s.prefix + "doc_seq").Increment(n).Build()
	v, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("incrby doc_seq: %w", err)
	}
	return v, nil
}

// All returns every stored document in ingestion order.
func (s *Store) All(ctx context.Context) ([]domain.Document, error) {
	keys, err := s.scan(ctx, s.prefix+"doc:*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.client.B().Hgetall().Key(key).Build()
	}

	type seqDoc struct {
		seq int64
		doc domain.Document
	}

	results := s.client.DoMulti(ctx, cmds...)
	docs := make([]seqDoc, 0, len(results))
	for i, res := range results {
		fields, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", keys[i], err)
		}
		if len(fields) == 0 {
			continue // key expired between SCAN and HGETALL
		}
		seq, _ := strconv.ParseInt(fields["seq"], 10, 64)
		docs = append(docs, seqDoc{
			seq: seq,
			doc: domain.Document{
				ID:      keys[i][len(s.prefix)+len("doc:"):],
				Content: fields["content"],
				Source:  fields["source"],
				Date:    fields["date"],
			},
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].seq < docs[j].seq })

	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		out[i] = d.doc
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx, s.prefix+"doc:*")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Get retrieves a KV value by key (embedding cache).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(s.prefix + key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, store.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set stores a KV value at the given key (embedding cache).
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(s.prefix + key).Value(string(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
