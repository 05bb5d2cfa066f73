package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"github.com/redis/go-redis/v9"
)

// redisScanCount is the COUNT hint used for SCAN iterations.
const redisScanCount = 512

// RedisStore holds the client and the key prefix used to separate
// ledger data from anything else stored in the same Redis DB. Keys are
// stored hex-encoded after the prefix, so binary keys never clash with
// SCAN pattern syntax. It can be shared by several ledger processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns an new initialized - ready to use RedisStore object.
func NewRedisStore(cfg dbconfig.RedisDBOptions) (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: c, prefix: cfg.Prefix}, nil
}

var _ GuardedStore = (*RedisStore)(nil)

func (s *RedisStore) key(k []byte) string {
	return s.prefix + hex.EncodeToString(k)
}

// Get implements the Store interface.
func (s *RedisStore) Get(k []byte) ([]byte, error) {
	val, err := s.client.Get(context.Background(), s.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

// PutChangeSet implements the Store interface. The changeset is applied in
// a single MULTI/EXEC transaction.
func (s *RedisStore) PutChangeSet(puts map[string][]byte) error {
	ctx := context.Background()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueChangeSet(ctx, pipe, puts)
		return nil
	})
	return err
}

// PutChangeSetGuarded implements the GuardedStore interface. The guard key
// is WATCHed, so the transaction fails if it's changed after the check.
func (s *RedisStore) PutChangeSetGuarded(guard, expected []byte, puts map[string][]byte) error {
	var (
		ctx      = context.Background()
		guardKey = s.key(guard)
	)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, guardKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if !bytes.Equal(cur, expected) {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueChangeSet(ctx, pipe, puts)
			return nil
		})
		return err
	}, guardKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (s *RedisStore) queueChangeSet(ctx context.Context, pipe redis.Pipeliner, puts map[string][]byte) {
	for k, v := range puts {
		if v != nil {
			pipe.Set(ctx, s.key([]byte(k)), v, 0)
		} else {
			pipe.Del(ctx, s.key([]byte(k)))
		}
	}
}

// Seek implements the Store interface. Redis has no ordered keyspace, so
// matching keys are collected with SCAN and sorted locally.
func (s *RedisStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	ctx := context.Background()
	pattern := escapeGlob(s.prefix) + hex.EncodeToString(rng.Prefix) + "*"

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		panic(err)
	}
	if len(keys) == 0 {
		return
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		panic(err)
	}
	kvs := make([]KeyValue, 0, len(keys))
	for i := range keys {
		str, ok := vals[i].(string)
		if !ok {
			// Deleted in between SCAN and MGET.
			continue
		}
		key, err := hex.DecodeString(strings.TrimPrefix(keys[i], s.prefix))
		if err != nil {
			// Foreign key sharing the prefix.
			continue
		}
		if isKeyOK(rng, key) {
			kvs = append(kvs, KeyValue{Key: key, Value: []byte(str)})
		}
	}
	sortKVs(rng, kvs)
	for _, kv := range kvs {
		if !f(kv.Key, kv.Value) {
			break
		}
	}
}

// Close implements the Store interface.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// escapeGlob escapes Redis glob-style pattern special characters.
func escapeGlob(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
