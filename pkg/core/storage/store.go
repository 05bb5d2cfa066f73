package storage

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KeyPrefix constants.
const (
	// STVesting holds the vesting schedule state (a single record).
	STVesting KeyPrefix = 0x01
	// STGrant holds grants keyed by investor address and allocation type.
	STGrant KeyPrefix = 0x02
	// STBalance holds token balances keyed by account.
	STBalance KeyPrefix = 0x10
	// STTotalSupply holds the token total supply (a single record).
	STTotalSupply KeyPrefix = 0x11
	// STManagement holds the management contract owner.
	STManagement KeyPrefix = 0x20
	// STPermission holds permission bitmasks keyed by account.
	STPermission KeyPrefix = 0x21
	// STNotification holds the audit log keyed by a big-endian sequence
	// number.
	STNotification KeyPrefix = 0x30
	// SYSNotificationCount is the number of stored notifications.
	SYSNotificationCount KeyPrefix = 0xc0
	// SYSGeneration is the number of committed operations.
	SYSGeneration KeyPrefix = 0xc1
	SYSVersion           KeyPrefix = 0xf0
)

var (
	// ErrKeyNotFound is an error returned by Store implementations
	// when a certain key is not found.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned by GuardedStore when the guard key was changed
	// by someone else.
	ErrConflict = errors.New("concurrent modification")
)

// SeekRange represents options for Store.Seek operation.
type SeekRange struct {
	// Prefix denotes the Seek's lookup key.
	// Empty Prefix means seeking through all keys in the DB starting
	// from the Start if specified.
	Prefix []byte
	// Start denotes value appended to the Prefix to start Seek from.
	// Seeking starting from some key includes this key to the result;
	// if no matching key was found then next suitable key is picked up.
	// Start may be empty. Empty Start means seeking through all keys in
	// the DB with matching Prefix.
	Start []byte
	// Backwards denotes whether Seek direction should be reversed, i.e.
	// whether seeking should be performed in a descending way.
	// Backwards can be safely combined with Prefix and Start.
	Backwards bool
}

type (
	// Store is the underlying KV backend for the ledger data, it's
	// not intended to be used directly, you wrap it with some memory cache
	// layer most of the time.
	Store interface {
		Get([]byte) ([]byte, error)
		// PutChangeSet allows to push prepared changeset to the Store. Nil
		// values denote deleted keys. Implementations must apply the whole
		// changeset atomically.
		PutChangeSet(puts map[string][]byte) error
		// Seek can guarantee that provided key (k) and value (v) are the only valid until the next call to f.
		// Seek continues iteration until false is returned from f.
		// Key and value slices should not be modified.
		// Seek can guarantee that key-value items are sorted by key in ascending way.
		Seek(rng SeekRange, f func(k, v []byte) bool)
		Close() error
	}

	// GuardedStore is a Store that can be shared by several processes. It
	// applies a changeset only if the guard key still has the expected
	// value (nil for a missing key) and returns ErrConflict otherwise.
	GuardedStore interface {
		Store
		PutChangeSetGuarded(guard, expected []byte, puts map[string][]byte) error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// AppendPrefix appends byteslice b to the given KeyPrefix.
func AppendPrefix(k KeyPrefix, b []byte) []byte {
	dest := make([]byte, len(b)+1)
	dest[0] = byte(k)
	copy(dest[1:], b)
	return dest
}

// seekRangeToPrefixes converts SeekRange into a LevelDB-style key range.
func seekRangeToPrefixes(sr SeekRange) *util.Range {
	var (
		rang  *util.Range
		start = make([]byte, len(sr.Prefix)+len(sr.Start))
	)
	copy(start, sr.Prefix)
	copy(start[len(sr.Prefix):], sr.Start)

	if !sr.Backwards {
		rang = util.BytesPrefix(sr.Prefix)
		rang.Start = start
	} else {
		rang = util.BytesPrefix(start)
		rang.Start = sr.Prefix
	}
	return rang
}

// isKeyOK checks whether key belongs to the given range.
func isKeyOK(rng SeekRange, key []byte) bool {
	if !bytes.HasPrefix(key, rng.Prefix) {
		return false
	}
	if len(rng.Start) == 0 {
		return true
	}
	cmp := bytes.Compare(key[len(rng.Prefix):], rng.Start)
	if rng.Backwards {
		return cmp <= 0 || bytes.HasPrefix(key[len(rng.Prefix):], rng.Start)
	}
	return cmp >= 0
}

// sortKVs sorts key-value pairs in the direction required by rng.
func sortKVs(rng SeekRange, kvs []KeyValue) {
	sort.Slice(kvs, func(i, j int) bool {
		res := bytes.Compare(kvs[i].Key, kvs[j].Key)
		if rng.Backwards {
			return res > 0
		}
		return res < 0
	})
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB, "":
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	case dbconfig.RedisDB:
		store, err = NewRedisStore(cfg.RedisDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
