package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(testing.TB) Store
}

type dbTestFunction func(*testing.T, Store)

func newLevelDBForTesting(t testing.TB) Store {
	ldbDir := t.TempDir()
	newLevelStore, err := NewLevelDBStore(dbconfig.LevelDBOptions{DataDirectoryPath: ldbDir})
	require.Nil(t, err, "NewLevelDBStore error")
	return newLevelStore
}

func newBoltStoreForTesting(t testing.TB) Store {
	d := t.TempDir()
	testFileName := filepath.Join(d, "test_bolt_db")
	boltDBStore, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: testFileName})
	require.NoError(t, err)
	return boltDBStore
}

func newRedisStoreForTesting(t testing.TB) Store {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(dbconfig.RedisDBOptions{Addr: mr.Addr(), Prefix: "vesting:"})
	require.NoError(t, err)
	return s
}

func newMemCachedStoreForTesting(t testing.TB) Store {
	return NewMemCachedStore(NewMemoryStore())
}

func pushSeekDataSet(t *testing.T, s Store) []KeyValue {
	// Use the same set of kvs to test Seek with different prefix/start values.
	kvs := []KeyValue{
		{[]byte("10"), []byte("bar")},
		{[]byte("11"), []byte("bara")},
		{[]byte("20"), []byte("barb")},
		{[]byte("21"), []byte("barc")},
		{[]byte("22"), []byte("bard")},
		{[]byte("30"), []byte("bare")},
		{[]byte("31"), []byte("barf")},
	}
	up := NewMemCachedStore(s)
	for _, v := range kvs {
		up.Put(v.Key, v.Value)
	}
	_, err := up.Persist()
	require.NoError(t, err)
	return kvs
}

func seekAll(s Store, rng SeekRange) []KeyValue {
	var actual []KeyValue
	s.Seek(rng, func(k, v []byte) bool {
		actual = append(actual, KeyValue{
			Key:   bytes.Clone(k),
			Value: bytes.Clone(v),
		})
		return true
	})
	return actual
}

func testStoreGetNonExistent(t *testing.T, s Store) {
	key := []byte("sparse")

	_, err := s.Get(key)
	assert.Equal(t, err, ErrKeyNotFound)
}

func testStorePutChangeSetAndDelete(t *testing.T, s Store) {
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"foo": []byte("bar"),
		"baz": []byte("qux"),
	}))
	v, err := s.Get([]byte("foo"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bar"), v)

	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"foo": nil,
		"baz": []byte("quux"),
	}))
	_, err = s.Get([]byte("foo"))
	assert.Equal(t, ErrKeyNotFound, err)
	v, err = s.Get([]byte("baz"))
	require.NoError(t, err)
	assert.Equal(t, []byte("quux"), v)
}

func testStoreSeek(t *testing.T, s Store) {
	kvs := pushSeekDataSet(t, s)

	t.Run("prefix forwards", func(t *testing.T) {
		actual := seekAll(s, SeekRange{Prefix: []byte("2")})
		assert.Equal(t, kvs[2:5], actual)
	})
	t.Run("prefix backwards", func(t *testing.T) {
		actual := seekAll(s, SeekRange{Prefix: []byte("2"), Backwards: true})
		assert.Equal(t, []KeyValue{kvs[4], kvs[3], kvs[2]}, actual)
	})
	t.Run("prefix and start forwards", func(t *testing.T) {
		actual := seekAll(s, SeekRange{Prefix: []byte("2"), Start: []byte("1")})
		assert.Equal(t, kvs[3:5], actual)
	})
	t.Run("prefix and start backwards", func(t *testing.T) {
		actual := seekAll(s, SeekRange{Prefix: []byte("2"), Start: []byte("1"), Backwards: true})
		assert.Equal(t, []KeyValue{kvs[3], kvs[2]}, actual)
	})
	t.Run("missing prefix", func(t *testing.T) {
		assert.Empty(t, seekAll(s, SeekRange{Prefix: []byte("4")}))
	})
	t.Run("early exit", func(t *testing.T) {
		var n int
		s.Seek(SeekRange{Prefix: []byte("1")}, func(k, v []byte) bool {
			n++
			return false
		})
		assert.Equal(t, 1, n)
	})
}

func testStoreSeekBinary(t *testing.T, s Store) {
	kvs := []KeyValue{
		{[]byte{0x02, 0xff, '*'}, []byte("glob")},
		{[]byte{0x02, 0xff, '[', 0x80}, []byte("class")},
		{[]byte{0x02, 0xff, '\\'}, []byte("escape")},
		{[]byte{0x02, 0xfe}, []byte("other")},
		{[]byte{0x03, 0xff}, []byte("foreign")},
	}
	up := NewMemCachedStore(s)
	for _, kv := range kvs {
		up.Put(kv.Key, kv.Value)
	}
	_, err := up.Persist()
	require.NoError(t, err)

	actual := seekAll(s, SeekRange{Prefix: []byte{0x02, 0xff}})
	assert.Equal(t, kvs[:3], actual)

	v, err := s.Get([]byte{0x02, 0xff, '[', 0x80})
	require.NoError(t, err)
	assert.Equal(t, []byte("class"), v)
}

func TestAllDBs(t *testing.T) {
	var DBs = []dbSetup{
		{"BoltDB", newBoltStoreForTesting},
		{"LevelDB", newLevelDBForTesting},
		{"MemCached", newMemCachedStoreForTesting},
		{"Memory", func(testing.TB) Store { return NewMemoryStore() }},
		{"Redis", newRedisStoreForTesting},
	}
	var tests = []dbTestFunction{testStoreGetNonExistent, testStorePutChangeSetAndDelete, testStoreSeek, testStoreSeekBinary}
	for _, db := range DBs {
		for _, test := range tests {
			s := db.create(t)
			t.Run(db.name, func(t *testing.T) {
				test(t, s)
			})
			require.NoError(t, s.Close())
		}
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(dbconfig.DBConfiguration{})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(dbconfig.DBConfiguration{
		Type:          dbconfig.BoltDB,
		BoltDBOptions: dbconfig.BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "bolt")},
	})
	require.NoError(t, err)
	require.IsType(t, &BoltDBStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(dbconfig.DBConfiguration{Type: "unknown"})
	require.Error(t, err)
}

func TestBoltDBReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt")
	s, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: path})
	require.NoError(t, err)
	require.NoError(t, s.PutChangeSet(map[string][]byte{"key": []byte("value")}))
	require.NoError(t, s.Close())

	s, err = NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: path, ReadOnly: true})
	require.NoError(t, err)
	v, err := s.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
	require.NoError(t, s.Close())
}

func TestRedisKeysArePrefixed(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(dbconfig.RedisDBOptions{Addr: mr.Addr(), Prefix: "a*"})
	require.NoError(t, err)
	require.NoError(t, s.PutChangeSet(map[string][]byte{"key": []byte("value")}))
	require.True(t, mr.Exists("a*6b6579"))

	// Another prefix must not see foreign keys even though "a*" is a glob.
	require.NoError(t, mr.Set("ab-key", "foreign"))
	// Neither do keys with the same prefix not made by the store.
	require.NoError(t, mr.Set("a*key", "foreign"))
	actual := seekAll(s, SeekRange{})
	require.Equal(t, []KeyValue{{Key: []byte("key"), Value: []byte("value")}}, actual)
	require.NoError(t, s.Close())
}

func TestRedisGuardedChangeSet(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(dbconfig.RedisDBOptions{Addr: mr.Addr(), Prefix: "vesting:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	guard := SYSGeneration.Bytes()

	// Missing guard key is expected as nil.
	require.NoError(t, s.PutChangeSetGuarded(guard, nil, map[string][]byte{
		string(guard): {1},
		"key":         []byte("value"),
	}))
	err = s.PutChangeSetGuarded(guard, nil, map[string][]byte{"key": []byte("stale")})
	require.ErrorIs(t, err, ErrConflict)
	require.NoError(t, s.PutChangeSetGuarded(guard, []byte{1}, map[string][]byte{
		string(guard): {2},
		"key":         nil,
	}))
	_, err = s.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	// Cached layers pass the guard through.
	up := NewMemCachedStore(s)
	up.Put([]byte("key"), []byte("stale"))
	_, err = up.PersistGuarded(guard, []byte{1})
	require.ErrorIs(t, err, ErrConflict)
	// Nothing is lost on conflict.
	v, err := up.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("stale"), v)
	n, err := up.PersistGuarded(guard, []byte{2})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPersistGuardedUnshared(t *testing.T) {
	ps := NewMemoryStore()
	up := NewMemCachedStore(ps)
	up.Put([]byte("key"), []byte("value"))
	// Not a GuardedStore, the guard isn't checked.
	n, err := up.PersistGuarded(SYSGeneration.Bytes(), []byte{42})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	v, err := ps.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
}
