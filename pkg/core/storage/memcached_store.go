package storage

// MemCachedStore is a wrapper around persistent store that caches all changes
// being made for them to be later flushed in one batch. Deleted items are
// kept in the cache as nil values until persisted.
type MemCachedStore struct {
	MemoryStore

	// Persistent Store.
	ps Store
}

type (
	// KeyValue represents key-value pair.
	KeyValue struct {
		Key   []byte
		Value []byte
	}

	// KeyValueExists represents key-value pair with indicator whether the item
	// exists in the persistent storage.
	KeyValueExists struct {
		KeyValue

		Exists bool
	}

	// MemBatch represents a changeset to be persisted.
	MemBatch struct {
		Put     []KeyValueExists
		Deleted []KeyValueExists
	}
)

// NewMemCachedStore creates a new MemCachedStore object.
func NewMemCachedStore(lower Store) *MemCachedStore {
	return &MemCachedStore{
		MemoryStore: *NewMemoryStore(),
		ps:          lower,
	}
}

// Get implements the Store interface.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	val, ok := s.mem[string(key)]
	s.mut.RUnlock()
	if ok {
		if val == nil {
			return nil, ErrKeyNotFound
		}
		return val, nil
	}
	return s.ps.Get(key)
}

// Put puts new KV pair into the store.
func (s *MemCachedStore) Put(key, value []byte) {
	s.mut.Lock()
	s.mem[string(key)] = cloneBytes(value)
	s.mut.Unlock()
}

// Delete drops KV pair from the store. Never returns an error.
func (s *MemCachedStore) Delete(key []byte) {
	s.mut.Lock()
	s.mem[string(key)] = nil
	s.mut.Unlock()
}

// PutChangeSet implements the Store interface. Deletion markers are kept
// since the lower layer may still have the key.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k, v := range puts {
		s.mem[k] = v
	}
	s.mut.Unlock()
	return nil
}

// GetBatch returns currently accumulated changeset.
func (s *MemCachedStore) GetBatch() *MemBatch {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var b MemBatch

	for k, v := range s.mem {
		key := []byte(k)
		_, err := s.ps.Get(key)
		kv := KeyValueExists{KeyValue: KeyValue{Key: key, Value: v}, Exists: err == nil}
		if v == nil {
			b.Deleted = append(b.Deleted, kv)
		} else {
			b.Put = append(b.Put, kv)
		}
	}
	return &b
}

// Seek implements the Store interface. Cached changes take precedence over
// the lower layer.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	own := s.collect(rng, true)
	var kvs = make([]KeyValue, 0, len(own))
	for _, kv := range own {
		if kv.Value != nil {
			kvs = append(kvs, kv)
		}
	}
	s.ps.Seek(rng, func(k, v []byte) bool {
		if _, ok := s.mem[string(k)]; !ok {
			kvs = append(kvs, KeyValue{Key: cloneBytes(k), Value: cloneBytes(v)})
		}
		return true
	})
	s.mut.RUnlock()

	sortKVs(rng, kvs)
	for _, kv := range kvs {
		if !f(kv.Key, kv.Value) {
			break
		}
	}
}

// Persist flushes all the changes made into the lower layer in one
// changeset and returns the number of flushed keys. The cache is left
// intact if the lower layer fails.
func (s *MemCachedStore) Persist() (int, error) {
	return s.persist(s.ps.PutChangeSet)
}

// PersistGuarded is like Persist, but if the lower layer is a GuardedStore
// the changes are only flushed if the guard key there still has the expected
// value. Other stores can't be shared, so the guard is not checked for them.
func (s *MemCachedStore) PersistGuarded(guard, expected []byte) (int, error) {
	gs, ok := s.ps.(GuardedStore)
	if !ok {
		return s.Persist()
	}
	return s.persist(func(puts map[string][]byte) error {
		return gs.PutChangeSetGuarded(guard, expected, puts)
	})
}

func (s *MemCachedStore) persist(put func(map[string][]byte) error) (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	keys := len(s.mem)
	if keys == 0 {
		return 0, nil
	}
	err := put(s.mem)
	if err != nil {
		return 0, err
	}
	s.mem = make(map[string][]byte)
	return keys, nil
}

// Discard drops all the changes accumulated so far.
func (s *MemCachedStore) Discard() {
	s.mut.Lock()
	s.mem = make(map[string][]byte)
	s.mut.Unlock()
}

// Close implements Store interface, clears up memory and closes the lower layer
// Store.
func (s *MemCachedStore) Close() error {
	// It's always successful.
	_ = s.MemoryStore.Close()
	return s.ps.Close()
}
