package object

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the object count a CachedStore retains by default.
const DefaultCacheSize = 4096

type cachedObject struct {
	typ  Type
	body []byte
}

// CachedStore is a read-through LRU decorator for a Store. History walks
// re-read the same commits and trees repeatedly; caching them keeps long
// merge-base traversals off the disk.
type CachedStore struct {
	inner Store
	cache *lru.Cache[ID, cachedObject]
}

// NewCachedStore wraps inner with an LRU cache holding up to size objects.
// A non-positive size falls back to DefaultCacheSize.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[ID, cachedObject](size)
	if err != nil {
		return nil, fmt.Errorf("object cache: %w", err)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Get returns the cached object when present, reading through otherwise.
func (s *CachedStore) Get(id ID) (Type, []byte, error) {
	if obj, ok := s.cache.Get(id); ok {
		return obj.typ, obj.body, nil
	}
	typ, body, err := s.inner.Get(id)
	if err != nil {
		return "", nil, err
	}
	s.cache.Add(id, cachedObject{typ: typ, body: body})
	return typ, body, nil
}

// Put writes through to the inner store and primes the cache.
func (s *CachedStore) Put(typ Type, body []byte) (ID, error) {
	id, err := s.inner.Put(typ, body)
	if err != nil {
		return ZeroID, err
	}
	s.cache.Add(id, cachedObject{typ: typ, body: body})
	return id, nil
}

// Has checks the cache before the inner store.
func (s *CachedStore) Has(id ID) bool {
	if s.cache.Contains(id) {
		return true
	}
	return s.inner.Has(id)
}

// ResolvePrefix delegates to the inner store; abbreviation needs the full
// object listing, which only the backing store has.
func (s *CachedStore) ResolvePrefix(p Prefix) (ID, error) {
	return s.inner.ResolvePrefix(p)
}
