package ref

import (
	"github.com/kvforge/llrbkv/pkg/store"
)

// ValueRef is a lazy reference to a value's raw bytes.
type ValueRef struct {
	value   []byte
	address store.Address
}

// NewValueRef wraps a resident value that has not yet been written to the
// store.
func NewValueRef(value []byte) *ValueRef {
	return &ValueRef{value: value}
}

// NewPersistedValueRef wraps an address of a value already on disk.
func NewPersistedValueRef(addr store.Address) *ValueRef {
	return &ValueRef{address: addr}
}

// Address returns the ref's on-disk address, or 0 if it has never been
// stored.
func (r *ValueRef) Address() store.Address {
	if r == nil {
		return 0
	}
	return r.address
}

// Get returns the value's bytes, paging them in from s if this ref is
// persisted-only.
func (r *ValueRef) Get(s *store.Store) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	if r.value == nil && r.address != 0 {
		v, err := s.Read(r.address)
		if err != nil {
			return nil, err
		}
		r.value = v
	}
	return r.value, nil
}

// Store writes the value's bytes to s if this ref is resident-only, caching
// the resulting address. A no-op if already persisted or nil.
func (r *ValueRef) Store(s *store.Store) error {
	if r == nil {
		return nil
	}
	if r.value != nil && r.address == 0 {
		addr, err := s.Write(r.value)
		if err != nil {
			return err
		}
		r.address = addr
	}
	return nil
}
