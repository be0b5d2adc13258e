/*
Package store implements llrbkv's block store: the append-only backing file,
its sector-aligned superblock, and the atomic root-swap commit protocol.

All durability and cross-process locking live here. Everything above this
layer (the reference layer in package ref, the tree in package llrb) only
ever calls Read, Write, GetRootAddress, CommitRootAddress, Lock, and
Locked; none of them touch the file directly.

# File layout

Bytes [0, SuperblockSize) are the superblock: only bytes [0, 8) are
meaningful (the root address, big-endian uint64); the rest is padding
written once on first open so the root write lands within a single disk
sector. Bytes [SuperblockSize, EOF) are a sequence of length-prefixed
blocks: an 8-byte big-endian length L followed by L bytes of payload. Once
written, a block is never modified — the only mutation anywhere in the file
is the 8-byte root address at offset 0, and that is the commit's
linearization point.

# Locking

A single exclusive advisory lock (github.com/gofrs/flock) over the backing
file serializes writers across processes. Write and CommitRootAddress
acquire it lazily and idempotently; Unlock (called explicitly, or by
CommitRootAddress once the root is published) flushes and releases it.
Readers never take the lock: Read and GetRootAddress work against whatever
the file currently contains, which by the append-only/atomic-root-write
invariants is always a consistent, if possibly stale, tree.
*/
package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/kvforge/llrbkv/pkg/errs"
	"github.com/kvforge/llrbkv/pkg/log"
	"github.com/kvforge/llrbkv/pkg/metrics"
)

// Address is an absolute byte offset into the backing file. Zero means
// "none" — an empty subtree, an unbound value, or (at offset 0 itself) an
// unwritten tree.
type Address uint64

// SuperblockSize is the number of zero-padded bytes reserved at the start
// of the file so the root address write is sector-aligned and therefore
// atomic on conventional block devices.
const SuperblockSize = 4096

const lengthPrefixSize = 8

// Store owns the single backing file for one llrbkv database.
type Store struct {
	path   string
	file   *os.File
	flock  *flock.Flock
	locked bool
	logger zerolog.Logger
}

// Open opens path for read+write, creating it if absent. A freshly created
// file is padded to exactly SuperblockSize zero bytes under the advisory
// lock; an existing file is left untouched (its root address is whatever
// was last committed, possibly 0 if nothing ever committed).
func Open(path string) (*Store, error) {
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("llrbkv: open %s: %w", path, err)
	}

	s := &Store{
		path:   path,
		file:   file,
		flock:  flock.New(path),
		logger: log.WithComponent("blockstore"),
	}

	if fresh {
		if err := s.padSuperblock(); err != nil {
			_ = file.Close()
			return nil, err
		}
		s.logger.Debug().Str("path", path).Msg("padded fresh superblock")
	}

	return s, nil
}

func (s *Store) padSuperblock() error {
	if _, err := s.Lock(); err != nil {
		return err
	}
	defer func() { _ = s.Unlock() }()

	pad := make([]byte, SuperblockSize)
	if _, err := s.file.WriteAt(pad, 0); err != nil {
		return fmt.Errorf("llrbkv: pad superblock: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("llrbkv: sync superblock: %w", err)
	}
	return nil
}

// Lock acquires the exclusive advisory lock if this handle does not
// already hold it, blocking until available. It returns true if it
// actually took the lock, false if the handle already held it.
func (s *Store) Lock() (bool, error) {
	if s.locked {
		return false, nil
	}
	start := time.Now()
	if err := s.flock.Lock(); err != nil {
		return false, fmt.Errorf("llrbkv: acquire lock: %w", err)
	}
	s.locked = true
	metrics.ObserveLockWait(time.Since(start))
	s.logger.Debug().Msg("lock acquired")
	return true, nil
}

// Locked reports whether this handle currently holds the advisory lock.
// The tree uses this to decide whether a get needs to refresh its root
// reference from the superblock (only handles that don't already hold the
// lock can see a newer commit from another handle).
func (s *Store) Locked() bool {
	return s.locked
}

// Unlock releases the lock if held, flushing the file first.
func (s *Store) Unlock() error {
	if !s.locked {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("llrbkv: flush before unlock: %w", err)
	}
	if err := s.flock.Unlock(); err != nil {
		return fmt.Errorf("llrbkv: release lock: %w", err)
	}
	s.locked = false
	s.logger.Debug().Msg("lock released")
	return nil
}

// Read returns the payload of the length-prefixed block at addr. addr must
// be non-zero.
func (s *Store) Read(addr Address) ([]byte, error) {
	if addr == 0 {
		return nil, fmt.Errorf("llrbkv: read: %w", errs.ErrCorrupt)
	}

	var header [lengthPrefixSize]byte
	if _, err := s.file.ReadAt(header[:], int64(addr)); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("llrbkv: length prefix at %d exceeds file length: %w", addr, errs.ErrCorrupt)
		}
		return nil, fmt.Errorf("llrbkv: read length at %d: %w", addr, err)
	}
	length := binary.BigEndian.Uint64(header[:])

	info, err := s.file.Stat()
	if err != nil {
		return nil, fmt.Errorf("llrbkv: stat: %w", err)
	}
	if int64(addr)+lengthPrefixSize+int64(length) > info.Size() {
		return nil, fmt.Errorf("llrbkv: block at %d (len %d) exceeds file length: %w", addr, length, errs.ErrCorrupt)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := s.file.ReadAt(payload, int64(addr)+lengthPrefixSize); err != nil {
			return nil, fmt.Errorf("llrbkv: read payload at %d: %w", addr, err)
		}
	}
	return payload, nil
}

// Write appends a length-prefixed block to end-of-file and returns its
// address. It acquires the lock if not already held but does not flush or
// release it — commits batch that.
func (s *Store) Write(payload []byte) (Address, error) {
	if _, err := s.Lock(); err != nil {
		return 0, err
	}

	end, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("llrbkv: seek end: %w", err)
	}
	addr := Address(end)

	var header [lengthPrefixSize]byte
	binary.BigEndian.PutUint64(header[:], uint64(len(payload)))
	if _, err := s.file.Write(header[:]); err != nil {
		return 0, fmt.Errorf("llrbkv: write length at %d: %w", addr, err)
	}
	if _, err := s.file.Write(payload); err != nil {
		return 0, fmt.Errorf("llrbkv: write payload at %d: %w", addr, err)
	}

	metrics.RecordBlockWritten(len(payload))
	s.logger.Debug().Uint64("addr", uint64(addr)).Int("len", len(payload)).Msg("block written")
	return addr, nil
}

// GetRootAddress reads the current root address from the superblock.
func (s *Store) GetRootAddress() (Address, error) {
	var header [lengthPrefixSize]byte
	if _, err := s.file.ReadAt(header[:], 0); err != nil {
		return 0, fmt.Errorf("llrbkv: read root address: %w", err)
	}
	return Address(binary.BigEndian.Uint64(header[:])), nil
}

// CommitRootAddress is the transaction's durability boundary: it acquires
// the lock, flushes (so every block the new root references is durable
// before the pointer to it is), overwrites the 8-byte root address at
// offset 0, flushes again, and releases the lock.
func (s *Store) CommitRootAddress(addr Address) error {
	start := time.Now()

	if _, err := s.Lock(); err != nil {
		return err
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("llrbkv: pre-commit flush: %w", err)
	}

	var header [lengthPrefixSize]byte
	binary.BigEndian.PutUint64(header[:], uint64(addr))
	if _, err := s.file.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("llrbkv: write root address: %w", err)
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("llrbkv: post-commit flush: %w", err)
	}

	if err := s.Unlock(); err != nil {
		return err
	}

	metrics.ObserveCommit(time.Since(start))
	s.logger.Info().Uint64("root_addr", uint64(addr)).Msg("root committed")
	return nil
}

// Size reports the current file size, for monotone-growth assertions and
// the CLI's stats command.
func (s *Store) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("llrbkv: stat: %w", err)
	}
	return info.Size(), nil
}

// Close releases the lock if held and closes the file.
func (s *Store) Close() error {
	if err := s.Unlock(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("llrbkv: close %s: %w", s.path, err)
	}
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
