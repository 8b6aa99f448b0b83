// Package cache provides an on-disk, content-hash-keyed store for
// compiled designs, so a repeated CLI invocation against byte-identical
// input (entry file plus every transitively imported file) can skip
// re-running the pipeline entirely.
package cache

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"asdl/internal/diag"
)

// schemaVersion guards against decoding a Record written by an
// incompatible earlier layout.
const schemaVersion uint16 = 1

// DesignRecord is the msgpack-safe mirror of netlist.Design; cache lives
// below internal/netlist in the import graph, so it cannot depend on
// that package's type directly.
type DesignRecord struct {
	Name      string
	TopModule string
	Text      string
}

// InputHash records one file that contributed to a compilation, so a
// cache hit can be revalidated by re-hashing every one of them.
type InputHash struct {
	Path string
	Hash [32]byte
}

// Record is one cached compilation outcome.
type Record struct {
	Schema      uint16
	Design      DesignRecord
	Diagnostics []diag.Diagnostic
	Inputs      []InputHash
}

// Store is a directory of msgpack-encoded Records keyed by the SHA-256
// hash of the entry file's content.
type Store struct {
	mu  sync.Mutex
	dir string
}

// OpenDefault opens the store at $XDG_CACHE_HOME/asdl (or
// ~/.cache/asdl), creating it if necessary.
func OpenDefault() (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, "asdl"))
}

// Open opens (creating if necessary) a store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathFor(hash [32]byte) string {
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".mp")
}

// Put writes rec under hash, replacing any existing entry atomically.
func (s *Store) Put(hash [32]byte, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Schema = schemaVersion
	p := s.pathFor(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	if encErr := msgpack.NewEncoder(f).Encode(rec); encErr != nil {
		f.Close()
		os.Remove(tmpName)
		return encErr
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads the record stored under hash, if any.
func (s *Store) Get(hash [32]byte) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.pathFor(hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var rec Record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, false, err
	}
	if rec.Schema != schemaVersion {
		return nil, false, nil
	}
	return &rec, true, nil
}

// DropAll removes every cached entry.
func (s *Store) DropAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(s.dir)
}
