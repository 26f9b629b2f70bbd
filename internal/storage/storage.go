package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache keys. The version suffix guards against layout changes.
const (
	keyRookMagics   = "magics:rook:v1"
	keyBishopMagics = "magics:bishop:v1"
)

// MagicSet holds the 64 magic multipliers for one slider type together
// with bookkeeping about the search that produced them.
type MagicSet struct {
	Piece    string     `json:"piece"` // "rook" or "bishop"
	Magics   [64]uint64 `json:"magics"`
	Attempts [64]int    `json:"attempts"` // candidates tried per square
	Seeds    [8]uint64  `json:"seeds"`    // per-rank search seeds
	FoundAt  time.Time  `json:"found_at"`
}

// TotalAttempts sums the per-square attempt counts.
func (m *MagicSet) TotalAttempts() int {
	total := 0
	for _, n := range m.Attempts {
		total += n
	}
	return total
}

func magicKey(piece string) (string, error) {
	switch piece {
	case "rook":
		return keyRookMagics, nil
	case "bishop":
		return keyBishopMagics, nil
	default:
		return "", fmt.Errorf("storage: unknown piece %q", piece)
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the cache in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	return OpenStorage(dbDir)
}

// OpenStorage opens the cache at an explicit directory.
func OpenStorage(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMagics stores a magic set under its piece key, stamping FoundAt.
func (s *Storage) SaveMagics(set *MagicSet) error {
	key, err := magicKey(set.Piece)
	if err != nil {
		return err
	}

	set.FoundAt = time.Now()
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// LoadMagics loads the magic set for a piece. A cache miss is not an
// error: it returns (nil, nil).
func (s *Storage) LoadMagics(piece string) (*MagicSet, error) {
	key, err := magicKey(piece)
	if err != nil {
		return nil, err
	}

	var set *MagicSet
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			set = &MagicSet{}
			return json.Unmarshal(val, set)
		})
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}
