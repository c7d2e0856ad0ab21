// Package storage persists finished analyses, engine preferences and usage
// counters in a BadgerDB database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	petname "github.com/dustinkirkland/golang-petname"
)

// Storage keys
const (
	keyPreferences    = "preferences"
	keyStats          = "stats"
	analysisKeyPrefix = "analysis/"
)

// ErrClosed is returned by every operation on a closed Storage.
var ErrClosed = errors.New("storage: closed")

// Analysis is a finished search result for one position, keyed by its
// Zobrist hash. Moves are kept in coordinate notation.
type Analysis struct {
	FEN       string    `json:"fen"`
	BestMove  string    `json:"best_move"`
	Score     int       `json:"score"`
	Depth     int       `json:"depth"`
	Nodes     uint64    `json:"nodes"`
	PV        []string  `json:"pv"`
	Session   string    `json:"session"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences are the UCI options worth remembering between runs.
type Preferences struct {
	HashMB        int  `json:"hash_mb"`
	NullMove      bool `json:"null_move"`
	AnalysisCache bool `json:"analysis_cache"`
}

// DefaultPreferences returns the settings used before anything was saved.
func DefaultPreferences() *Preferences {
	return &Preferences{
		HashMB:   16,
		NullMove: true,
	}
}

// Stats counts what the engine has done across sessions.
type Stats struct {
	Searches  int    `json:"searches"`
	CacheHits int    `json:"cache_hits"`
	Nodes     uint64 `json:"nodes"`
	Sessions  int    `json:"sessions"`
}

// CacheHitRate returns the share of searches answered from stored analyses,
// as a percentage (0-100).
func (s *Stats) CacheHitRate() float64 {
	if s.Searches == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.Searches) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault() (*Storage, error) {
	dir, err := databaseDir()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return Open(dir)
}

// DataDir returns the per-user directory holding ace's files, creating it
// if needed. macOS and Windows use the user config root; elsewhere the XDG
// data home is used, falling back to ~/.local/share.
func DataDir() (string, error) {
	var root string
	var err error
	switch runtime.GOOS {
	case "darwin", "windows":
		root, err = os.UserConfigDir()
	default:
		root = os.Getenv("XDG_DATA_HOME")
		if root == "" {
			var home string
			home, err = os.UserHomeDir()
			root = filepath.Join(home, ".local", "share")
		}
	}
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, "ace")
	return dir, os.MkdirAll(dir, 0o755)
}

func databaseDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	db := filepath.Join(dir, "db")
	return db, os.MkdirAll(db, 0o755)
}

// Close closes the database. Closing twice is harmless.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// NewSession returns a fresh human-readable session name and counts it.
func (s *Storage) NewSession() (string, error) {
	name := petname.Generate(2, "-")
	err := s.updateStats(func(st *Stats) { st.Sessions++ })
	return name, err
}

func analysisKey(hash uint64) []byte {
	return fmt.Appendf(nil, "%s%016x", analysisKeyPrefix, hash)
}

// SaveAnalysis stores a for the position with the given hash, replacing any
// earlier entry. A zero CreatedAt is set to now.
func (s *Storage) SaveAnalysis(hash uint64, a *Analysis) error {
	if s.db == nil {
		return ErrClosed
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(hash), data)
	})
}

// LoadAnalysis returns the stored analysis for hash. found is false when
// there is none.
func (s *Storage) LoadAnalysis(hash uint64) (a *Analysis, found bool, err error) {
	if s.db == nil {
		return nil, false, ErrClosed
	}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(hash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		a = &Analysis{}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, a)
		})
	})
	if err != nil {
		return nil, false, err
	}
	return a, found, nil
}

// ForEachAnalysis calls fn for every stored analysis in key order. Returning
// an error from fn stops the walk and is passed back.
func (s *Storage) ForEachAnalysis(fn func(hash uint64, a *Analysis) error) error {
	if s.db == nil {
		return ErrClosed
	}
	prefix := []byte(analysisKeyPrefix)
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.Key()[len(prefix):]
			hash, err := strconv.ParseUint(string(key), 16, 64)
			if err != nil {
				return fmt.Errorf("storage: bad analysis key %q: %w", item.Key(), err)
			}
			var a Analysis
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			}); err != nil {
				return err
			}
			if err := fn(hash, &a); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAnalysis removes the entry for hash. Deleting a missing entry is
// not an error.
func (s *Storage) DeleteAnalysis(hash uint64) error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(analysisKey(hash))
	})
}

// SavePreferences saves the engine preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	if s.db == nil {
		return ErrClosed
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the engine preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if s.db == nil {
		return prefs, ErrClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// LoadStats loads the usage counters, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}
	if s.db == nil {
		return stats, ErrClosed
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordSearch counts one answered "go", from the cache or from a search.
func (s *Storage) RecordSearch(nodes uint64, cacheHit bool) error {
	return s.updateStats(func(st *Stats) {
		st.Searches++
		st.Nodes += nodes
		if cacheHit {
			st.CacheHits++
		}
	})
}

// updateStats applies fn to the stored stats in one transaction.
func (s *Storage) updateStats(fn func(*Stats)) error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		stats := &Stats{}
		item, err := txn.Get([]byte(keyStats))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		fn(stats)
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
}
