package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/jsnanigans/retime/pkg/retime"
)

var ErrNotFound = errors.New("not found")

const (
	baselinePrefix = "baseline:"
	currentPrefix  = "current:"
	rangesPrefix   = "ranges:"
	seqPrefix      = "seq:"
)

// Store persists baseline and current documents plus confirmation ranges,
// keyed by document id, in a badger database with JSON values.
type Store struct {
	db *badger.DB
}

// OpenStore opens (or creates) the database under dir.
func OpenStore(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logging is too chatty; slog covers us
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dir, err)
	}
	logger.Info("store opened", "dir", dir)
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) getJSON(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SaveBaseline stores the trusted timed document for id.
func (s *Store) SaveBaseline(id string, doc retime.Document) error {
	return s.setJSON(baselinePrefix+id, doc)
}

// GetBaseline retrieves the trusted timed document for id.
func (s *Store) GetBaseline(id string) (retime.Document, error) {
	var doc retime.Document
	err := s.getJSON(baselinePrefix+id, &doc)
	return doc, err
}

// SaveCurrent stores the latest realigned document for id.
func (s *Store) SaveCurrent(id string, doc retime.Document) error {
	return s.setJSON(currentPrefix+id, doc)
}

// GetCurrent retrieves the latest realigned document for id.
func (s *Store) GetCurrent(id string) (retime.Document, error) {
	var doc retime.Document
	err := s.getJSON(currentPrefix+id, &doc)
	return doc, err
}

// SaveRanges stores the confirmation ranges for id.
func (s *Store) SaveRanges(id string, ranges []retime.CharRange) error {
	return s.setJSON(rangesPrefix+id, ranges)
}

// GetRanges retrieves the confirmation ranges for id. A document with no
// saved ranges yields an empty slice, not an error.
func (s *Store) GetRanges(id string) ([]retime.CharRange, error) {
	var ranges []retime.CharRange
	err := s.getJSON(rangesPrefix+id, &ranges)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ranges, err
}

// LastSeq returns the last applied edit sequence number for id; zero if the
// document was never edited.
func (s *Store) LastSeq(id string) (int64, error) {
	var seq int64
	err := s.getJSON(seqPrefix+id, &seq)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	return seq, err
}

// SetSeq records the last applied edit sequence number for id.
func (s *Store) SetSeq(id string, seq int64) error {
	return s.setJSON(seqPrefix+id, seq)
}

// HasBaseline reports whether a baseline exists for id.
func (s *Store) HasBaseline(id string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(baselinePrefix + id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
