package snapshot

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/betbot/gokalshi/internal/metrics"
	"github.com/betbot/gokalshi/pkg/kalshi"
)

const keyPrefix = "snapshot:"

// ErrNotFound is returned by Get for an unknown snapshot id.
var ErrNotFound = errors.New("snapshot not found")

// Store is a Badger-backed archive of market listings, one JSON value
// per capture.
type Store struct {
	db *badger.DB
}

// Snapshot is one captured markets listing together with the filters
// that produced it.
type Snapshot struct {
	ID      string          `json:"id"`
	TakenAt time.Time       `json:"taken_at"`
	Status  string          `json:"status,omitempty"`
	Search  string          `json:"search,omitempty"`
	SortBy  string          `json:"sort_by,omitempty"`
	Markets []kalshi.Market `json:"markets"`
}

// Summary is the listing row for one stored snapshot.
type Summary struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Status  string    `json:"status,omitempty"`
	Count   int       `json:"count"`
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("snapshot: path is required")
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot store")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores one snapshot and returns its id. A zero TakenAt is set to
// now; the id is the capture time in RFC3339Nano, so ids sort
// chronologically.
func (s *Store) Save(snap *Snapshot) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("snapshot: store not opened")
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	if snap.ID == "" {
		snap.ID = snap.TakenAt.UTC().Format(time.RFC3339Nano)
	}
	value, err := json.Marshal(snap)
	if err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+snap.ID), value)
	})
	if err != nil {
		return "", errors.Wrap(err, "write snapshot")
	}
	metrics.SnapshotSaves.Add(1)
	return snap.ID, nil
}

// Get loads one snapshot by id.
func (s *Store) Get(id string) (*Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("snapshot: store not opened")
	}
	var snap Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "read snapshot")
	}
	metrics.SnapshotLoads.Add(1)
	return &snap, nil
}

// List returns summaries of every stored snapshot, newest first.
func (s *Store) List() ([]Summary, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("snapshot: store not opened")
	}
	var out []Summary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var snap Snapshot
				if err := json.Unmarshal(val, &snap); err != nil {
					return err
				}
				out = append(out, Summary{
					ID:      snap.ID,
					TakenAt: snap.TakenAt,
					Status:  snap.Status,
					Count:   len(snap.Markets),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}
