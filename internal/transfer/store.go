// store.go - bbolt persistence for transfer state and the event log.
package transfer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketTransfers = []byte("transfers")
	bucketEvents    = []byte("events")
)

// ErrNotFound is returned when a handle has no persisted state.
var ErrNotFound = errors.New("transfer: not found")

// Store persists transfer state and events in a bbolt database. States are
// keyed by handle; events by handle plus a monotonic sequence number, so a
// prefix scan returns them in emission order.
type Store struct {
	db *bolt.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTransfers, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveState writes the state's JSON encoding under its handle.
func (s *Store) SaveState(st *State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransfers).Put(st.Handle[:], payload)
	})
}

// LoadState reads one transfer's state.
func (s *Store) LoadState(handle uuid.UUID) (*State, error) {
	var st State
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTransfers).Get(handle[:])
		if raw == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return json.Unmarshal(raw, &st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// LoadAll reads every persisted transfer state.
func (s *Store) LoadAll() ([]*State, error) {
	var states []*State
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransfers).ForEach(func(_, raw []byte) error {
			var st State
			if err := json.Unmarshal(raw, &st); err != nil {
				return fmt.Errorf("decode state: %w", err)
			}
			states = append(states, &st)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// StoredEvent is one persisted event log entry.
type StoredEvent struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// AppendEvent appends an event to the transfer's log.
func (s *Store) AppendEvent(handle uuid.UUID, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	entry, err := json.Marshal(StoredEvent{Name: ev.EventName(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode event entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(eventKey(handle, seq), entry)
	})
}

// Events returns the transfer's event log in emission order.
func (s *Store) Events(handle uuid.UUID) ([]StoredEvent, error) {
	var events []StoredEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		prefix := handle[:]
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var ev StoredEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("decode event: %w", err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func eventKey(handle uuid.UUID, seq uint64) []byte {
	key := make([]byte, len(handle)+8)
	copy(key, handle[:])
	binary.BigEndian.PutUint64(key[len(handle):], seq)
	return key
}
