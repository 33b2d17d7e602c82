// Package docstore implements the transport adapter over a bbolt-backed
// document store: a per-session layout document written last-writer-wins, a
// participants sub-collection whose cardinality is the presence count, and
// snapshot-style subscriptions instead of a push socket.
//
// Contract weakness, by documented design of this variant: Publish has no
// version precondition. Conflicts are not detectable at the protocol level;
// the write always lands and the assigned version is baseVersion+1.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/pkg/api"
)

var (
	bucketSessions     = []byte("sessions")
	bucketLayouts      = []byte("layouts")
	bucketParticipants = []byte("participants")
)

// sessionDoc is the stored form of a session.
type sessionDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// layoutDoc is the stored form of the versioned layout document.
type layoutDoc struct {
	Layout    api.Layout `json:"layout"`
	UpdatedAt string     `json:"updatedAt"`
	Version   int64      `json:"version"`
}

// participantDoc is one presence document.
type participantDoc struct {
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

// Store is the bbolt document store.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the document store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	store := &Store{db: db}
	if err := store.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return store, nil
}

// NewStore wraps an already-open bbolt database.
func NewStore(db *bbolt.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.initBuckets(); err != nil {
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSessions, bucketLayouts, bucketParticipants} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) putSession(doc sessionDoc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal session doc: %w", err)
		}
		return tx.Bucket(bucketSessions).Put([]byte(doc.ID), data)
	})
}

func (s *Store) getSession(sessionID string) (sessionDoc, error) {
	var doc sessionDoc
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(sessionID))
		if data == nil {
			return errSessionMissing
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return sessionDoc{}, err
	}
	return doc, nil
}

func (s *Store) listSessions() ([]sessionDoc, error) {
	var docs []sessionDoc
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(_, data []byte) error {
			var doc sessionDoc
			if err := json.Unmarshal(data, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return docs, nil
}

// getLayout returns the layout document for a session, or the default
// version-0 document when none has been written yet.
func (s *Store) getLayout(sessionID string) (layoutDoc, error) {
	doc := layoutDoc{Version: 0, Layout: models.DefaultLayout()}
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLayouts).Get([]byte(sessionID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return layoutDoc{}, fmt.Errorf("failed to get layout doc: %w", err)
	}
	return doc, nil
}

func (s *Store) putLayout(sessionID string, doc layoutDoc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal layout doc: %w", err)
		}
		return tx.Bucket(bucketLayouts).Put([]byte(sessionID), data)
	})
}

func participantKey(sessionID, userID string) []byte {
	return []byte(sessionID + "/" + userID)
}

func (s *Store) putParticipant(sessionID, userID string, doc participantDoc) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal participant doc: %w", err)
		}
		return tx.Bucket(bucketParticipants).Put(participantKey(sessionID, userID), data)
	})
}

func (s *Store) deleteParticipant(sessionID, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketParticipants).Delete(participantKey(sessionID, userID))
	})
}

// countParticipants returns the cardinality of a session's participants
// sub-collection.
func (s *Store) countParticipants(sessionID string) (int, error) {
	count := 0
	prefix := []byte(sessionID + "/")
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketParticipants).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}
