package identity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/medigrid/layoutsync/internal/models"
)

var bucketIdentity = []byte("identity")

// Store persists stable per-role user ids so the same machine presents the
// same participant identity across runs.
type Store struct {
	db *bbolt.DB
}

// NewStore wraps an open bbolt database, creating the identity bucket if it
// does not exist.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketIdentity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identity bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// UserID returns the stable user id for a role, generating and persisting
// one on first use.
func (s *Store) UserID(role models.Role) (string, error) {
	key := []byte("uid_" + string(role))

	var id string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdentity)
		if existing := bucket.Get(key); existing != nil {
			id = string(existing)
			return nil
		}
		id = fmt.Sprintf("%s-%s", role, strings.Split(uuid.New().String(), "-")[0])
		return bucket.Put(key, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("failed to load user id: %w", err)
	}
	return id, nil
}
