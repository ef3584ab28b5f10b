package bolt

import (
	"context"
	"strings"
	"sync"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/internal/infrastructure/boltdb"
	"github.com/fastygo/taskwise/repository"
)

const apiKeyKey = "gemini_api_key"

type credentialStore struct {
	db     *bbolt.DB
	bucket []byte

	mu       sync.RWMutex
	fallback string
}

// NewCredentialStore keeps the API key in the settings bucket. fallback, usually
// taken from the environment, is returned when nothing has been stored.
func NewCredentialStore(db *bbolt.DB, fallback string) repository.CredentialStore {
	return &credentialStore{
		db:       db,
		bucket:   []byte(boltdb.BucketSettings),
		fallback: strings.TrimSpace(fallback),
	}
}

func (s *credentialStore) APIKey(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var key string
	if s.db != nil {
		if err := s.db.View(func(tx *bbolt.Tx) error {
			key = string(tx.Bucket(s.bucket).Get([]byte(apiKeyKey)))
			return nil
		}); err != nil {
			return "", err
		}
	}
	if key == "" {
		s.mu.RLock()
		key = s.fallback
		s.mu.RUnlock()
	}
	if key == "" {
		return "", domain.ErrCredentialMissing
	}
	return key, nil
}

func (s *credentialStore) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.NewError(domain.ErrCodeInvalid, "api key must not be blank")
	}
	if s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(apiKeyKey), []byte(key))
	})
}

// ClearAPIKey removes the stored key. The environment fallback is dropped too so
// the caller observes a missing credential afterwards.
func (s *credentialStore) ClearAPIKey(ctx context.Context) error {
	s.mu.Lock()
	s.fallback = ""
	s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(apiKeyKey))
	})
}
