package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/timus-feed/internal/crypto"
)

// ErrNotConfigured is returned when a backend is missing required settings
var ErrNotConfigured = errors.New("storage is not configured")

// Store is the seen-set contract
type Store interface {
	// Get returns the snapshot stored for id. found is false when the id has
	// never been stored.
	Get(ctx context.Context, id string) (value []byte, found bool, err error)
	// Put stores the snapshot for id. An id that is already stored keeps its
	// first snapshot and Put returns nil.
	Put(ctx context.Context, id string, value []byte) error
	// Close releases connections or file handles
	Close() error
}

// sealedStore encrypts values on the way in and decrypts them on the way out
type sealedStore struct {
	Store
	enc *crypto.Encryptor
}

// Sealed wraps s so snapshots are encrypted at rest. A nil encryptor returns s.
func Sealed(s Store, enc *crypto.Encryptor) Store {
	if enc == nil {
		return s
	}
	return &sealedStore{Store: s, enc: enc}
}

func (s *sealedStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	value, found, err := s.Store.Get(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	plain, err := s.enc.Decrypt(value)
	if err != nil {
		return nil, false, fmt.Errorf("decrypting snapshot %q: %w", id, err)
	}
	return plain, true, nil
}

func (s *sealedStore) Put(ctx context.Context, id string, value []byte) error {
	sealed, err := s.enc.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypting snapshot %q: %w", id, err)
	}
	return s.Store.Put(ctx, id, sealed)
}
