package arthax

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// IdentityKey is the storage key holding the user identity.
const IdentityKey = "artha_user_id"

// MinIdentityLength is the minimum length, in characters, of a trimmed identity.
const MinIdentityLength = 5

// Identity is the opaque user identifier, a phone number in practice.
type Identity struct {
	ID string
}

func (id Identity) String() string { return id.ID }

// ValidationError reports a local precondition failure: a missing identity or
// an invalid input field. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IdentityStore owns the single durable identity.
type IdentityStore struct {
	mu      sync.Mutex
	storage Storage
}

// NewIdentityStore returns a store persisting in storage.
func NewIdentityStore(storage Storage) *IdentityStore {
	return &IdentityStore{storage: storage}
}

// Get returns the persisted identity, if any. A storage failure is reported as
// an absent identity, so features stay locked rather than using a stale value.
func (s *IdentityStore) Get() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.storage.GetItem(IdentityKey)
	if err != nil || !ok {
		return Identity{}, false
	}
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) < MinIdentityLength {
		return Identity{}, false
	}
	return Identity{ID: v}, true
}

// Set validates, trims and persists candidate, overwriting any previous identity.
func (s *IdentityStore) Set(candidate string) (Identity, error) {
	v := strings.TrimSpace(candidate)
	if utf8.RuneCountInString(v) < MinIdentityLength {
		return Identity{}, &ValidationError{
			Field:   "identity",
			Message: fmt.Sprintf("must be at least %d characters", MinIdentityLength),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.SetItem(IdentityKey, v); err != nil {
		return Identity{}, fmt.Errorf("cannot persist identity: %w", err)
	}
	return Identity{ID: v}, nil
}
