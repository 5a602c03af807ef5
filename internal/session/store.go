package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/altius-edu/portal-service/internal/models"
)

// Record is one persisted session: the principal, its opaque bearer token and
// the derived authentication flag. IsAuthenticated is true iff both principal
// and token are present.
type Record struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// Store holds authenticated sessions behind an injected Storage adapter.
// It is an application-scoped collaborator, not a global: construct one in
// main and pass it down. The store never inspects token validity; an expired
// token fails at the identity provider on the next request.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Login unconditionally replaces the session under key with the given
// principal and token, and persists it. There is no merge with prior state.
func (s *Store) Login(ctx context.Context, key string, user *models.User, token string) error {
	rec := &Record{
		User:            user,
		Token:           token,
		IsAuthenticated: user != nil && token != "",
	}
	return s.persist(ctx, key, rec)
}

// Logout clears the session and erases the durable entry. Idempotent.
func (s *Store) Logout(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// UpdateUser shallow-merges the patch into the stored principal. The token and
// authentication flag are untouched. Without a principal it is a no-op.
func (s *Store) UpdateUser(ctx context.Context, key string, patch models.UserUpdate) error {
	rec, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if rec.User == nil {
		return nil
	}
	patch.Apply(rec.User)
	return s.persist(ctx, key, rec)
}

// Get rehydrates the session from durable storage. An absent or malformed
// entry yields a clean unauthenticated record rather than an error.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Record{}, nil
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("Malformed session record, starting unauthenticated", "key", key, "error", err)
		return &Record{}, nil
	}

	// Re-derive the invariant instead of trusting the stored flag.
	rec.IsAuthenticated = rec.User != nil && rec.Token != ""
	return &rec, nil
}

func (s *Store) persist(ctx context.Context, key string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, key, data)
}
