package session

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/altius-edu/portal-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testUser() *models.User {
	return &models.User{
		ID:        "u-1",
		Email:     "ana@altius.edu",
		FirstName: "Ana",
		LastName:  "García",
		Role:      models.RoleStudent,
		IsActive:  true,
	}
}

func TestStoreLogin(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testLogger())
	ctx := context.Background()

	user := testUser()
	if err := store.Login(ctx, "s1", user, "tok-123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	rec, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !rec.IsAuthenticated {
		t.Error("expected authenticated session after login")
	}
	if rec.Token != "tok-123" {
		t.Errorf("token = %q, want tok-123", rec.Token)
	}
	if rec.User == nil || rec.User.ID != user.ID || rec.User.Email != user.Email {
		t.Errorf("stored user = %+v, want %+v", rec.User, user)
	}
}

func TestStoreLoginOverwritesWholesale(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testLogger())
	ctx := context.Background()

	if err := store.Login(ctx, "s1", testUser(), "tok-old"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	other := &models.User{ID: "u-2", Email: "luis@altius.edu", Role: models.RoleTeacher}
	if err := store.Login(ctx, "s1", other, "tok-new"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	rec, _ := store.Get(ctx, "s1")
	if rec.User.ID != "u-2" || rec.Token != "tok-new" {
		t.Errorf("expected second login to fully replace the record, got %+v", rec)
	}
}

func TestStoreLogout(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	if err := store.Login(ctx, "s1", testUser(), "tok-123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(ctx, "s1"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	rec, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.IsAuthenticated || rec.User != nil || rec.Token != "" {
		t.Errorf("expected cleared session, got %+v", rec)
	}
	if _, err := storage.Get(ctx, "s1"); err != ErrNotFound {
		t.Error("expected durable entry to be erased on logout")
	}

	// Idempotent.
	if err := store.Logout(ctx, "s1"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestStoreUpdateUser(t *testing.T) {
	store := NewStore(NewMemoryStorage(), testLogger())
	ctx := context.Background()

	if err := store.Login(ctx, "s1", testUser(), "tok-123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	first := "X"
	if err := store.UpdateUser(ctx, "s1", models.UserUpdate{FirstName: &first}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, _ := store.Get(ctx, "s1")
	if rec.User.FirstName != "X" {
		t.Errorf("first name = %q, want X", rec.User.FirstName)
	}
	if rec.User.LastName != "García" || rec.User.Email != "ana@altius.edu" {
		t.Error("fields not in the patch must be untouched")
	}
	if rec.Token != "tok-123" || !rec.IsAuthenticated {
		t.Error("token and authentication flag must be untouched by profile updates")
	}
}

func TestStoreUpdateUserWithoutPrincipalIsNoop(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	first := "X"
	if err := store.UpdateUser(ctx, "s1", models.UserUpdate{FirstName: &first}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := storage.Get(ctx, "s1"); err != ErrNotFound {
		t.Error("expected no record to be created by an update without a principal")
	}
}

func TestStoreMalformedRecordStartsUnauthenticated(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, testLogger())
	ctx := context.Background()

	if err := storage.Set(ctx, "s1", []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.IsAuthenticated || rec.User != nil {
		t.Errorf("expected unauthenticated session for malformed storage, got %+v", rec)
	}
}

func TestStoreRoundTripAcrossRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	storage := NewRedisStorage(client, 0)

	store := NewStore(storage, testLogger())
	if err := store.Login(ctx, "s1", testUser(), "tok-123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh store over the same storage models a process restart.
	restarted := NewStore(NewRedisStorage(client, 0), testLogger())
	rec, err := restarted.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get after restart: %v", err)
	}
	if !rec.IsAuthenticated || rec.Token != "tok-123" {
		t.Errorf("expected identical session after restart, got %+v", rec)
	}
	if rec.User == nil || rec.User.ID != "u-1" || rec.User.Role != models.RoleStudent {
		t.Errorf("principal not restored: %+v", rec.User)
	}
}

func TestRedisStorageTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	storage := NewRedisStorage(client, time.Minute)
	if err := storage.Set(ctx, "s1", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := storage.Get(ctx, "s1"); err != ErrNotFound {
		t.Errorf("expected expired entry to read as not found, got %v", err)
	}
}
