package session

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testSession(expiresIn time.Duration) *Session {
	return &Session{
		Token:        "tok",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(expiresIn).UnixMilli(),
		User:         User{ID: "u1", Email: "u1@example.com"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	if sess, err := store.Get(); err != nil || sess != nil {
		t.Fatalf("empty store should return (nil, nil), got (%v, %v)", sess, err)
	}

	want := testSession(time.Hour)
	if err := store.Set(want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Token != want.Token || got.User.ID != want.User.ID {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if sess, _ := store.Get(); sess != nil {
		t.Fatal("cleared store should be empty")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestFileStoreExpiredAtRead(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Set(testSession(-time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if sess, err := store.Get(); err != nil || sess != nil {
		t.Fatalf("expired session should be deleted at read, got (%v, %v)", sess, err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	want := testSession(time.Hour)
	if err := store.Set(want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, _ := store.Get()
	got.Token = "mutated"

	again, _ := store.Get()
	if again.Token != "tok" {
		t.Error("mutating a returned session should not affect the store")
	}
}

func TestExpiresWithin(t *testing.T) {
	sess := testSession(10 * time.Minute)
	if sess.ExpiresWithin(5 * time.Minute) {
		t.Error("session with 10m left should not be within the 5m window")
	}
	if !sess.ExpiresWithin(15 * time.Minute) {
		t.Error("session with 10m left should be within a 15m window")
	}
}

func TestConversationStore(t *testing.T) {
	store := NewConversationStore()

	id := store.Resolve()
	if !strings.HasPrefix(id, "sess_") {
		t.Fatalf("unexpected id format: %s", id)
	}
	if again := store.Resolve(); again != id {
		t.Error("Resolve should reuse the cached id")
	}

	store.Reset()
	if fresh := store.Resolve(); fresh == id {
		t.Error("Reset should start a new conversation id")
	}
}
