package sessions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gramctl-io/gramctl/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.yaml"))
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := models.NewSession("alice", []byte(`{"cookies":"secret"}`))
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Username != saved.Username {
		t.Errorf("Expected username %q, got %q", saved.Username, loaded.Username)
	}
	if loaded.State != saved.State {
		t.Errorf("State blob did not round-trip")
	}
	if !loaded.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", saved.CreatedAt, loaded.CreatedAt)
	}

	state, err := loaded.DecodeState()
	if err != nil {
		t.Fatalf("DecodeState failed: %v", err)
	}
	if string(state) != `{"cookies":"secret"}` {
		t.Errorf("Decoded state = %q", state)
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	store := newTestStore(t)

	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file returned error: %v", err)
	}
	if !session.IsZero() {
		t.Errorf("Expected absent session, got %+v", session)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated yaml", "username: alice\nstate: \"eyJj"},
		{"not yaml at all", "\x00\x01\x02 garbage"},
		{"empty file", ""},
		{"valid yaml missing owner", "version: 1\nstate: YWJj\n"},
		{"valid yaml missing state", "version: 1\nusername: alice\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := os.WriteFile(store.Path(), []byte(test.content), 0o600); err != nil {
				t.Fatal(err)
			}

			session, err := store.Load()
			if err != nil {
				t.Fatalf("Load on corrupt file returned error: %v", err)
			}
			if !session.IsZero() {
				t.Errorf("Expected absent session, got %+v", session)
			}
		})
	}
}

func TestStore_SavePermissions(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(models.NewSession("alice", []byte("blob"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}

func TestStore_SaveReplacesAtomically(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(models.NewSession("alice", []byte("first"))); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := store.Save(models.NewSession("alice", []byte("second"))); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	state, _ := loaded.DecodeState()
	if string(state) != "second" {
		t.Errorf("Expected latest blob, got %q", state)
	}

	// No temp files may survive a successful save.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly the session file, found %d entries", len(entries))
	}
}

func TestStore_SaveRejectsEmptySession(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(models.Session{}); err == nil {
		t.Error("Expected error saving an empty session")
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(models.NewSession("alice", []byte("blob"))); err != nil {
		t.Fatal(err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Second clear failed: %v", err)
	}

	session, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !session.IsZero() {
		t.Error("Expected absent session after clear")
	}
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "session.yaml")
	store := NewStore(path)

	if err := store.Save(models.NewSession("alice", []byte("blob"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("Expected 0700 directory permissions, got %o", perm)
	}
}
