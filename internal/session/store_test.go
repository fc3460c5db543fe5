package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/callmeback/callbackd/internal/model"
)

func TestSetCredentialsPersistsAndSignals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	user := model.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PlanType: model.PlanFree}
	if err := store.SetCredentials("tok-1", user); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	select {
	case change := <-store.Changes():
		if change.Token != "tok-1" {
			t.Fatalf("unexpected change token: %q", change.Token)
		}
	default:
		t.Fatal("expected a change signal")
	}

	if store.Token() != "tok-1" {
		t.Fatalf("unexpected token: %q", store.Token())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected persisted session file: %v", err)
	}
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	first := NewStore(path)
	user := model.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PlanType: model.PlanPremium}
	if err := first.SetCredentials("tok-1", user); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if second.Token() != "tok-1" {
		t.Fatalf("expected restored token, got %q", second.Token())
	}
	restored, ok := second.User()
	if !ok || restored.Email != "alice@example.com" || restored.PlanType != model.PlanPremium {
		t.Fatalf("unexpected restored user: %+v ok=%v", restored, ok)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if store.Token() != "" {
		t.Fatalf("expected unauthenticated store, got token %q", store.Token())
	}
}

func TestClearDropsTokenAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	if err := store.SetCredentials("tok-1", model.User{ID: "u1", Email: "a@b.c", PlanType: model.PlanFree}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	<-store.Changes()

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Token() != "" {
		t.Fatal("expected empty token after clear")
	}
	select {
	case change := <-store.Changes():
		if change.Token != "" {
			t.Fatalf("expected logout change, got %q", change.Token)
		}
	default:
		t.Fatal("expected a logout change signal")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, got %v", err)
	}
}

func TestTokenStaysAuthoritativeWhenChangesOverflow(t *testing.T) {
	store := NewStore("")

	// More transitions than the buffer holds; the overflow is dropped.
	for i := 0; i < 6; i++ {
		if err := store.SetCredentials("tok", model.User{ID: "u1", Email: "a@b.c", PlanType: model.PlanFree}); err != nil {
			t.Fatalf("set credentials: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("clear: %v", err)
		}
	}

	// A consumer draining late must decide from Token(), not the stale
	// change payloads: the final state is logged out.
	drained := 0
	for {
		select {
		case <-store.Changes():
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > 4 {
		t.Fatalf("expected 1..4 buffered changes, drained %d", drained)
	}
	if store.Token() != "" {
		t.Fatalf("expected logged-out state, got token %q", store.Token())
	}
}

func TestSetCredentialsRejectsEmptyToken(t *testing.T) {
	store := NewStore("")
	if err := store.SetCredentials("  ", model.User{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}
