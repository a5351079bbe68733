package app

import (
	"errors"
	"testing"

	"mailroom/pkg/domain"
	"mailroom/pkg/events"
	"mailroom/pkg/storage"
	"mailroom/pkg/store"
)

const testPassword = "Str0ng#Pass!23"

func isErr(err, kind error) bool {
	return err != nil && errors.Is(err, kind)
}

func newTestApp(t *testing.T) (*App, *events.RecordingPublisher) {
	t.Helper()
	rec := &events.RecordingPublisher{}
	a, err := New(Config{
		Store:     store.NewMemoryStore(),
		Sessions:  store.NewMemorySessionStore(),
		Objects:   storage.NewMemoryObjectStore(),
		Publisher: rec,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, rec
}

func signUp(t *testing.T, a *App, email string) domain.User {
	t.Helper()
	user, _, err := a.SignUp(email, "", testPassword)
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return user
}

func TestSignUpAndLogin(t *testing.T) {
	a, _ := newTestApp(t)

	user, token, err := a.SignUp("alice@example.com", "alice", testPassword)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected username: %q", user.Username)
	}

	got, ok := a.UserFromToken(token)
	if !ok || got.ID != user.ID {
		t.Fatalf("expected token to resolve user")
	}

	if _, _, err := a.Login("alice@example.com", "wrong-password"); !isErr(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := a.Login("alice@example.com", testPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	a, _ := newTestApp(t)
	signUp(t, a, "alice@example.com")
	if _, _, err := a.SignUp("alice@example.com", "", testPassword); !isErr(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	a, _ := newTestApp(t)
	if _, _, err := a.SignUp("bob@example.com", "", "weak"); !isErr(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignUpDerivesUsernameFromEmail(t *testing.T) {
	a, _ := newTestApp(t)
	user := signUp(t, a, "carol@example.com")
	if user.Username != "carol" {
		t.Fatalf("unexpected username: %q", user.Username)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	a, _ := newTestApp(t)
	_, token, err := a.SignUp("dave@example.com", "", testPassword)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := a.Logout(token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := a.UserFromToken(token); ok {
		t.Fatalf("expected token to be invalid after logout")
	}
}
