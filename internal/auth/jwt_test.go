package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "issuer")
	token, expiresAt, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected subject: %q", userID)
	}
}

func TestTokenIssueInvalid(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "issuer")
	if _, _, err := issuer.Issue(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestTokenVerifyMissing(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "issuer")
	if _, err := issuer.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, "issuer")
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}
}

func TestTokenVerifyTampered(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, "issuer")
	token, _, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	other := NewTokenIssuer("other-secret", time.Hour, "issuer")
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature mismatch to be invalid, got %v", err)
	}
	if _, err := issuer.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected tampered token to be invalid, got %v", err)
	}
}

func TestTokenVerifyWrongIssuer(t *testing.T) {
	token, _, err := NewTokenIssuer("secret", time.Hour, "someone-else").Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := NewTokenIssuer("secret", time.Hour, "issuer").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issuer mismatch to be invalid, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	if _, err := TokenFromHeader("nope"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
}
