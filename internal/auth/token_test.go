package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	ac := AuthContext{UserID: 12, FamilyID: 4, Role: "parent"}
	token, err := issuer.Issue(ac, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != 12 || got.FamilyID != 4 || got.Role != "parent" {
		t.Errorf("got %+v, want user 12 family 4 role parent", got)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Minute)

	token, err := issuer.Issue(AuthContext{UserID: 1, FamilyID: 1, Role: "child"}, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(AuthContext{UserID: 1, FamilyID: 1, Role: "child"}, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected token signed with different secret to be rejected")
	}
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Error("expected garbage token to be rejected")
	}
	if _, err := issuer.Verify(strings.Repeat("x", 100)); err == nil {
		t.Error("expected garbage token to be rejected")
	}
}
