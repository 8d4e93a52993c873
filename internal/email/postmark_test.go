package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMagicLinkLogin(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://familyhub.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendMagicLink("alice@example.com", "abc123", "login", ""); err != nil {
		t.Fatalf("send magic link: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "Sign in to FamilyHub" {
		t.Errorf("Subject = %q, want %q", received.Subject, "Sign in to FamilyHub")
	}
	if !strings.Contains(received.TextBody, "https://familyhub.test/auth/verify?token=abc123") {
		t.Errorf("TextBody %q missing verify link", received.TextBody)
	}
}

func TestSendMagicLinkInvite(t *testing.T) {
	var received postmarkEmail

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://familyhub.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendMagicLink("bob@example.com", "xyz789", "invite", "Smith Family"); err != nil {
		t.Fatalf("send magic link: %v", err)
	}

	if received.Subject != "You've been invited to Smith Family on FamilyHub" {
		t.Errorf("Subject = %q, want invite subject", received.Subject)
	}
}

func TestSendMagicLinkNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com", "https://familyhub.test")

	if err := client.SendMagicLink("alice@example.com", "abc123", "login", ""); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendMagicLinkAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", "https://familyhub.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	if err := client.SendMagicLink("alice@example.com", "abc123", "login", ""); err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestUpdateConfig(t *testing.T) {
	client := NewClient("", "", "")
	if client.Configured() {
		t.Error("expected Configured() = false initially")
	}

	client.UpdateConfig("new-token", "new@example.com", "https://new.example.com")
	if !client.Configured() {
		t.Error("expected Configured() = true after UpdateConfig")
	}

	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}
	if err := client.SendMagicLink("alice@example.com", "tok123", "login", ""); err != nil {
		t.Fatalf("send after update: %v", err)
	}
	if gotToken != "new-token" {
		t.Errorf("server token = %q, want %q", gotToken, "new-token")
	}

	client.UpdateConfig("", "", "")
	if client.Configured() {
		t.Error("expected Configured() = false after clearing")
	}
}

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}
