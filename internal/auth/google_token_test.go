package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestVerify_ValidToken は有効なトークンでアイデンティティが返ることを検証する。
func TestVerify_ValidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_token"); got != "valid-token" {
			t.Errorf("id_token = %q, want valid-token", got)
		}
		w.Write([]byte(`{"aud":"client-1","sub":"google-user-1","email":"user@example.com","name":"Test User"}`))
	}))
	defer server.Close()

	verifier := NewGoogleTokenVerifier(server.Client(), "client-1")
	verifier.endpoint = server.URL

	got, err := verifier.Verify(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if got.Provider != "google" || got.ProviderUserID != "google-user-1" {
		t.Errorf("identity = %+v", got)
	}
	if got.Email != "user@example.com" || got.Name != "Test User" {
		t.Errorf("identity = %+v", got)
	}
}

// TestVerify_AudienceMismatch はaud不一致が拒否されることを検証する。
func TestVerify_AudienceMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"aud":"someone-elses-client","sub":"google-user-1"}`))
	}))
	defer server.Close()

	verifier := NewGoogleTokenVerifier(server.Client(), "client-1")
	verifier.endpoint = server.URL

	if _, err := verifier.Verify(context.Background(), "token"); err == nil {
		t.Fatal("Verify returned nil error for audience mismatch")
	}
}

// TestVerify_InvalidToken はGoogle側の拒否がエラーになることを検証する。
func TestVerify_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer server.Close()

	verifier := NewGoogleTokenVerifier(server.Client(), "client-1")
	verifier.endpoint = server.URL

	if _, err := verifier.Verify(context.Background(), "garbage"); err == nil {
		t.Fatal("Verify returned nil error for rejected token")
	}
}

// TestVerify_EmptyToken は空トークンがエラーになることを検証する。
func TestVerify_EmptyToken(t *testing.T) {
	verifier := NewGoogleTokenVerifier(http.DefaultClient, "client-1")

	if _, err := verifier.Verify(context.Background(), ""); err == nil {
		t.Fatal("Verify returned nil error for empty token")
	}
}
