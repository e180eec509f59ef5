package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestSendResetCode_RequestShape は送信リクエストの内容を検証する。
func TestSendResetCode_RequestShape(t *testing.T) {
	var gotAPIKey string
	var gotBody brevoRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewBrevoClient(server.Client(), discardLogger(), "test-api-key", "FirstSportz", "noreply@example.com")
	client.endpoint = server.URL

	err := client.SendResetCode(context.Background(), "user@example.com", "12345")
	if err != nil {
		t.Fatalf("SendResetCode returned error: %v", err)
	}

	if gotAPIKey != "test-api-key" {
		t.Errorf("api-key = %q, want test-api-key", gotAPIKey)
	}
	if gotBody.Sender.Email != "noreply@example.com" || gotBody.Sender.Name != "FirstSportz" {
		t.Errorf("sender = %+v", gotBody.Sender)
	}
	if len(gotBody.To) != 1 || gotBody.To[0].Email != "user@example.com" {
		t.Errorf("to = %+v, want [user@example.com]", gotBody.To)
	}
	if !strings.Contains(gotBody.HTMLContent, "12345") {
		t.Errorf("html content %q should contain the code", gotBody.HTMLContent)
	}
}

// TestSendResetCode_ErrorStatus はエラーステータスがエラーになることを検証する。
func TestSendResetCode_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewBrevoClient(server.Client(), discardLogger(), "key", "n", "e@example.com")
	client.endpoint = server.URL

	if err := client.SendResetCode(context.Background(), "user@example.com", "12345"); err == nil {
		t.Fatal("SendResetCode returned nil error for 400 response")
	}
}
