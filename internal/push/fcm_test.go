package push

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestSend_Success は正常な配信リクエストの内容を検証する。
func TestSend_Success(t *testing.T) {
	var gotAuth string
	var gotBody fcmRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":1,"failure":0}`))
	}))
	defer server.Close()

	client := NewFCMClient(server.Client(), discardLogger(), server.URL, "test-server-key")

	err := client.Send(context.Background(), "device-token-1", Message{
		Title:  "速報",
		Body:   "決勝戦の結果",
		NewsID: "news-1",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotAuth != "key=test-server-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "key=test-server-key")
	}
	if gotBody.To != "device-token-1" {
		t.Errorf("to = %q, want device-token-1", gotBody.To)
	}
	if gotBody.Notification.Title != "速報" || gotBody.Notification.Body != "決勝戦の結果" {
		t.Errorf("notification = %+v", gotBody.Notification)
	}
	if gotBody.Data.NewsID != "news-1" {
		t.Errorf("data.newsId = %q, want news-1", gotBody.Data.NewsID)
	}
}

// TestSend_EmptyDeviceToken は空トークンがエラーになることを検証する。
func TestSend_EmptyDeviceToken(t *testing.T) {
	client := NewFCMClient(http.DefaultClient, discardLogger(), "http://unused", "key")

	if err := client.Send(context.Background(), "", Message{Title: "t"}); err == nil {
		t.Fatal("Send returned nil error for empty device token")
	}
}

// TestSend_ErrorStatus はエラーステータスがエラーになることを検証する。
func TestSend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewFCMClient(server.Client(), discardLogger(), server.URL, "bad-key")

	if err := client.Send(context.Background(), "device-token-1", Message{Title: "t"}); err == nil {
		t.Fatal("Send returned nil error for 401 response")
	}
}

// TestSend_RejectedMessage は全件失敗のレスポンスがエラーになることを検証する。
func TestSend_RejectedMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":0,"failure":1}`))
	}))
	defer server.Close()

	client := NewFCMClient(server.Client(), discardLogger(), server.URL, "key")

	if err := client.Send(context.Background(), "stale-token", Message{Title: "t"}); err == nil {
		t.Fatal("Send returned nil error for rejected message")
	}
}
