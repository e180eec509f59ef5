// Package push はFCM（Firebase Cloud Messaging）によるプッシュ通知配信を提供する。
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// PushSender はプッシュ通知配信のインターフェース。
// 通知ファンアウトサービスから利用する。
type PushSender interface {
	// Send は単一デバイスへプッシュ通知を配信する。
	// 配信失敗はエラーで返し、リトライは行わない（呼び出し元がbest-effortで扱う）。
	Send(ctx context.Context, deviceToken string, msg Message) error
}

// Message はプッシュ通知1件の内容を表す。
type Message struct {
	Title  string
	Body   string
	NewsID string
}

// FCMClient はFCMレガシーHTTP APIのクライアント。
type FCMClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	serverKey  string
}

// NewFCMClient はFCMClientの新しいインスタンスを生成する。
func NewFCMClient(httpClient *http.Client, logger *slog.Logger, endpoint, serverKey string) *FCMClient {
	return &FCMClient{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		serverKey:  serverKey,
	}
}

// fcmRequest はFCM送信リクエストのボディ。
type fcmRequest struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
	Data         fcmData         `json:"data"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmData struct {
	NewsID string `json:"newsId"`
}

// fcmResponse はFCM送信レスポンスの成否カウント部分。
type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send は単一デバイスへプッシュ通知を配信する。
func (c *FCMClient) Send(ctx context.Context, deviceToken string, msg Message) error {
	if deviceToken == "" {
		return fmt.Errorf("empty device token")
	}

	payload, err := json.Marshal(fcmRequest{
		To: deviceToken,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: fcmData{NewsID: msg.NewsID},
	})
	if err != nil {
		return fmt.Errorf("failed to encode FCM request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create FCM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("FCM呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to call FCM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("FCMがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("FCM returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read FCM response: %w", err)
	}

	var result fcmResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse FCM response: %w", err)
	}
	if result.Failure > 0 && result.Success == 0 {
		return fmt.Errorf("FCM rejected the message (failure=%d)", result.Failure)
	}

	return nil
}

// compile-time interface check
var _ PushSender = (*FCMClient)(nil)
