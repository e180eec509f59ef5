// Package mail はトランザクションメールの送信機能を提供する。
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// defaultEndpoint はBrevoトランザクションメールAPIのエンドポイント。
const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Mailer はメール送信のインターフェース。
type Mailer interface {
	// SendResetCode はパスワードリセットコードを記載したメールを送信する。
	SendResetCode(ctx context.Context, toEmail, code string) error
}

// BrevoClient はBrevoトランザクションメールAPIのクライアント。
type BrevoClient struct {
	httpClient  *http.Client
	logger      *slog.Logger
	endpoint    string // テスト用にエンドポイントを差し替え可能
	apiKey      string
	senderName  string
	senderEmail string
}

// NewBrevoClient はBrevoClientの新しいインスタンスを生成する。
func NewBrevoClient(httpClient *http.Client, logger *slog.Logger, apiKey, senderName, senderEmail string) *BrevoClient {
	return &BrevoClient{
		httpClient:  httpClient,
		logger:      logger,
		endpoint:    defaultEndpoint,
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
	}
}

// brevoRequest はBrevo送信リクエストのボディ。
type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// SendResetCode はパスワードリセットコードを記載したメールを送信する。
func (c *BrevoClient) SendResetCode(ctx context.Context, toEmail, code string) error {
	payload, err := json.Marshal(brevoRequest{
		Sender:  brevoAddress{Name: c.senderName, Email: c.senderEmail},
		To:      []brevoAddress{{Email: toEmail}},
		Subject: "Password reset code",
		HTMLContent: fmt.Sprintf(
			"<p>Your password reset code is <strong>%s</strong>.</p><p>The code expires in 1 hour.</p>",
			code,
		),
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("メールAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Error("メールAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// compile-time interface check
var _ Mailer = (*BrevoClient)(nil)
