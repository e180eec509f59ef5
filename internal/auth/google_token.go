package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// defaultTokenInfoURL はGoogleのIDトークン検証エンドポイント。
const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleTokenVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
// モバイルクライアントはGoogleサインインで得たIDトークンをそのまま送信してくる。
type GoogleTokenVerifier struct {
	httpClient *http.Client
	clientID   string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewGoogleTokenVerifier はGoogleTokenVerifierを生成する。
func NewGoogleTokenVerifier(httpClient *http.Client, clientID string) *GoogleTokenVerifier {
	return &GoogleTokenVerifier{
		httpClient: httpClient,
		clientID:   clientID,
		endpoint:   defaultTokenInfoURL,
	}
}

// tokenInfoResponse はtokeninfoエンドポイントのレスポンス。
type tokenInfoResponse struct {
	Aud   string `json:"aud"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify はIDトークンを検証し、外部アイデンティティ情報を返す。
// audクレームが自アプリのクライアントIDと一致しないトークンは拒否する。
func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	if idToken == "" {
		return nil, fmt.Errorf("empty ID token")
	}

	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if info.Aud != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("empty sub in tokeninfo response")
	}

	return &ExternalIdentity{
		Provider:       "google",
		ProviderUserID: info.Sub,
		Email:          info.Email,
		Name:           info.Name,
	}, nil
}

// compile-time interface check
var _ TokenVerifier = (*GoogleTokenVerifier)(nil)
