// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含む。カテゴリはハンドラー層で
// HTTPステータスコードへのマッピングに使用される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, notfound, data, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeArticleNotFound  = "ARTICLE_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeEmailNotFound    = "EMAIL_NOT_FOUND"
	ErrCodeInvalidResetCode = "INVALID_RESET_CODE"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeInvalidLogin     = "INVALID_LOGIN"
	ErrCodeDataAccess       = "DATA_ACCESS_ERROR"
)

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("%s is required", field),
		Category: "validation",
		Action:   fmt.Sprintf("Provide %s in the request.", field),
	}
}

// NewInvalidRequestError はリクエスト内容不正エラーを生成する。
func NewInvalidRequestError(message, action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  message,
		Category: "validation",
		Action:   action,
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required",
		Category: "auth",
		Action:   "Sign in and retry with a valid bearer token.",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("Article not found: %s", articleID),
		Category: "notfound",
		Action:   "Check the article ID.",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "notfound",
		Action:   "Sign in again.",
	}
}

// NewEmailNotFoundError はメールアドレス未登録エラーを生成する。
func NewEmailNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotFound,
		Message:  "Email not found",
		Category: "validation",
		Action:   "Check the email address.",
	}
}

// NewInvalidResetCodeError はリセットコード不正エラーを生成する。
// 期限切れ・不一致のどちらでも同じエラーを返し、詳細は漏らさない。
func NewInvalidResetCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidResetCode,
		Message:  "Reset code is invalid or expired",
		Category: "validation",
		Action:   "Request a new reset code.",
	}
}

// NewInvalidTokenError は外部IDトークン検証失敗エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Identity token verification failed",
		Category: "auth",
		Action:   "Sign in with Google again.",
	}
}

// NewInvalidLoginError はログイン失敗エラーを生成する。
func NewInvalidLoginError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLogin,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Check the credentials.",
	}
}

// NewDataAccessError はストア読み書き失敗エラーを生成する。
// 診断用に原因メッセージを含めるが、自動リトライは行わない。
func NewDataAccessError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeDataAccess,
		Message:  fmt.Sprintf("Data access failed: %v", cause),
		Category: "data",
		Action:   "Wait a moment and retry.",
	}
}
