package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/firstsportz/newsapi/internal/auth"
	"github.com/firstsportz/newsapi/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// GoogleSignIn はGoogle IDトークンを検証してサインインする。初回は新規登録する。
	GoogleSignIn(ctx context.Context, idToken, deviceToken string) (*auth.SignInResult, error)
	// Login はメールアドレスとパスワードでログインする。
	Login(ctx context.Context, email, password string) (*auth.SignInResult, error)
	// ForgotPassword はリセットコードを発行してメール送信する。
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword はリセットコードを検証してパスワードを更新する。
	ResetPassword(ctx context.Context, email, code, password string) error
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// userResponse はAPI応答用のユーザー情報。
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// signInResponse はサインイン成功レスポンス。
type signInResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

func toSignInResponse(message string, result *auth.SignInResult) signInResponse {
	return signInResponse{
		Message: message,
		Token:   result.Token,
		User: userResponse{
			ID:        result.User.ID,
			Email:     result.User.Email,
			Name:      result.User.Name,
			AvatarURL: result.User.AvatarURL,
		},
	}
}

// googleSignInRequest はGoogleサインインリクエストのボディ。
type googleSignInRequest struct {
	IDToken     string `json:"idToken"`
	DeviceToken string `json:"deviceToken"`
}

// GoogleSignIn はGoogle IDトークンでサインインする。
// POST /auth/google-signin {"idToken": "...", "deviceToken": "..."}
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.IDToken == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("idToken"))
		return
	}

	result, err := h.service.GoogleSignIn(r.Context(), req.IDToken, req.DeviceToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toSignInResponse("Signed in successfully", result))
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login はメールアドレスとパスワードでログインする。
// POST /auth/login {"email": "...", "password": "..."}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("password"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toSignInResponse("Logged in successfully", result))
}

// forgotPasswordRequest はリセットコード発行リクエストのボディ。
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword はパスワードリセットコードを発行する。
// POST /auth/forgot-password {"email": "..."}
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Reset code sent to your email"})
}

// resetPasswordRequest はパスワードリセットリクエストのボディ。
type resetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// ResetPassword はリセットコードを検証してパスワードを更新する。
// POST /auth/reset-password {"email": "...", "code": "...", "password": "..."}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}
	if req.Code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("code"))
		return
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("password"))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Code, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}

// Logout は現在のセッションを破棄する。
// POST /auth/logout（Bearerトークン必須）
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerTokenFromHeader(r)
	if token == "" {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// bearerTokenFromHeader はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerTokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
