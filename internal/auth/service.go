// Package auth はGoogleサインイン、ローカル認証、パスワードリセット、
// セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/firstsportz/newsapi/internal/mail"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
)

// resetCodeTTL はパスワードリセットコードの有効期間。
const resetCodeTTL = time.Hour

// ExternalIdentity は外部IdPから検証済みで得たユーザー情報を表す。
type ExternalIdentity struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
}

// TokenVerifier は外部IDトークンの検証インターフェース。
type TokenVerifier interface {
	// Verify はIDトークンを検証し、外部アイデンティティ情報を返す。
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// SignInResult はサインイン系操作の戻り値。
type SignInResult struct {
	Token string
	User  *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier    TokenVerifier
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	mailer      mail.Mailer
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	verifier TokenVerifier,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	mailer mail.Mailer,
	config ServiceConfig,
) *Service {
	return &Service{
		verifier:    verifier,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		config:      config,
		now:         time.Now,
	}
}

// GoogleSignIn はGoogleのIDトークンを検証してサインインする。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// deviceTokenが渡された場合はプッシュ通知用に登録する。
func (s *Service) GoogleSignIn(ctx context.Context, idToken, deviceToken string) (*SignInResult, error) {
	if idToken == "" {
		return nil, model.NewMissingFieldError("idToken")
	}

	external, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("IDトークンの検証に失敗しました", slog.String("error", err.Error()))
		return nil, model.NewInvalidTokenError()
	}

	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, external.Provider, external.ProviderUserID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	var userID string
	if identity != nil {
		userID = identity.UserID
		slog.Info("既存ユーザーがログインしました",
			slog.String("user_id", userID),
			slog.String("provider", external.Provider),
		)
	} else {
		newUser := &model.User{
			ID:    uuid.New().String(),
			Email: external.Email,
			Name:  external.Name,
		}
		newIdentity := &model.Identity{
			ID:             uuid.New().String(),
			UserID:         newUser.ID,
			Provider:       external.Provider,
			ProviderUserID: external.ProviderUserID,
		}
		if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
			return nil, model.NewDataAccessError(err)
		}
		userID = newUser.ID
		slog.Info("新規ユーザーを作成しました",
			slog.String("user_id", userID),
			slog.String("provider", external.Provider),
		)
	}

	if deviceToken != "" {
		if err := s.userRepo.UpdateDeviceToken(ctx, userID, deviceToken); err != nil {
			return nil, model.NewDataAccessError(err)
		}
	}

	return s.issueSession(ctx, userID)
}

// Login はメールアドレスとパスワードでサインインする。
// 認証失敗の理由（ユーザー不在・パスワード不一致）は区別せず同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*SignInResult, error) {
	if email == "" {
		return nil, model.NewMissingFieldError("email")
	}
	if password == "" {
		return nil, model.NewMissingFieldError("password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, model.NewInvalidLoginError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidLoginError()
	}

	return s.issueSession(ctx, user.ID)
}

// ForgotPassword は5桁のリセットコードを生成して保存し、メールで送付する。
// コードの有効期限は1時間。
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return model.NewMissingFieldError("email")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return model.NewDataAccessError(err)
	}
	if user == nil {
		return model.NewEmailNotFoundError()
	}

	code, err := generateResetCode()
	if err != nil {
		return model.NewDataAccessError(err)
	}

	expiresAt := s.now().Add(resetCodeTTL)
	if err := s.userRepo.UpdateResetCode(ctx, user.ID, code, expiresAt); err != nil {
		return model.NewDataAccessError(err)
	}

	if err := s.mailer.SendResetCode(ctx, email, code); err != nil {
		return model.NewDataAccessError(err)
	}

	slog.Info("パスワードリセットコードを送付しました", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword はリセットコードを検証して新しいパスワードを設定する。
// 成功時はコードをクリアし、既存の全セッションを破棄する。
func (s *Service) ResetPassword(ctx context.Context, email, code, password string) error {
	if email == "" {
		return model.NewMissingFieldError("email")
	}
	if code == "" {
		return model.NewMissingFieldError("code")
	}
	if password == "" {
		return model.NewMissingFieldError("password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return model.NewDataAccessError(err)
	}
	if user == nil {
		return model.NewEmailNotFoundError()
	}

	if user.ResetCode == "" || user.ResetCode != code {
		return model.NewInvalidResetCodeError()
	}
	if user.ResetCodeExpiresAt == nil || s.now().After(*user.ResetCodeExpiresAt) {
		return model.NewInvalidResetCodeError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.NewDataAccessError(err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return model.NewDataAccessError(err)
	}
	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return model.NewDataAccessError(err)
	}

	slog.Info("パスワードをリセットしました", slog.String("user_id", user.ID))
	return nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return model.NewUnauthorizedError()
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}

// ResolveSession はBearerトークンからユーザーIDを解決する。
// セッションが存在しない・期限切れの場合は空文字列を返す。
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return "", nil
	}
	return session.UserID, nil
}

// issueSession はセッションを作成してサインイン結果を組み立てる。
func (s *Service) issueSession(ctx context.Context, userID string) (*SignInResult, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: s.now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, model.NewDataAccessError(err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return &SignInResult{Token: sessionID, User: user}, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateResetCode は10000〜99999の5桁の数値コードを生成する。
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+10000), nil
}
