// Package user はユーザープロフィール管理のドメインロジックを提供する。
package user

import (
	"context"
	"io"
	"log/slog"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
	"github.com/firstsportz/newsapi/internal/storage"
)

// MaxAvatarSize はアバター画像の最大サイズ（2 MiB）。
const MaxAvatarSize = 2 * 1024 * 1024

// avatarExtensions は許可するコンテンツタイプと保存時の拡張子。
var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Service はユーザープロフィール管理のサービス層。
type Service struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	avatars      storage.AvatarStorage
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	avatars storage.AvatarStorage,
) *Service {
	return &Service{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		avatars:      avatars,
	}
}

// loadUser はユーザーを取得する。不在の場合はNotFoundErrorを返す。
func (s *Service) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// resolveCategoryIDs はカテゴリ名リストを既存カテゴリのIDリストに解決する。
// 存在しない名前は黙って無視される。
func (s *Service) resolveCategoryIDs(ctx context.Context, names []string) ([]string, error) {
	categories, err := s.categoryRepo.FindByNamesIn(ctx, names)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids, nil
}

// AddCategories はユーザーの興味カテゴリに指定名のカテゴリを追加する。
// 既存の興味カテゴリは維持される（和集合）。更新後の一覧を返す。
func (s *Service) AddCategories(ctx context.Context, userID string, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return nil, model.NewMissingFieldError("categories")
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.resolveCategoryIDs(ctx, names)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.AddCategories(ctx, userID, ids); err != nil {
		return nil, model.NewDataAccessError(err)
	}

	return s.listCategories(ctx, userID)
}

// ReplaceCategories はユーザーの興味カテゴリを指定名のカテゴリで置き換える。
// 更新後の一覧を返す。
func (s *Service) ReplaceCategories(ctx context.Context, userID string, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return nil, model.NewMissingFieldError("categories")
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := s.resolveCategoryIDs(ctx, names)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceCategories(ctx, userID, ids); err != nil {
		return nil, model.NewDataAccessError(err)
	}

	return s.listCategories(ctx, userID)
}

// listCategories は興味カテゴリの現在の一覧を返す。
func (s *Service) listCategories(ctx context.Context, userID string) ([]model.Category, error) {
	categories, err := s.userRepo.ListCategories(ctx, userID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	return categories, nil
}

// UploadAvatar はアバター画像を検証して保存し、ユーザーのアバターURLを更新する。
// 新しいアバターURLを返す。
func (s *Service) UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) (string, error) {
	if size > MaxAvatarSize {
		return "", model.NewInvalidRequestError(
			"Avatar file is too large (max 2 MiB)",
			"Upload a smaller image.",
		)
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", model.NewInvalidRequestError(
			"Unsupported avatar content type: "+contentType,
			"Upload a PNG, JPEG or WebP image.",
		)
	}

	if _, err := s.loadUser(ctx, userID); err != nil {
		return "", err
	}

	// 上限+1バイトで読み込みを打ち切り、申告サイズより大きい入力も拒否する
	limited := io.LimitReader(r, MaxAvatarSize+1)
	url, err := s.avatars.Save(userID, ext, limited)
	if err != nil {
		return "", model.NewDataAccessError(err)
	}

	if err := s.userRepo.UpdateAvatarURL(ctx, userID, url); err != nil {
		return "", model.NewDataAccessError(err)
	}

	slog.Info("アバターを更新しました", slog.String("user_id", userID))
	return url, nil
}

// DeleteAvatar はアバター画像を削除し、ユーザーのアバターURLをクリアする。
func (s *Service) DeleteAvatar(ctx context.Context, userID string) error {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return err
	}

	if err := s.avatars.Delete(userID); err != nil {
		return model.NewDataAccessError(err)
	}
	if err := s.userRepo.UpdateAvatarURL(ctx, userID, ""); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}

// RegisterDeviceToken はプッシュ通知用デバイストークンを登録する。
func (s *Service) RegisterDeviceToken(ctx context.Context, userID, deviceToken string) error {
	if deviceToken == "" {
		return model.NewMissingFieldError("deviceToken")
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.UpdateDeviceToken(ctx, userID, deviceToken); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}
