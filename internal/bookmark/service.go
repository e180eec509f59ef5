// Package bookmark はユーザーごとのブックマークと閲覧履歴の管理機能を提供する。
package bookmark

import (
	"context"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
)

// AddResult は追加系操作の結果。
// AlreadyExistsは重複追加のno-op成功（"already bookmarked"）を表す。
type AddResult struct {
	AlreadyExists bool
}

// ListResult はブックマーク・閲覧履歴一覧の戻り値。
type ListResult struct {
	Articles   []model.ArticleSummary `json:"articles"`
	Pagination model.Pagination       `json:"pagination"`
}

// BookmarkService はブックマークと閲覧履歴のサービス。
// どちらのリストもユーザーレコードのJSONB列を丸ごと読み書きして更新する。
type BookmarkService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
}

// NewBookmarkService はBookmarkServiceの新しいインスタンスを生成する。
func NewBookmarkService(articleRepo repository.ArticleRepository, userRepo repository.UserRepository) *BookmarkService {
	return &BookmarkService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
	}
}

// loadUser はユーザーを取得する。不在の場合はNotFoundErrorを返す。
func (s *BookmarkService) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// verifyArticle は記事の存在を確認する。不在の場合はNotFoundErrorを返す。
func (s *BookmarkService) verifyArticle(ctx context.Context, articleID string) error {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return model.NewDataAccessError(err)
	}
	if article == nil {
		return model.NewArticleNotFoundError(articleID)
	}
	return nil
}

// AddBookmark は記事をユーザーのブックマークに追加する。
// 既に追加済みの場合は変更せずに成功を返す。
func (s *BookmarkService) AddBookmark(ctx context.Context, userID, articleID string) (*AddResult, error) {
	if articleID == "" {
		return nil, model.NewMissingFieldError("articleId")
	}
	if err := s.verifyArticle(ctx, articleID); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if model.ContainsID(user.Bookmarks, articleID) {
		return &AddResult{AlreadyExists: true}, nil
	}

	updated := append(user.Bookmarks, articleID)
	if err := s.userRepo.UpdateBookmarks(ctx, userID, updated); err != nil {
		return nil, model.NewDataAccessError(err)
	}
	return &AddResult{}, nil
}

// RemoveBookmark は記事をユーザーのブックマークから除外する。
// 含まれていないIDの除外もエラーにしない。
func (s *BookmarkService) RemoveBookmark(ctx context.Context, userID, articleID string) error {
	if articleID == "" {
		return model.NewMissingFieldError("articleId")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	updated := model.RemoveID(user.Bookmarks, articleID)
	if err := s.userRepo.UpdateBookmarks(ctx, userID, updated); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}

// ListBookmarks はユーザーのブックマーク一覧を記事サマリーで返す。
func (s *BookmarkService) ListBookmarks(ctx context.Context, userID string, page, pageSize int) (*ListResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.listByRefs(ctx, user.Bookmarks, page, pageSize)
}

// AddToHistory は記事をユーザーの閲覧履歴に追加する。
// 既に記録済みの場合は変更せずに成功を返す。
func (s *BookmarkService) AddToHistory(ctx context.Context, userID, articleID string) (*AddResult, error) {
	if articleID == "" {
		return nil, model.NewMissingFieldError("articleId")
	}
	if err := s.verifyArticle(ctx, articleID); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if model.ContainsID(user.History, articleID) {
		return &AddResult{AlreadyExists: true}, nil
	}

	updated := append(user.History, articleID)
	if err := s.userRepo.UpdateHistory(ctx, userID, updated); err != nil {
		return nil, model.NewDataAccessError(err)
	}
	return &AddResult{}, nil
}

// ListHistory はユーザーの閲覧履歴一覧を記事サマリーで返す。
func (s *BookmarkService) ListHistory(ctx context.Context, userID string, page, pageSize int) (*ListResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.listByRefs(ctx, user.History, page, pageSize)
}

// listByRefs はID参照リストをページ分割して記事サマリーに展開する。
// ページ分割はユーザーの参照リスト側をスライスして行い、総件数は
// ストア側の実在件数で計算する。削除済み記事へのdangling参照は
// 結果から黙って落ちる。
func (s *BookmarkService) listByRefs(ctx context.Context, refs []string, page, pageSize int) (*ListResult, error) {
	page, pageSize = model.NormalizePageParams(page, pageSize)

	start := (page - 1) * pageSize
	if start > len(refs) {
		start = len(refs)
	}
	end := start + pageSize
	if end > len(refs) {
		end = len(refs)
	}
	pageRefs := refs[start:end]

	total, err := s.articleRepo.CountByIDs(ctx, refs)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	articles, err := s.articleRepo.FindByIDs(ctx, pageRefs)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	// FindByIDsの戻り順は未定義のため、参照リストの順序に並べ直す
	byID := make(map[string]model.ArticleWithCategory, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	summaries := make([]model.ArticleSummary, 0, len(pageRefs))
	for _, id := range pageRefs {
		if a, ok := byID[id]; ok {
			summaries = append(summaries, model.NewArticleSummary(a))
		}
	}

	return &ListResult{
		Articles:   summaries,
		Pagination: model.NewPagination(page, pageSize, total),
	}, nil
}
