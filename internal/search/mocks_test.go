package search

import (
	"context"
	"time"

	"github.com/firstsportz/newsapi/internal/model"
)

// --- モック ---

type mockArticleRepo struct {
	searchByTextFn       func(ctx context.Context, query string, offset, limit int) ([]model.ArticleWithCategory, error)
	countByTextFn        func(ctx context.Context, query string) (int, error)
	listByCategoryIDsFn  func(ctx context.Context, categoryIDs []string, offset, limit int) ([]model.ArticleWithCategory, error)
	countByCategoryIDsFn func(ctx context.Context, categoryIDs []string) (int, error)
}

func (m *mockArticleRepo) FindByID(ctx context.Context, id string) (*model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) FindByIDs(ctx context.Context, ids []string) ([]model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) CountByIDs(ctx context.Context, ids []string) (int, error) {
	return 0, nil
}
func (m *mockArticleRepo) FindByNewsLink(ctx context.Context, newsLink string) (*model.Article, error) {
	return nil, nil
}
func (m *mockArticleRepo) List(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) Count(ctx context.Context) (int, error) {
	return 0, nil
}
func (m *mockArticleRepo) SearchByText(ctx context.Context, query string, offset, limit int) ([]model.ArticleWithCategory, error) {
	return m.searchByTextFn(ctx, query, offset, limit)
}
func (m *mockArticleRepo) CountByText(ctx context.Context, query string) (int, error) {
	if m.countByTextFn != nil {
		return m.countByTextFn(ctx, query)
	}
	return 0, nil
}
func (m *mockArticleRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []string, offset, limit int) ([]model.ArticleWithCategory, error) {
	if m.listByCategoryIDsFn != nil {
		return m.listByCategoryIDsFn(ctx, categoryIDs, offset, limit)
	}
	return nil, nil
}
func (m *mockArticleRepo) CountByCategoryIDs(ctx context.Context, categoryIDs []string) (int, error) {
	if m.countByCategoryIDsFn != nil {
		return m.countByCategoryIDsFn(ctx, categoryIDs)
	}
	return 0, nil
}
func (m *mockArticleRepo) ListUpdatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) CountUpdatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return 0, nil
}
func (m *mockArticleRepo) CreateWithTags(ctx context.Context, article *model.Article, tagNames []string) error {
	return nil
}

type mockCategoryRepo struct {
	findByNameContainsFn func(ctx context.Context, query string) ([]model.Category, error)
	findByNamesInFn      func(ctx context.Context, names []string) ([]model.Category, error)
}

func (m *mockCategoryRepo) FindByNameContains(ctx context.Context, query string) ([]model.Category, error) {
	return m.findByNameContainsFn(ctx, query)
}
func (m *mockCategoryRepo) FindByNamesIn(ctx context.Context, names []string) ([]model.Category, error) {
	if m.findByNamesInFn != nil {
		return m.findByNamesInFn(ctx, names)
	}
	return nil, nil
}
func (m *mockCategoryRepo) FindOrCreateByName(ctx context.Context, name string) (*model.Category, error) {
	return nil, nil
}

type mockUserRepo struct {
	findByIDFn             func(ctx context.Context, id string) (*model.User, error)
	updateRecentSearchesFn func(ctx context.Context, userID string, searches []model.RecentSearch) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) ListWithDeviceToken(ctx context.Context) ([]model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) UpdateRecentSearches(ctx context.Context, userID string, searches []model.RecentSearch) error {
	if m.updateRecentSearchesFn != nil {
		return m.updateRecentSearchesFn(ctx, userID, searches)
	}
	return nil
}
func (m *mockUserRepo) UpdateBookmarks(ctx context.Context, userID string, bookmarks []string) error {
	return nil
}
func (m *mockUserRepo) UpdateHistory(ctx context.Context, userID string, history []string) error {
	return nil
}
func (m *mockUserRepo) UpdateNotificationHistory(ctx context.Context, userID string, entries []model.NotificationEntry) error {
	return nil
}
func (m *mockUserRepo) UpdateDeviceToken(ctx context.Context, userID, deviceToken string) error {
	return nil
}
func (m *mockUserRepo) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	return nil
}
func (m *mockUserRepo) UpdateResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return nil
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return nil
}
func (m *mockUserRepo) AddCategories(ctx context.Context, userID string, categoryIDs []string) error {
	return nil
}
func (m *mockUserRepo) ReplaceCategories(ctx context.Context, userID string, categoryIDs []string) error {
	return nil
}
func (m *mockUserRepo) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	return nil, nil
}

// mockCollector はメトリクス収集のテスト用実装。
type mockCollector struct {
	searchRequests  int
	searchFallbacks int
}

func (m *mockCollector) RecordSearchRequest()                      { m.searchRequests++ }
func (m *mockCollector) RecordSearchFallback()                     { m.searchFallbacks++ }
func (m *mockCollector) RecordSearchLatency(duration time.Duration) {}
func (m *mockCollector) RecordPushDelivered()                      {}
func (m *mockCollector) RecordPushFailure()                        {}
func (m *mockCollector) RecordArticlesIngested(count int)          {}
func (m *mockCollector) RecordIngestFailure(sourceID string)       {}
func (m *mockCollector) RecordHTTPStatus(statusCode int)           {}
