package article

import (
	"context"
	"testing"
	"time"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/ranking"
)

// --- モック ---

type mockArticleRepo struct {
	listFn                func(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error)
	countFn               func(ctx context.Context) (int, error)
	listUpdatedBetweenFn  func(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error)
	countUpdatedBetweenFn func(ctx context.Context, from, to time.Time) (int, error)
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
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}
func (m *mockArticleRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}
func (m *mockArticleRepo) SearchByText(ctx context.Context, query string, offset, limit int) ([]model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) CountByText(ctx context.Context, query string) (int, error) {
	return 0, nil
}
func (m *mockArticleRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []string, offset, limit int) ([]model.ArticleWithCategory, error) {
	return nil, nil
}
func (m *mockArticleRepo) CountByCategoryIDs(ctx context.Context, categoryIDs []string) (int, error) {
	return 0, nil
}
func (m *mockArticleRepo) ListUpdatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error) {
	if m.listUpdatedBetweenFn != nil {
		return m.listUpdatedBetweenFn(ctx, from, to, offset, limit)
	}
	return nil, nil
}
func (m *mockArticleRepo) CountUpdatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	if m.countUpdatedBetweenFn != nil {
		return m.countUpdatedBetweenFn(ctx, from, to)
	}
	return 0, nil
}
func (m *mockArticleRepo) CreateWithTags(ctx context.Context, article *model.Article, tagNames []string) error {
	return nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
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

type mockTagRepo struct {
	refs []model.TagRef
}

func (m *mockTagRepo) ListTagRefs(ctx context.Context) ([]model.TagRef, error) {
	return m.refs, nil
}

func articleAt(id string, updatedAt time.Time) model.ArticleWithCategory {
	return model.ArticleWithCategory{
		Article: model.Article{
			ID:        id,
			Title:     "Title " + id,
			UpdatedAt: updatedAt,
		},
		CategoryName: "Cricket",
	}
}

// --- テスト ---

// TestAllNews_PaginatesList はオフセット計算とページネーション組み立てを検証する。
func TestAllNews_PaginatesList(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockArticleRepo{
		listFn: func(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error) {
			gotOffset, gotLimit = offset, limit
			return []model.ArticleWithCategory{articleAt("a3", time.Now())}, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 21, nil },
	}
	svc := NewArticleService(repo, &mockUserRepo{}, ranking.NewRankingService(&mockTagRepo{}))

	got, err := svc.AllNews(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("AllNews returned error: %v", err)
	}

	if gotOffset != 10 || gotLimit != 10 {
		t.Errorf("offset/limit = %d/%d, want 10/10", gotOffset, gotLimit)
	}
	if got.Pagination.Total != 21 || got.Pagination.PageCount != 3 {
		t.Errorf("pagination = %+v", got.Pagination)
	}
	if len(got.Articles) != 1 || got.Articles[0].ID != "a3" {
		t.Errorf("articles = %+v", got.Articles)
	}
}

// TestAllNews_NormalizesPageParams は不正なページ指定が既定値に補正されることを検証する。
func TestAllNews_NormalizesPageParams(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockArticleRepo{
		listFn: func(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error) {
			gotOffset, gotLimit = offset, limit
			return nil, nil
		},
	}
	svc := NewArticleService(repo, &mockUserRepo{}, ranking.NewRankingService(&mockTagRepo{}))

	if _, err := svc.AllNews(context.Background(), 0, -5); err != nil {
		t.Fatalf("AllNews returned error: %v", err)
	}

	if gotOffset != 0 || gotLimit != model.DefaultPageSize {
		t.Errorf("offset/limit = %d/%d, want 0/%d", gotOffset, gotLimit, model.DefaultPageSize)
	}
}

// TestTodaysNews_UsesUTCDayRange は当日UTCの[0時, 翌0時)で絞り込まれることを検証する。
func TestTodaysNews_UsesUTCDayRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &mockArticleRepo{
		listUpdatedBetweenFn: func(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	svc := NewArticleService(repo, &mockUserRepo{}, ranking.NewRankingService(&mockTagRepo{}))
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 23, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	}

	if _, err := svc.TodaysNews(context.Background(), "", 1, 10); err != nil {
		t.Fatalf("TodaysNews returned error: %v", err)
	}

	wantFrom := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", gotFrom, wantFrom)
	}
	if !gotTo.Equal(wantFrom.Add(24 * time.Hour)) {
		t.Errorf("to = %v, want %v", gotTo, wantFrom.Add(24*time.Hour))
	}
}

// TestTodaysNews_IncludesRecentSearchesForUser は認証ユーザーの検索履歴同梱を検証する。
func TestTodaysNews_IncludesRecentSearchesForUser(t *testing.T) {
	searches := []model.RecentSearch{
		{Query: "cricket", Timestamp: time.Now()},
		{Query: "ipl", Timestamp: time.Now()},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if id != "user-1" {
				t.Errorf("FindByID called with %q", id)
			}
			return &model.User{ID: id, RecentSearches: searches}, nil
		},
	}
	tagRepo := &mockTagRepo{refs: []model.TagRef{
		{ArticleID: "a1", TagID: "t1", TagName: "IPL"},
		{ArticleID: "a2", TagID: "t1", TagName: "IPL"},
		{ArticleID: "a2", TagID: "t2", TagName: "WorldCup"},
	}}
	svc := NewArticleService(&mockArticleRepo{}, userRepo, ranking.NewRankingService(tagRepo))

	got, err := svc.TodaysNews(context.Background(), "user-1", 1, 10)
	if err != nil {
		t.Fatalf("TodaysNews returned error: %v", err)
	}

	if len(got.RecentSearches) != 2 || got.RecentSearches[0].Query != "cricket" {
		t.Errorf("recentSearches = %+v", got.RecentSearches)
	}
	if len(got.PopularTags) != 2 || got.PopularTags[0].Name != "IPL" {
		t.Errorf("popularTags = %+v", got.PopularTags)
	}
}

// TestTodaysNews_AnonymousGetsEmptySearches は未認証時に検索履歴が空リストになることを検証する。
func TestTodaysNews_AnonymousGetsEmptySearches(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			t.Error("FindByID should not be called for anonymous caller")
			return nil, nil
		},
	}
	svc := NewArticleService(&mockArticleRepo{}, userRepo, ranking.NewRankingService(&mockTagRepo{}))

	got, err := svc.TodaysNews(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("TodaysNews returned error: %v", err)
	}

	if got.RecentSearches == nil || len(got.RecentSearches) != 0 {
		t.Errorf("recentSearches = %#v, want empty non-nil list", got.RecentSearches)
	}
}
