package search

import (
	"context"
	"time"

	"github.com/firstsportz/newsapi/internal/metrics"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
)

// SearchResult はSearchの戻り値。
// peopleは記事サマリー、eventsは解決されたカテゴリ参照を保持する。
// フィールド名は既存モバイルクライアントの応答契約に合わせている。
type SearchResult struct {
	People     []model.ArticleSummary `json:"people"`
	Events     []CategoryRef          `json:"events"`
	Pagination model.Pagination       `json:"pagination"`
}

// SearchService は記事検索・カテゴリフォールバック・検索履歴記録を集約するサービス。
type SearchService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	resolver    *CategoryResolver
	collector   metrics.MetricsCollector
	now         func() time.Time
}

// NewSearchService はSearchServiceの新しいインスタンスを生成する。
func NewSearchService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	resolver *CategoryResolver,
	collector metrics.MetricsCollector,
) *SearchService {
	return &SearchService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		collector:   collector,
		now:         time.Now,
	}
}

// Search は記事検索を実行する。
// 1. タイトル・説明文の部分一致検索（ページネーション付き）
// 2. 直接ヒットが0件の場合、queryからカテゴリを解決してカテゴリIDで再検索し、
//    総件数もフォールバック条件で再計算する
// 3. 直接ヒット一覧（フォールバック前）を使ってカテゴリを再度解決し、eventsを構築する
//    （ステップ2とは独立した別呼び出しで、両方が実行されうる）
// 4. 検索成功時は必ずユーザーの検索履歴に追記する（同一クエリは除去してから末尾追加、
//    上限5件）。この書き込みは応答の構築とトランザクションを共有しない。
func (s *SearchService) Search(ctx context.Context, userID, query string, page, pageSize int) (*SearchResult, error) {
	if query == "" {
		return nil, model.NewMissingFieldError("query")
	}

	start := s.now()
	s.collector.RecordSearchRequest()

	page, pageSize = model.NormalizePageParams(page, pageSize)
	offset := (page - 1) * pageSize

	directHits, err := s.articleRepo.SearchByText(ctx, query, offset, pageSize)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	people := make([]model.ArticleSummary, 0, len(directHits))
	for _, a := range directHits {
		people = append(people, model.NewArticleSummary(a))
	}

	var total int
	if len(people) == 0 {
		// カテゴリフォールバック: queryのみでカテゴリを解決して再検索する
		s.collector.RecordSearchFallback()
		people, total, err = s.fallbackByCategory(ctx, query, offset, pageSize)
		if err != nil {
			return nil, err
		}
	} else {
		total, err = s.articleRepo.CountByText(ctx, query)
		if err != nil {
			return nil, model.NewDataAccessError(err)
		}
	}

	// eventsはフォールバック前の直接ヒット一覧から独立に解決する
	events, err := s.resolver.ResolveCategories(ctx, query, directHits)
	if err != nil {
		return nil, err
	}

	if err := s.recordRecentSearch(ctx, userID, query); err != nil {
		return nil, err
	}

	s.collector.RecordSearchLatency(s.now().Sub(start))

	return &SearchResult{
		People:     people,
		Events:     events,
		Pagination: model.NewPagination(page, pageSize, total),
	}, nil
}

// fallbackByCategory はqueryから解決したカテゴリIDで記事を再検索する。
func (s *SearchService) fallbackByCategory(ctx context.Context, query string, offset, pageSize int) ([]model.ArticleSummary, int, error) {
	categories, err := s.resolver.ResolveCategories(ctx, query, nil)
	if err != nil {
		return nil, 0, err
	}
	if len(categories) == 0 {
		return []model.ArticleSummary{}, 0, nil
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	articles, err := s.articleRepo.ListByCategoryIDs(ctx, ids, offset, pageSize)
	if err != nil {
		return nil, 0, model.NewDataAccessError(err)
	}
	total, err := s.articleRepo.CountByCategoryIDs(ctx, ids)
	if err != nil {
		return nil, 0, model.NewDataAccessError(err)
	}

	people := make([]model.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		people = append(people, model.NewArticleSummary(a))
	}
	return people, total, nil
}

// recordRecentSearch はユーザーの検索履歴フィールドにクエリを追記して保存する。
func (s *SearchService) recordRecentSearch(ctx context.Context, userID, query string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.NewDataAccessError(err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	updated := model.AppendRecentSearch(user.RecentSearches, query, s.now())
	if err := s.userRepo.UpdateRecentSearches(ctx, userID, updated); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}
