// Package article は記事一覧取得のドメインロジックを提供する。
package article

import (
	"context"
	"time"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/ranking"
	"github.com/firstsportz/newsapi/internal/repository"
)

// ListResult は記事一覧のレスポンスを表す。
type ListResult struct {
	Articles   []model.ArticleSummary `json:"articles"`
	Pagination model.Pagination       `json:"pagination"`
}

// TodaysResult は今日のニュースのレスポンスを表す。
// 記事一覧に加えて、呼び出しユーザーの検索履歴と全体の人気タグを同梱する。
// 未認証の場合、RecentSearchesは空リストになる。
type TodaysResult struct {
	Articles       []model.ArticleSummary `json:"articles"`
	RecentSearches []model.RecentSearch   `json:"recentSearches"`
	PopularTags    []model.PopularTag     `json:"popularTags"`
	Pagination     model.Pagination       `json:"pagination"`
}

// ArticleService は記事一覧取得のサービス層。
type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	ranking     *ranking.RankingService

	// テスト用に現在時刻を差し替え可能
	now func() time.Time
}

// NewArticleService はArticleServiceの新しいインスタンスを生成する。
func NewArticleService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	rankingService *ranking.RankingService,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		ranking:     rankingService,
		now:         time.Now,
	}
}

// AllNews は全記事を更新日時の新しい順にページネーションして返す。
func (s *ArticleService) AllNews(ctx context.Context, page, pageSize int) (*ListResult, error) {
	page, pageSize = model.NormalizePageParams(page, pageSize)
	offset := (page - 1) * pageSize

	articles, err := s.articleRepo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	total, err := s.articleRepo.Count(ctx)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	return &ListResult{
		Articles:   toSummaries(articles),
		Pagination: model.NewPagination(page, pageSize, total),
	}, nil
}

// TodaysNews は当日（UTC）に更新された記事を返す。
// userIDが空でない場合は当該ユーザーの検索履歴を同梱し、
// 空（未認証）の場合は検索履歴を空リストにする。
// 人気タグは認証状態に関わらず常に含める。
func (s *ArticleService) TodaysNews(ctx context.Context, userID string, page, pageSize int) (*TodaysResult, error) {
	page, pageSize = model.NormalizePageParams(page, pageSize)
	offset := (page - 1) * pageSize

	from, to := todayRange(s.now())

	articles, err := s.articleRepo.ListUpdatedBetween(ctx, from, to, offset, pageSize)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	total, err := s.articleRepo.CountUpdatedBetween(ctx, from, to)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	recentSearches := []model.RecentSearch{}
	if userID != "" {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, model.NewDataAccessError(err)
		}
		if user != nil && user.RecentSearches != nil {
			recentSearches = user.RecentSearches
		}
	}

	popularTags, err := s.ranking.PopularTags(ctx, ranking.DefaultPopularTagLimit)
	if err != nil {
		return nil, err
	}

	return &TodaysResult{
		Articles:       toSummaries(articles),
		RecentSearches: recentSearches,
		PopularTags:    popularTags,
		Pagination:     model.NewPagination(page, pageSize, total),
	}, nil
}

// todayRange は指定時刻を含むUTC日の[開始, 終了)を返す。
func todayRange(now time.Time) (time.Time, time.Time) {
	utc := now.UTC()
	from := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}

func toSummaries(articles []model.ArticleWithCategory) []model.ArticleSummary {
	summaries := make([]model.ArticleSummary, len(articles))
	for i, a := range articles {
		summaries[i] = model.NewArticleSummary(a)
	}
	return summaries
}
