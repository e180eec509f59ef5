// Package ranking はタグの人気度ランキング機能を提供する。
package ranking

import (
	"context"
	"sort"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
)

// DefaultPopularTagLimit は人気タグの既定取得件数。
const DefaultPopularTagLimit = 6

// RankingService はタグ人気度ランキングのサービス。
// 永続化されたカウンタは持たず、呼び出しごとに全記事のタグ関連から再集計する。
type RankingService struct {
	tagRepo repository.TagRepository
}

// NewRankingService はRankingServiceの新しいインスタンスを生成する。
func NewRankingService(tagRepo repository.TagRepository) *RankingService {
	return &RankingService{tagRepo: tagRepo}
}

// PopularTags は参照頻度の高い順にタグを返す。
// 記事→タグの全関連を走査してタグIDごとにカウントし、降順ソートして
// limit件に切り詰める。同数の場合は最初に出現した順序を維持する
// （sort.SliceStableによる安定ソート）。
// limitが0以下の場合は既定の6件を使用する。
func (s *RankingService) PopularTags(ctx context.Context, limit int) ([]model.PopularTag, error) {
	if limit <= 0 {
		limit = DefaultPopularTagLimit
	}

	refs, err := s.tagRepo.ListTagRefs(ctx)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	// タグIDごとにカウント。初出時にタグ名と出現順を記録する。
	counts := make(map[string]int, len(refs))
	var ordered []model.PopularTag
	for _, ref := range refs {
		if _, seen := counts[ref.TagID]; !seen {
			ordered = append(ordered, model.PopularTag{ID: ref.TagID, Name: ref.TagName})
		}
		counts[ref.TagID]++
	}

	for i := range ordered {
		ordered[i].Count = counts[ordered[i].ID]
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Count > ordered[j].Count
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return ordered, nil
}
