// Package search は記事検索とカテゴリフォールバックの集約機能を提供する。
package search

import (
	"context"

	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/repository"
)

// CategoryRef はカテゴリ検索結果の1件を表す。
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResolver はフリーテキストからのカテゴリ解決を行う。
type CategoryResolver struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryResolver はCategoryResolverの新しいインスタンスを生成する。
func NewCategoryResolver(categoryRepo repository.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{categoryRepo: categoryRepo}
}

// ResolveCategories はqueryと記事ヒット一覧からカテゴリを解決する。
// ステップ1: 名前にqueryを含むカテゴリを検索（大文字小文字を区別しない部分一致）。
// ステップ2: ステップ1が空かつ記事一覧が非空の場合、記事が参照するカテゴリ名の
// 重複を除いた集合で完全一致検索する。
// 両ステップの結果は重複排除せずに連結する。
func (r *CategoryResolver) ResolveCategories(ctx context.Context, query string, articles []model.ArticleWithCategory) ([]CategoryRef, error) {
	direct, err := r.categoryRepo.FindByNameContains(ctx, query)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}

	var derived []model.Category
	if len(direct) == 0 && len(articles) > 0 {
		names := distinctCategoryNames(articles)
		if len(names) > 0 {
			derived, err = r.categoryRepo.FindByNamesIn(ctx, names)
			if err != nil {
				return nil, model.NewDataAccessError(err)
			}
		}
	}

	refs := make([]CategoryRef, 0, len(direct)+len(derived))
	for _, c := range direct {
		refs = append(refs, CategoryRef{ID: c.ID, Name: c.Name})
	}
	for _, c := range derived {
		refs = append(refs, CategoryRef{ID: c.ID, Name: c.Name})
	}

	return refs, nil
}

// distinctCategoryNames は記事一覧が参照するカテゴリ名の重複を除いて返す。
// カテゴリ未設定の記事（空名）は除外する。
func distinctCategoryNames(articles []model.ArticleWithCategory) []string {
	seen := make(map[string]bool, len(articles))
	var names []string
	for _, a := range articles {
		if a.CategoryName == "" || seen[a.CategoryName] {
			continue
		}
		seen[a.CategoryName] = true
		names = append(names, a.CategoryName)
	}
	return names
}
