// Package model はドメインモデルを定義する。
package model

import "time"

// Article はニュース記事を表す。
// description/contentはサニタイズ済みのテキストを保持する。
type Article struct {
	ID          string
	Title       string
	Description string
	Slug        string
	NewsLink    string
	CoverURL    string
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleWithCategory は記事とカテゴリ名を結合したモデル。
// categoriesテーブルとLEFT JOINして取得される。
type ArticleWithCategory struct {
	Article
	CategoryName string
}

// ArticleSummary はAPI応答用の記事サマリー。
// 一覧・検索・ブックマーク・閲覧履歴の各応答で共通に使用される。
type ArticleSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
	NewsLink    string    `json:"newsLink"`
	Cover       string    `json:"cover"`
	Category    string    `json:"category"`
}

// NewArticleSummary は記事からAPI応答用サマリーを組み立てる。
func NewArticleSummary(a ArticleWithCategory) ArticleSummary {
	return ArticleSummary{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Slug:        a.Slug,
		CreatedAt:   a.CreatedAt,
		NewsLink:    a.NewsLink,
		Cover:       a.CoverURL,
		Category:    a.CategoryName,
	}
}

// Category は記事のカテゴリを表す。
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Tag は記事に付与されるタグを表す。
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// TagRef は記事とタグの関連1件を表す。
// タグランキングの集計入力として全記事走査で取得される。
type TagRef struct {
	ArticleID string
	TagID     string
	TagName   string
}

// PopularTag はタグの人気度集計結果を表す。
type PopularTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Source は記事取り込み元のRSS/Atomフィードを表す。
type Source struct {
	ID                string
	Name              string
	FeedURL           string
	CategoryID        string
	Active            bool
	ConsecutiveErrors int
	LastFetchedAt     *time.Time
	NextFetchAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
