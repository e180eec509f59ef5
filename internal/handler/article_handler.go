package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/firstsportz/newsapi/internal/article"
	"github.com/firstsportz/newsapi/internal/middleware"
	"github.com/firstsportz/newsapi/internal/search"
)

// ArticleServiceInterface は記事一覧ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	// AllNews は全記事を新しい順にページネーションして返す。
	AllNews(ctx context.Context, page, pageSize int) (*article.ListResult, error)
	// TodaysNews は当日の記事と検索履歴・人気タグを返す。userIDは未認証時に空。
	TodaysNews(ctx context.Context, userID string, page, pageSize int) (*article.TodaysResult, error)
}

// SearchServiceInterface は検索ハンドラーが必要とするサービスインターフェース。
type SearchServiceInterface interface {
	// Search はテキスト検索を実行し、カテゴリフォールバックと検索履歴更新を行う。
	Search(ctx context.Context, userID, query string, page, pageSize int) (*search.SearchResult, error)
}

// ArticleHandler は記事一覧と検索のHTTPハンドラー。
type ArticleHandler struct {
	articleService ArticleServiceInterface
	searchService  SearchServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(articleService ArticleServiceInterface, searchService SearchServiceInterface) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		searchService:  searchService,
	}
}

// pageParams はクエリパラメータからページネーション指定を読み取る。
// 未指定・不正値はサービス層の正規化に委ねるため0を返す。
func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

// AllNews は全記事一覧を取得する。
// GET /articles/all-news?page=1&pageSize=10
func (h *ArticleHandler) AllNews(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := h.articleService.AllNews(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// TodaysNews は今日のニュースを取得する。
// GET /articles/todays-news?page=1&pageSize=10
// Bearerトークンが解決できた場合のみ検索履歴を同梱する（未認証でも200）。
func (h *ArticleHandler) TodaysNews(w http.ResponseWriter, r *http.Request) {
	// 任意認証: 未認証なら空のままサービスに渡す
	userID, _ := middleware.UserIDFromContext(r.Context())

	page, pageSize := pageParams(r)

	result, err := h.articleService.TodaysNews(r.Context(), userID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// searchRequest は検索リクエストのボディ。
type searchRequest struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Search は記事検索を実行する。
// POST /articles/search?page=1&pageSize=10 {"query": "..."}
// ページ指定はクエリパラメータを優先し、未指定時のみボディの値を使う。
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req searchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	page, pageSize := pageParams(r)
	if page == 0 {
		page = req.Page
	}
	if pageSize == 0 {
		pageSize = req.PageSize
	}

	result, err := h.searchService.Search(r.Context(), userID, req.Query, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}
