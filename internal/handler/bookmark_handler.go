package handler

import (
	"context"
	"net/http"

	"github.com/firstsportz/newsapi/internal/bookmark"
	"github.com/firstsportz/newsapi/internal/middleware"
	"github.com/firstsportz/newsapi/internal/model"
)

// BookmarkServiceInterface はブックマーク・閲覧履歴ハンドラーが必要とするサービスインターフェース。
type BookmarkServiceInterface interface {
	// AddBookmark は記事をブックマークに追加する。登録済みの場合は何もしない。
	AddBookmark(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error)
	// RemoveBookmark は記事をブックマークから削除する。
	RemoveBookmark(ctx context.Context, userID, articleID string) error
	// ListBookmarks はブックマーク一覧を登録順で返す。
	ListBookmarks(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error)
	// AddToHistory は記事を閲覧履歴に追加する。登録済みの場合は何もしない。
	AddToHistory(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error)
	// ListHistory は閲覧履歴一覧を閲覧順で返す。
	ListHistory(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error)
}

// BookmarkHandler はブックマークと閲覧履歴のHTTPハンドラー。
type BookmarkHandler struct {
	service BookmarkServiceInterface
}

// NewBookmarkHandler はBookmarkHandlerを生成する。
func NewBookmarkHandler(service BookmarkServiceInterface) *BookmarkHandler {
	return &BookmarkHandler{service: service}
}

// articleIDRequest は記事ID1件を受け取るリクエストのボディ。
type articleIDRequest struct {
	ArticleID string `json:"articleId"`
}

// messageResponse はメッセージのみの成功レスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// listResponse はメッセージ付きの記事一覧レスポンス。
type listResponse struct {
	Message    string                 `json:"message"`
	Articles   []model.ArticleSummary `json:"articles"`
	Pagination model.Pagination       `json:"pagination"`
}

// AddBookmark は記事をブックマークに追加する。
// POST /articles/addbookmark {"articleId": "..."}
func (h *BookmarkHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req articleIDRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.service.AddBookmark(r.Context(), userID, req.ArticleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "News added to bookmarks"
	if result.AlreadyExists {
		message = "News already bookmarked"
	}
	writeJSONResponse(w, http.StatusOK, messageResponse{Message: message})
}

// RemoveBookmark は記事をブックマークから削除する。
// POST /articles/removebookmark {"articleId": "..."}
func (h *BookmarkHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req articleIDRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.service.RemoveBookmark(r.Context(), userID, req.ArticleID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "News removed from bookmarks"})
}

// ListBookmarks はブックマーク一覧を取得する。
// GET /articles/bookmarkslist?page=1&pageSize=10
func (h *BookmarkHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, pageSize := pageParams(r)

	result, err := h.service.ListBookmarks(r.Context(), userID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, listResponse{
		Message:    "Bookmarks fetched successfully",
		Articles:   result.Articles,
		Pagination: result.Pagination,
	})
}

// AddToHistory は記事を閲覧履歴に追加する。
// POST /articles/addToHistory {"articleId": "..."}
func (h *BookmarkHandler) AddToHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req articleIDRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.service.AddToHistory(r.Context(), userID, req.ArticleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "News added to history"
	if result.AlreadyExists {
		message = "News already in history"
	}
	writeJSONResponse(w, http.StatusOK, messageResponse{Message: message})
}

// FetchHistory は閲覧履歴一覧を取得する。
// GET /articles/fetchhistory?page=1&pageSize=10
func (h *BookmarkHandler) FetchHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, pageSize := pageParams(r)

	result, err := h.service.ListHistory(r.Context(), userID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, listResponse{
		Message:    "History fetched successfully",
		Articles:   result.Articles,
		Pagination: result.Pagination,
	})
}
