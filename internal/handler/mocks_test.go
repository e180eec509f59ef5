package handler

import (
	"context"
	"io"

	"github.com/firstsportz/newsapi/internal/article"
	"github.com/firstsportz/newsapi/internal/auth"
	"github.com/firstsportz/newsapi/internal/bookmark"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/notification"
	"github.com/firstsportz/newsapi/internal/search"
)

type mockArticleService struct {
	allNewsFn    func(ctx context.Context, page, pageSize int) (*article.ListResult, error)
	todaysNewsFn func(ctx context.Context, userID string, page, pageSize int) (*article.TodaysResult, error)
}

func (m *mockArticleService) AllNews(ctx context.Context, page, pageSize int) (*article.ListResult, error) {
	if m.allNewsFn != nil {
		return m.allNewsFn(ctx, page, pageSize)
	}
	return &article.ListResult{
		Articles:   []model.ArticleSummary{},
		Pagination: model.NewPagination(1, 10, 0),
	}, nil
}

func (m *mockArticleService) TodaysNews(ctx context.Context, userID string, page, pageSize int) (*article.TodaysResult, error) {
	if m.todaysNewsFn != nil {
		return m.todaysNewsFn(ctx, userID, page, pageSize)
	}
	return &article.TodaysResult{
		Articles:       []model.ArticleSummary{},
		RecentSearches: []model.RecentSearch{},
		PopularTags:    []model.PopularTag{},
		Pagination:     model.NewPagination(1, 10, 0),
	}, nil
}

type mockSearchService struct {
	searchFn func(ctx context.Context, userID, query string, page, pageSize int) (*search.SearchResult, error)
}

func (m *mockSearchService) Search(ctx context.Context, userID, query string, page, pageSize int) (*search.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, userID, query, page, pageSize)
	}
	return &search.SearchResult{
		People:     []model.ArticleSummary{},
		Events:     []search.CategoryRef{},
		Pagination: model.NewPagination(1, 10, 0),
	}, nil
}

type mockBookmarkService struct {
	addBookmarkFn    func(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error)
	removeBookmarkFn func(ctx context.Context, userID, articleID string) error
	listBookmarksFn  func(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error)
	addToHistoryFn   func(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error)
	listHistoryFn    func(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error)
}

func (m *mockBookmarkService) AddBookmark(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error) {
	return m.addBookmarkFn(ctx, userID, articleID)
}
func (m *mockBookmarkService) RemoveBookmark(ctx context.Context, userID, articleID string) error {
	return m.removeBookmarkFn(ctx, userID, articleID)
}
func (m *mockBookmarkService) ListBookmarks(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error) {
	return m.listBookmarksFn(ctx, userID, page, pageSize)
}
func (m *mockBookmarkService) AddToHistory(ctx context.Context, userID, articleID string) (*bookmark.AddResult, error) {
	return m.addToHistoryFn(ctx, userID, articleID)
}
func (m *mockBookmarkService) ListHistory(ctx context.Context, userID string, page, pageSize int) (*bookmark.ListResult, error) {
	return m.listHistoryFn(ctx, userID, page, pageSize)
}

type mockAuthService struct {
	googleSignInFn   func(ctx context.Context, idToken, deviceToken string) (*auth.SignInResult, error)
	loginFn          func(ctx context.Context, email, password string) (*auth.SignInResult, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, email, code, password string) error
	logoutFn         func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) GoogleSignIn(ctx context.Context, idToken, deviceToken string) (*auth.SignInResult, error) {
	return m.googleSignInFn(ctx, idToken, deviceToken)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.SignInResult, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotPasswordFn(ctx, email)
}
func (m *mockAuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	return m.resetPasswordFn(ctx, email, code, password)
}
func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type mockUserService struct {
	addCategoriesFn       func(ctx context.Context, userID string, names []string) ([]model.Category, error)
	replaceCategoriesFn   func(ctx context.Context, userID string, names []string) ([]model.Category, error)
	uploadAvatarFn        func(ctx context.Context, userID, contentType string, size int64, r io.Reader) (string, error)
	deleteAvatarFn        func(ctx context.Context, userID string) error
	registerDeviceTokenFn func(ctx context.Context, userID, deviceToken string) error
}

func (m *mockUserService) AddCategories(ctx context.Context, userID string, names []string) ([]model.Category, error) {
	return m.addCategoriesFn(ctx, userID, names)
}
func (m *mockUserService) ReplaceCategories(ctx context.Context, userID string, names []string) ([]model.Category, error) {
	return m.replaceCategoriesFn(ctx, userID, names)
}
func (m *mockUserService) UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) (string, error) {
	return m.uploadAvatarFn(ctx, userID, contentType, size, r)
}
func (m *mockUserService) DeleteAvatar(ctx context.Context, userID string) error {
	return m.deleteAvatarFn(ctx, userID)
}
func (m *mockUserService) RegisterDeviceToken(ctx context.Context, userID, deviceToken string) error {
	return m.registerDeviceTokenFn(ctx, userID, deviceToken)
}

type mockNotificationReader struct {
	listFn     func(ctx context.Context, userID string, page, pageSize int) (*notification.ListResult, error)
	markReadFn func(ctx context.Context, userID, newsID string) error
}

func (m *mockNotificationReader) List(ctx context.Context, userID string, page, pageSize int) (*notification.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, pageSize)
	}
	return &notification.ListResult{
		Notifications: []notification.View{},
		Pagination:    model.NewPagination(1, 10, 0),
	}, nil
}
func (m *mockNotificationReader) MarkRead(ctx context.Context, userID, newsID string) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, userID, newsID)
	}
	return nil
}

type mockSessionResolver struct {
	resolveFn func(ctx context.Context, token string) (string, error)
}

func (m *mockSessionResolver) ResolveSession(ctx context.Context, token string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return "", nil
}
