package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/firstsportz/newsapi/internal/middleware"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/notification"
)

// maxAvatarFormMemory はマルチパート解析時にメモリへ展開する上限。
const maxAvatarFormMemory = 4 * 1024 * 1024

// UserServiceInterface はユーザープロフィールハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// AddCategories は興味カテゴリを追加し、更新後の一覧を返す。
	AddCategories(ctx context.Context, userID string, names []string) ([]model.Category, error)
	// ReplaceCategories は興味カテゴリを置き換え、更新後の一覧を返す。
	ReplaceCategories(ctx context.Context, userID string, names []string) ([]model.Category, error)
	// UploadAvatar はアバター画像を保存し、新しいURLを返す。
	UploadAvatar(ctx context.Context, userID, contentType string, size int64, r io.Reader) (string, error)
	// DeleteAvatar はアバター画像を削除する。
	DeleteAvatar(ctx context.Context, userID string) error
	// RegisterDeviceToken はプッシュ通知用デバイストークンを登録する。
	RegisterDeviceToken(ctx context.Context, userID, deviceToken string) error
}

// NotificationReaderInterface は通知履歴ハンドラーが必要とするサービスインターフェース。
type NotificationReaderInterface interface {
	// List は通知履歴を新しい順にページネーションして返す。
	List(ctx context.Context, userID string, page, pageSize int) (*notification.ListResult, error)
	// MarkRead は指定記事の通知を既読にする。
	MarkRead(ctx context.Context, userID, newsID string) error
}

// UserHandler はユーザープロフィールと通知履歴のHTTPハンドラー。
type UserHandler struct {
	service       UserServiceInterface
	notifications NotificationReaderInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, notifications NotificationReaderInterface) *UserHandler {
	return &UserHandler{
		service:       service,
		notifications: notifications,
	}
}

// categoriesRequest はカテゴリ選択リクエストのボディ。
type categoriesRequest struct {
	Categories []string `json:"categories"`
}

// categoryResponse はAPI応答用のカテゴリ。
type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// categoriesResponse はカテゴリ更新の成功レスポンス。
type categoriesResponse struct {
	Message    string             `json:"message"`
	Categories []categoryResponse `json:"categories"`
}

func toCategoriesResponse(message string, categories []model.Category) categoriesResponse {
	resp := categoriesResponse{
		Message:    message,
		Categories: make([]categoryResponse, len(categories)),
	}
	for i, c := range categories {
		resp.Categories[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	return resp
}

// AddCategories は興味カテゴリを追加する。
// POST /users/categories/add {"categories": ["Cricket", ...]}
func (h *UserHandler) AddCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req categoriesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	categories, err := h.service.AddCategories(r.Context(), userID, req.Categories)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toCategoriesResponse("Categories added successfully", categories))
}

// UpdateCategories は興味カテゴリを置き換える。
// PUT /users/categories/update {"categories": ["Cricket", ...]}
func (h *UserHandler) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req categoriesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	categories, err := h.service.ReplaceCategories(r.Context(), userID, req.Categories)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toCategoriesResponse("Categories updated successfully", categories))
}

// avatarResponse はアバター更新の成功レスポンス。
type avatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatarUrl"`
}

// UploadAvatar はアバター画像をアップロードする。
// POST /users/upload-avatar（multipart/form-data、フィールド名avatar）
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarFormMemory); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(
			"Failed to parse multipart form",
			"Send the avatar as multipart/form-data.",
		))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("avatar"))
		return
	}
	defer file.Close()

	url, err := h.service.UploadAvatar(r.Context(), userID, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, avatarResponse{
		Message:   "Avatar uploaded successfully",
		AvatarURL: url,
	})
}

// DeleteAvatar はアバター画像を削除する。
// DELETE /users/delete-avatar
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.DeleteAvatar(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Avatar deleted successfully"})
}

// deviceTokenRequest はデバイストークン登録リクエストのボディ。
type deviceTokenRequest struct {
	DeviceToken string `json:"deviceToken"`
}

// RegisterDeviceToken はプッシュ通知用デバイストークンを登録する。
// POST /users/device-token {"deviceToken": "..."}
func (h *UserHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req deviceTokenRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.service.RegisterDeviceToken(r.Context(), userID, req.DeviceToken); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Device token registered"})
}

// ListNotifications は通知履歴を取得する。
// GET /users/notifications?page=1&pageSize=10
func (h *UserHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page, pageSize := pageParams(r)

	result, err := h.notifications.List(r.Context(), userID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// updateReadStatusRequest は既読更新リクエストのボディ。
type updateReadStatusRequest struct {
	NewsID string `json:"newsId"`
}

// UpdateReadStatus は指定記事の通知を既読にする。
// POST /users/update-read-status {"newsId": "..."}
func (h *UserHandler) UpdateReadStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateReadStatusRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), userID, req.NewsID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "Notification marked as read"})
}
