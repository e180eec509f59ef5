// Package notification は通知のファンアウト配信と通知履歴の管理機能を提供する。
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/firstsportz/newsapi/internal/metrics"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/push"
	"github.com/firstsportz/newsapi/internal/repository"
)

// Input はファンアウト1回分の通知内容を表す。
type Input struct {
	Title   string
	Message string
	NewsID  string
}

// View は通知一覧応答の1件。記事が現存する場合はサマリーで補強される。
type View struct {
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	NewsID    string                `json:"newsId"`
	Timestamp time.Time             `json:"timestamp"`
	Read      bool                  `json:"read"`
	Article   *model.ArticleSummary `json:"article,omitempty"`
}

// ListResult はListの戻り値。
type ListResult struct {
	Notifications []View           `json:"notifications"`
	Pagination    model.Pagination `json:"pagination"`
}

// NotificationService は通知ファンアウトと通知履歴のサービス。
type NotificationService struct {
	userRepo         repository.UserRepository
	articleRepo      repository.ArticleRepository
	notificationRepo repository.NotificationRepository
	sender           push.PushSender
	collector        metrics.MetricsCollector
	logger           *slog.Logger
	maxConcurrent    int
	now              func() time.Time
}

// NewNotificationService はNotificationServiceの新しいインスタンスを生成する。
// maxConcurrentはファンアウト時の同時実行ゴルーチン数の上限。
func NewNotificationService(
	userRepo repository.UserRepository,
	articleRepo repository.ArticleRepository,
	notificationRepo repository.NotificationRepository,
	sender push.PushSender,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	maxConcurrent int,
) *NotificationService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &NotificationService{
		userRepo:         userRepo,
		articleRepo:      articleRepo,
		notificationRepo: notificationRepo,
		sender:           sender,
		collector:        collector,
		logger:           logger,
		maxConcurrent:    maxConcurrent,
		now:              time.Now,
	}
}

// SendToUsers はデバイストークン登録済みの全ユーザーへ通知をファンアウトする。
// 正規の通知レコードを1件だけ永続化した後、ユーザーごとに独立して
// プッシュ配信（best-effort）と通知履歴への追記を行う。
// ユーザー単位の失敗はログに記録して握りつぶし、残りのユーザーの処理を続行する。
// ユーザー間の処理順序は保証しない。
func (s *NotificationService) SendToUsers(ctx context.Context, input Input) error {
	users, err := s.userRepo.ListWithDeviceToken(ctx)
	if err != nil {
		return model.NewDataAccessError(err)
	}

	entry := model.NotificationEntry{
		Title:     input.Title,
		Message:   input.Message,
		NewsID:    input.NewsID,
		Timestamp: s.now(),
		Read:      false,
	}

	record := &model.Notification{
		ID:        uuid.New().String(),
		Title:     entry.Title,
		Message:   entry.Message,
		NewsID:    entry.NewsID,
		Timestamp: entry.Timestamp,
		Read:      false,
	}
	if err := s.notificationRepo.Create(ctx, record); err != nil {
		return model.NewDataAccessError(err)
	}

	// セマフォで同時実行数を制限しつつユーザーごとに並行処理する
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(u model.User) {
			defer wg.Done()
			defer func() { <-sem }()
			s.deliverToUser(ctx, u, entry)
		}(user)
	}
	wg.Wait()

	s.logger.Info("通知ファンアウトが完了しました",
		slog.String("news_id", input.NewsID),
		slog.Int("user_count", len(users)),
	)
	return nil
}

// deliverToUser は1ユーザー分の配信と履歴追記を行う。失敗はログのみ。
func (s *NotificationService) deliverToUser(ctx context.Context, user model.User, entry model.NotificationEntry) {
	err := s.sender.Send(ctx, user.DeviceToken, push.Message{
		Title:  entry.Title,
		Body:   entry.Message,
		NewsID: entry.NewsID,
	})
	if err != nil {
		s.collector.RecordPushFailure()
		s.logger.Warn("プッシュ配信に失敗しました",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		s.collector.RecordPushDelivered()
	}

	// 配信の成否に関わらず通知履歴には追記する
	updated := append(user.NotificationHistory, entry)
	if err := s.userRepo.UpdateNotificationHistory(ctx, user.ID, updated); err != nil {
		s.logger.Warn("通知履歴の更新に失敗しました",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

// List はユーザーの通知履歴を新しい順に返す。
// 各エントリは参照先の記事が現存する場合サマリーで補強される。
func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int) (*ListResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewDataAccessError(err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	// 履歴は時系列の追記なので逆順にして新しい順にする
	entries := user.NotificationHistory
	reversed := make([]model.NotificationEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	page, pageSize = model.NormalizePageParams(page, pageSize)
	start := (page - 1) * pageSize
	if start > len(reversed) {
		start = len(reversed)
	}
	end := start + pageSize
	if end > len(reversed) {
		end = len(reversed)
	}
	pageEntries := reversed[start:end]

	views := make([]View, 0, len(pageEntries))
	for _, e := range pageEntries {
		view := View{
			Title:     e.Title,
			Message:   e.Message,
			NewsID:    e.NewsID,
			Timestamp: e.Timestamp,
			Read:      e.Read,
		}
		if e.NewsID != "" {
			article, err := s.articleRepo.FindByID(ctx, e.NewsID)
			if err != nil {
				return nil, model.NewDataAccessError(err)
			}
			if article != nil {
				summary := model.NewArticleSummary(*article)
				view.Article = &summary
			}
		}
		views = append(views, view)
	}

	return &ListResult{
		Notifications: views,
		Pagination:    model.NewPagination(page, pageSize, len(entries)),
	}, nil
}

// MarkRead は指定newsIdに一致する通知履歴エントリを既読にする。
// 一致するエントリがない場合も成功として扱う。
func (s *NotificationService) MarkRead(ctx context.Context, userID, newsID string) error {
	if newsID == "" {
		return model.NewMissingFieldError("newsId")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.NewDataAccessError(err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	changed := false
	updated := make([]model.NotificationEntry, len(user.NotificationHistory))
	for i, e := range user.NotificationHistory {
		if e.NewsID == newsID && !e.Read {
			e.Read = true
			changed = true
		}
		updated[i] = e
	}
	if !changed {
		return nil
	}

	if err := s.userRepo.UpdateNotificationHistory(ctx, userID, updated); err != nil {
		return model.NewDataAccessError(err)
	}
	return nil
}
