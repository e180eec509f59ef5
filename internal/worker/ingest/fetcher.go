// Package ingest はRSS/Atomフィードからの記事取り込み処理を提供する。
// スケジューラ、フェッチャー、バックオフ戦略を含む。
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/firstsportz/newsapi/internal/metrics"
	"github.com/firstsportz/newsapi/internal/model"
	"github.com/firstsportz/newsapi/internal/notification"
	"github.com/firstsportz/newsapi/internal/repository"
	"github.com/firstsportz/newsapi/internal/security"
)

// Notifier は新着記事の通知ファンアウトのインターフェース。
// notification.NotificationServiceの部分集合として定義する。
type Notifier interface {
	SendToUsers(ctx context.Context, input notification.Input) error
}

// Fetcher は個別ソースのHTTPフェッチ・パース・記事保存を行う。
// SSRF検証付きクライアントでフィードを取得し、gofeedでパースして
// 新規記事を保存する。保存した記事ごとに通知ファンアウトを起動する。
type Fetcher struct {
	articleRepo repository.ArticleRepository
	sourceRepo  repository.SourceRepository
	sanitizer   security.TextSanitizerService
	ssrfGuard   security.SSRFGuardService
	notifier    Notifier
	collector   metrics.MetricsCollector
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
	interval    time.Duration
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// intervalは取り込み成功後に次回取り込みまで空ける間隔。
func NewFetcher(
	articleRepo repository.ArticleRepository,
	sourceRepo repository.SourceRepository,
	sanitizer security.TextSanitizerService,
	ssrfGuard security.SSRFGuardService,
	notifier Notifier,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
	interval time.Duration,
) *Fetcher {
	return &Fetcher{
		articleRepo: articleRepo,
		sourceRepo:  sourceRepo,
		sanitizer:   sanitizer,
		ssrfGuard:   ssrfGuard,
		notifier:    notifier,
		collector:   collector,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		interval:    interval,
	}
}

// Fetch はソースのフィードを取り込み、結果に応じてソース状態を更新する。
func (f *Fetcher) Fetch(ctx context.Context, source *model.Source) error {
	start := time.Now()

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(source.FeedURL); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		f.recordFailure(ctx, source)
		return fmt.Errorf("SSRF検証に失敗: %w", err)
	}

	client := f.ssrfGuard.NewSafeClient(f.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.FeedURL, nil)
	if err != nil {
		return fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "FirstSportz/1.0 News Aggregator")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		f.logger.Error("フィードの取得に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		f.recordFailure(ctx, source)
		return fmt.Errorf("フィード取得に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("フィードが異常ステータスを返しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.Int("http_status", resp.StatusCode),
		)
		f.recordFailure(ctx, source)
		return fmt.Errorf("フィードがステータス%dを返却", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.recordFailure(ctx, source)
		return fmt.Errorf("レスポンス読み取りに失敗: %w", err)
	}

	parsedFeed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		f.logger.Error("フィードのパースに失敗しました",
			slog.String("source_id", source.ID),
			slog.String("feed_url", source.FeedURL),
			slog.String("error", err.Error()),
		)
		f.recordFailure(ctx, source)
		return fmt.Errorf("フィードのパースに失敗: %w", err)
	}

	created := 0
	for _, item := range parsedFeed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		ok, err := f.ingestItem(ctx, client, source, item)
		if err != nil {
			f.logger.Error("記事の取り込みに失敗しました",
				slog.String("source_id", source.ID),
				slog.String("news_link", item.Link),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		f.collector.RecordArticlesIngested(created)
	}

	// 成功: エラーカウントをリセットして次回時刻を設定
	now := time.Now()
	source.ConsecutiveErrors = 0
	source.LastFetchedAt = &now
	source.NextFetchAt = now.Add(f.interval)
	if err := f.sourceRepo.UpdateFetchState(ctx, source); err != nil {
		f.logger.Error("ソース状態の更新に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	f.logger.Info("フィード取り込みが完了しました",
		slog.String("source_id", source.ID),
		slog.String("feed_url", source.FeedURL),
		slog.Int("items_total", len(parsedFeed.Items)),
		slog.Int("articles_created", created),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// ingestItem はフィードの1記事を取り込む。新規作成した場合はtrueを返す。
// news_linkで重複判定し、既存記事は何もしない。
func (f *Fetcher) ingestItem(ctx context.Context, client *http.Client, source *model.Source, item *gofeed.Item) (bool, error) {
	existing, err := f.articleRepo.FindByNewsLink(ctx, item.Link)
	if err != nil {
		return false, fmt.Errorf("重複判定に失敗: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	title := f.sanitizer.SanitizeText(item.Title)
	if title == "" {
		return false, nil
	}
	description := f.sanitizer.SanitizeText(item.Description)

	createdAt := time.Now()
	if item.PublishedParsed != nil {
		createdAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		createdAt = *item.UpdatedParsed
	}

	article := &model.Article{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Slug:        Slugify(title),
		NewsLink:    item.Link,
		CoverURL:    f.coverURL(ctx, client, item),
		CategoryID:  source.CategoryID,
		CreatedAt:   createdAt,
		UpdatedAt:   time.Now(),
	}

	if err := f.articleRepo.CreateWithTags(ctx, article, item.Categories); err != nil {
		return false, fmt.Errorf("記事の保存に失敗: %w", err)
	}

	// 新着記事の通知。配信失敗は取り込みを妨げない。
	if f.notifier != nil {
		if err := f.notifier.SendToUsers(ctx, notification.Input{
			Title:   "New article published",
			Message: title,
			NewsID:  article.ID,
		}); err != nil {
			f.logger.Warn("通知ファンアウトに失敗しました",
				slog.String("article_id", article.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return true, nil
}

// coverURL は記事のカバー画像URLを決定する。
// フィードの画像・エンクロージャを優先し、無ければ記事ページのog:imageを解決する。
func (f *Fetcher) coverURL(ctx context.Context, client *http.Client, item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if err := f.ssrfGuard.ValidateURL(item.Link); err != nil {
		return ""
	}
	return resolveOGImage(ctx, client, item.Link)
}

// recordFailure は取り込み失敗時にソース状態とメトリクスを更新する。
// 連続エラー回数をインクリメントし、指数バックオフでnext_fetch_atを設定する。
func (f *Fetcher) recordFailure(ctx context.Context, source *model.Source) {
	f.collector.RecordIngestFailure(source.ID)

	source.ConsecutiveErrors++
	source.NextFetchAt = time.Now().Add(CalculateBackoff(source.ConsecutiveErrors - 1))
	if err := f.sourceRepo.UpdateFetchState(ctx, source); err != nil {
		f.logger.Error("ソース状態の更新に失敗しました",
			slog.String("source_id", source.ID),
			slog.String("error", err.Error()),
		)
	}
}
