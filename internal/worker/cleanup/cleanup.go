// Package cleanup は認証関連データの自動削除ジョブを提供する。
// 期限切れセッションの削除と、期限切れパスワードリセットコードの
// クリアを日次バッチで実行する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/firstsportz/newsapi/internal/repository"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は期限切れ認証データの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db          Executor
	sessionRepo repository.SessionRepository
	logger      *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, sessionRepo repository.SessionRepository, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:          db,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// Run は期限切れセッションを削除し、期限切れリセットコードをクリアする。
// 冪等: 対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedSessions, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	clearedCodes, err := j.clearExpiredResetCodes(ctx)
	if err != nil {
		j.logger.Error("期限切れリセットコードのクリアに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れリセットコードのクリアに失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", deletedSessions),
		slog.Int64("cleared_reset_codes", clearedCodes),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// clearExpiredResetCodes は有効期限を過ぎたリセットコードをNULLに戻す。
func (j *CleanupJob) clearExpiredResetCodes(ctx context.Context) (int64, error) {
	query := `UPDATE users
	          SET reset_code = NULL, reset_code_expires_at = NULL, updated_at = now()
	          WHERE reset_code IS NOT NULL AND reset_code_expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Start は日次ティッカーでクリーンアップジョブを起動する。
// 起動直後に1回実行し、以降はintervalごとに実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
