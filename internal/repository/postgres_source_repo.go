package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/firstsportz/newsapi/internal/model"
)

// PostgresSourceRepo はPostgreSQLを使用した取り込み元フィードリポジトリ。
type PostgresSourceRepo struct {
	db *sql.DB
}

// NewPostgresSourceRepo はPostgresSourceRepoを生成する。
func NewPostgresSourceRepo(db *sql.DB) *PostgresSourceRepo {
	return &PostgresSourceRepo{db: db}
}

// ListDueForFetch は取り込み対象のソースを排他的に取得する。
// FOR UPDATE SKIP LOCKEDにより複数ワーカーが同一ソースを重複取得しない。
func (r *PostgresSourceRepo) ListDueForFetch(ctx context.Context) ([]*model.Source, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, feed_url, category_id, active, consecutive_errors,
		        last_fetched_at, next_fetch_at, created_at, updated_at
		 FROM sources
		 WHERE active = true AND next_fetch_at <= now()
		 ORDER BY next_fetch_at
		 FOR UPDATE SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due sources: %w", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		s := &model.Source{}
		var categoryID sql.NullString
		var lastFetchedAt sql.NullTime

		err := rows.Scan(
			&s.ID, &s.Name, &s.FeedURL, &categoryID, &s.Active, &s.ConsecutiveErrors,
			&lastFetchedAt, &s.NextFetchAt, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}

		s.CategoryID = nullStringValue(categoryID)
		if lastFetchedAt.Valid {
			t := lastFetchedAt.Time
			s.LastFetchedAt = &t
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source rows: %w", err)
	}

	return sources, nil
}

// UpdateFetchState はソースの取り込み状態を更新する。
func (r *PostgresSourceRepo) UpdateFetchState(ctx context.Context, source *model.Source) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sources
		 SET consecutive_errors = $1, last_fetched_at = $2, next_fetch_at = $3, updated_at = now()
		 WHERE id = $4`,
		source.ConsecutiveErrors, source.LastFetchedAt, source.NextFetchAt, source.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update source fetch state: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SourceRepository = (*PostgresSourceRepo)(nil)
