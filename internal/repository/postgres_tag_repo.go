package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/firstsportz/newsapi/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// ListTagRefs は全記事のタグ関連を記事の作成順で返す。
// 並び順を固定することでランキングの同数タイブレークを決定的にする。
func (r *PostgresTagRepo) ListTagRefs(ctx context.Context) ([]model.TagRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT at.article_id, t.id, t.name
		 FROM article_tags at
		 JOIN articles a ON at.article_id = a.id
		 JOIN tags t ON at.tag_id = t.id
		 ORDER BY a.created_at, t.created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag refs: %w", err)
	}
	defer rows.Close()

	var refs []model.TagRef
	for rows.Next() {
		var ref model.TagRef
		if err := rows.Scan(&ref.ArticleID, &ref.TagID, &ref.TagName); err != nil {
			return nil, fmt.Errorf("failed to scan tag ref row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag ref rows: %w", err)
	}

	return refs, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
