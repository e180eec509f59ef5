package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/firstsportz/newsapi/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用したカテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// queryCategories はカテゴリ一覧クエリの共通処理。
func (r *PostgresCategoryRepo) queryCategories(ctx context.Context, query string, args ...interface{}) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}

	return categories, nil
}

// FindByNameContains は名前にqueryを含むカテゴリを返す（ILIKE部分一致）。
func (r *PostgresCategoryRepo) FindByNameContains(ctx context.Context, query string) ([]model.Category, error) {
	return r.queryCategories(ctx,
		`SELECT id, name, created_at FROM categories WHERE name ILIKE $1 ORDER BY name`,
		"%"+query+"%",
	)
}

// FindByNamesIn は名前が指定リストに完全一致するカテゴリを返す。
func (r *PostgresCategoryRepo) FindByNamesIn(ctx context.Context, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return r.queryCategories(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = ANY($1) ORDER BY name`,
		pq.Array(names),
	)
}

// FindOrCreateByName は名前でカテゴリを検索し、存在しなければ作成して返す。
func (r *PostgresCategoryRepo) FindOrCreateByName(ctx context.Context, name string) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`,
		uuid.New().String(), name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create category: %w", err)
	}
	return c, nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
