package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/firstsportz/newsapi/internal/model"
)

// articleColumns は記事取得クエリの共通SELECT句。
// categoriesとLEFT JOINしてカテゴリ名も取得する。
const articleColumns = `
	SELECT a.id, a.title, a.description, a.slug, a.news_link, a.cover_url,
	       a.category_id, a.created_at, a.updated_at,
	       COALESCE(c.name, '') AS category_name
	FROM articles a
	LEFT JOIN categories c ON a.category_id = c.id`

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// scanArticle は記事1行をスキャンする。
func scanArticle(scan func(dest ...interface{}) error) (*model.ArticleWithCategory, error) {
	a := &model.ArticleWithCategory{}
	var description, newsLink, coverURL, categoryID sql.NullString

	err := scan(
		&a.ID, &a.Title, &description, &a.Slug, &newsLink, &coverURL,
		&categoryID, &a.CreatedAt, &a.UpdatedAt, &a.CategoryName,
	)
	if err != nil {
		return nil, err
	}

	a.Description = nullStringValue(description)
	a.NewsLink = nullStringValue(newsLink)
	a.CoverURL = nullStringValue(coverURL)
	a.CategoryID = nullStringValue(categoryID)
	return a, nil
}

// queryArticles は共通SELECT句に条件を付けて記事一覧を取得する。
func (r *PostgresArticleRepo) queryArticles(ctx context.Context, query string, args ...interface{}) ([]model.ArticleWithCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []model.ArticleWithCategory
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.ArticleWithCategory, error) {
	row := r.db.QueryRowContext(ctx, articleColumns+` WHERE a.id = $1`, id)

	a, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by ID: %w", err)
	}
	return a, nil
}

// FindByIDs は指定ID群の記事を取得する。存在しないIDは結果から落ちる。
func (r *PostgresArticleRepo) FindByIDs(ctx context.Context, ids []string) ([]model.ArticleWithCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryArticles(ctx,
		articleColumns+` WHERE a.id = ANY($1)`,
		pq.Array(ids),
	)
}

// CountByIDs は指定ID群のうち実在する記事の件数を返す。
func (r *PostgresArticleRepo) CountByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE id = ANY($1)`,
		pq.Array(ids),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles by IDs: %w", err)
	}
	return count, nil
}

// FindByNewsLink は外部記事URLで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByNewsLink(ctx context.Context, newsLink string) (*model.Article, error) {
	a := &model.Article{}
	var description, link, coverURL, categoryID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, slug, news_link, cover_url, category_id, created_at, updated_at
		 FROM articles WHERE news_link = $1`,
		newsLink,
	).Scan(&a.ID, &a.Title, &description, &a.Slug, &link, &coverURL, &categoryID, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by news link: %w", err)
	}

	a.Description = nullStringValue(description)
	a.NewsLink = nullStringValue(link)
	a.CoverURL = nullStringValue(coverURL)
	a.CategoryID = nullStringValue(categoryID)
	return a, nil
}

// List は記事一覧をupdated_at降順・オフセットページネーションで返す。
func (r *PostgresArticleRepo) List(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error) {
	return r.queryArticles(ctx,
		articleColumns+` ORDER BY a.updated_at DESC OFFSET $1 LIMIT $2`,
		offset, limit,
	)
}

// Count は記事の総数を返す。
func (r *PostgresArticleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// SearchByText はタイトルまたは説明文にqueryを含む記事を返す。
// ILIKEによる大文字小文字を区別しない部分一致。
func (r *PostgresArticleRepo) SearchByText(ctx context.Context, query string, offset, limit int) ([]model.ArticleWithCategory, error) {
	pattern := "%" + query + "%"
	return r.queryArticles(ctx,
		articleColumns+`
		 WHERE a.title ILIKE $1 OR a.description ILIKE $1
		 ORDER BY a.updated_at DESC OFFSET $2 LIMIT $3`,
		pattern, offset, limit,
	)
}

// CountByText はSearchByTextと同条件の総件数を返す。
func (r *PostgresArticleRepo) CountByText(ctx context.Context, query string) (int, error) {
	pattern := "%" + query + "%"
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE title ILIKE $1 OR description ILIKE $1`,
		pattern,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles by text: %w", err)
	}
	return count, nil
}

// ListByCategoryIDs は指定カテゴリに属する記事を返す。
func (r *PostgresArticleRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []string, offset, limit int) ([]model.ArticleWithCategory, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	return r.queryArticles(ctx,
		articleColumns+`
		 WHERE a.category_id = ANY($1)
		 ORDER BY a.updated_at DESC OFFSET $2 LIMIT $3`,
		pq.Array(categoryIDs), offset, limit,
	)
}

// CountByCategoryIDs はListByCategoryIDsと同条件の総件数を返す。
func (r *PostgresArticleRepo) CountByCategoryIDs(ctx context.Context, categoryIDs []string) (int, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE category_id = ANY($1)`,
		pq.Array(categoryIDs),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles by categories: %w", err)
	}
	return count, nil
}

// ListUpdatedBetween はupdated_atが[from, to)の記事を返す。
func (r *PostgresArticleRepo) ListUpdatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error) {
	return r.queryArticles(ctx,
		articleColumns+`
		 WHERE a.updated_at >= $1 AND a.updated_at < $2
		 ORDER BY a.updated_at DESC OFFSET $3 LIMIT $4`,
		from, to, offset, limit,
	)
}

// CountUpdatedBetween はListUpdatedBetweenと同条件の総件数を返す。
func (r *PostgresArticleRepo) CountUpdatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE updated_at >= $1 AND updated_at < $2`,
		from, to,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles by update window: %w", err)
	}
	return count, nil
}

// CreateWithTags は記事とタグ関連を同一トランザクションで作成する。
// タグは名前で検索し、存在しなければ作成する。
func (r *PostgresArticleRepo) CreateWithTags(ctx context.Context, article *model.Article, tagNames []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (id, title, description, slug, news_link, cover_url, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		article.ID, article.Title, nullString(article.Description), article.Slug,
		nullString(article.NewsLink), nullString(article.CoverURL), nullString(article.CategoryID),
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	for _, name := range tagNames {
		var tagID string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO tags (id, name) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`,
			uuid.New().String(), name,
		).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("failed to upsert tag: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			article.ID, tagID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert article tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
