package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/firstsportz/newsapi/internal/model"
)

// userColumns はユーザー取得クエリの共通SELECT句。
const userColumns = `
	SELECT id, email, name, password_hash, avatar_url, device_token,
	       reset_code, reset_code_expires_at,
	       recent_searches, bookmarks, history, notification_history,
	       created_at, updated_at
	FROM users`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// scanUser はユーザー1行をスキャンする。JSONB列はここでデコードする。
func scanUser(scan func(dest ...interface{}) error) (*model.User, error) {
	u := &model.User{}
	var passwordHash, avatarURL, deviceToken, resetCode sql.NullString
	var resetCodeExpiresAt sql.NullTime
	var recentSearches, bookmarks, history, notificationHistory []byte

	err := scan(
		&u.ID, &u.Email, &u.Name, &passwordHash, &avatarURL, &deviceToken,
		&resetCode, &resetCodeExpiresAt,
		&recentSearches, &bookmarks, &history, &notificationHistory,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = nullStringValue(passwordHash)
	u.AvatarURL = nullStringValue(avatarURL)
	u.DeviceToken = nullStringValue(deviceToken)
	u.ResetCode = nullStringValue(resetCode)
	if resetCodeExpiresAt.Valid {
		t := resetCodeExpiresAt.Time
		u.ResetCodeExpiresAt = &t
	}

	if err := json.Unmarshal(recentSearches, &u.RecentSearches); err != nil {
		return nil, fmt.Errorf("failed to decode recent searches: %w", err)
	}
	if err := json.Unmarshal(bookmarks, &u.Bookmarks); err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks: %w", err)
	}
	if err := json.Unmarshal(history, &u.History); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if err := json.Unmarshal(notificationHistory, &u.NotificationHistory); err != nil {
		return nil, fmt.Errorf("failed to decode notification history: %w", err)
	}

	return u, nil
}

// findUserBy は単一条件でユーザーを1件取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) findUserBy(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, userColumns+" "+where, arg)

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findUserBy(ctx, `WHERE id = $1`, id)
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findUserBy(ctx, `WHERE email = $1`, email)
}

// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
// identityがnilの場合（ローカル認証登録）はユーザーのみ作成する。
func (r *PostgresUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, avatar_url)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name,
		nullString(user.PasswordHash), nullString(user.AvatarURL),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if identity != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO identities (id, user_id, provider, provider_user_id)
			 VALUES ($1, $2, $3, $4)`,
			identity.ID, user.ID, identity.Provider, identity.ProviderUserID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert identity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListWithDeviceToken はデバイストークンを登録済みの全ユーザーを返す。
func (r *PostgresUserRepo) ListWithDeviceToken(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		userColumns+` WHERE device_token IS NOT NULL AND device_token <> '' ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with device token: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// updateJSONField はJSONB列を丸ごと置き換える共通処理。
// nilスライスも空配列としてエンコードし、NULLが列に入らないようにする。
func (r *PostgresUserRepo) updateJSONField(ctx context.Context, userID, column string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", column, err)
	}
	if string(data) == "null" {
		data = []byte("[]")
	}

	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = now() WHERE id = $2`, column),
		data, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return nil
}

// UpdateRecentSearches は検索履歴フィールドを丸ごと置き換える。
func (r *PostgresUserRepo) UpdateRecentSearches(ctx context.Context, userID string, searches []model.RecentSearch) error {
	return r.updateJSONField(ctx, userID, "recent_searches", searches)
}

// UpdateBookmarks はブックマークフィールドを丸ごと置き換える。
func (r *PostgresUserRepo) UpdateBookmarks(ctx context.Context, userID string, bookmarks []string) error {
	return r.updateJSONField(ctx, userID, "bookmarks", bookmarks)
}

// UpdateHistory は閲覧履歴フィールドを丸ごと置き換える。
func (r *PostgresUserRepo) UpdateHistory(ctx context.Context, userID string, history []string) error {
	return r.updateJSONField(ctx, userID, "history", history)
}

// UpdateNotificationHistory は通知履歴フィールドを丸ごと置き換える。
func (r *PostgresUserRepo) UpdateNotificationHistory(ctx context.Context, userID string, entries []model.NotificationEntry) error {
	return r.updateJSONField(ctx, userID, "notification_history", entries)
}

// UpdateDeviceToken はプッシュ通知用デバイストークンを更新する。
func (r *PostgresUserRepo) UpdateDeviceToken(ctx context.Context, userID, deviceToken string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET device_token = $1, updated_at = now() WHERE id = $2`,
		nullString(deviceToken), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update device token: %w", err)
	}
	return nil
}

// UpdateAvatarURL はアバターURLを更新する。空文字で削除を表す。
func (r *PostgresUserRepo) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_url = $1, updated_at = now() WHERE id = $2`,
		nullString(avatarURL), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update avatar URL: %w", err)
	}
	return nil
}

// UpdateResetCode はパスワードリセットコードと有効期限を設定する。
func (r *PostgresUserRepo) UpdateResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_code = $1, reset_code_expires_at = $2, updated_at = now() WHERE id = $3`,
		code, expiresAt, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reset code: %w", err)
	}
	return nil
}

// UpdatePassword はパスワードハッシュを更新し、リセットコードをクリアする。
func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = $1, reset_code = NULL, reset_code_expires_at = NULL, updated_at = now()
		 WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// AddCategories はユーザーの興味カテゴリに指定IDを追加する（既存分は維持）。
func (r *PostgresUserRepo) AddCategories(ctx context.Context, userID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_categories (user_id, category_id)
		 SELECT $1, unnest($2::uuid[])
		 ON CONFLICT DO NOTHING`,
		userID, pq.Array(categoryIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to add user categories: %w", err)
	}
	return nil
}

// ReplaceCategories はユーザーの興味カテゴリを指定IDで置き換える。
func (r *PostgresUserRepo) ReplaceCategories(ctx context.Context, userID string, categoryIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM user_categories WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user categories: %w", err)
	}

	if len(categoryIDs) > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_categories (user_id, category_id)
			 SELECT $1, unnest($2::uuid[])
			 ON CONFLICT DO NOTHING`,
			userID, pq.Array(categoryIDs),
		)
		if err != nil {
			return fmt.Errorf("failed to insert user categories: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListCategories はユーザーの興味カテゴリ一覧を返す。
func (r *PostgresUserRepo) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.created_at
		 FROM user_categories uc
		 JOIN categories c ON uc.category_id = c.id
		 WHERE uc.user_id = $1
		 ORDER BY c.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user categories: %w", err)
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

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
