// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/firstsportz/newsapi/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ArticleWithCategory, error)

	// FindByIDs は指定ID群の記事を取得する。存在しないIDは結果から落ちる。
	// 戻り順は未定義のため、呼び出し側で必要に応じて並べ替えること。
	FindByIDs(ctx context.Context, ids []string) ([]model.ArticleWithCategory, error)

	// CountByIDs は指定ID群のうち実在する記事の件数を返す。
	CountByIDs(ctx context.Context, ids []string) (int, error)

	// FindByNewsLink は外部記事URLで記事を検索する。見つからない場合はnilを返す。
	// 取り込みワーカーの重複判定に使用する。
	FindByNewsLink(ctx context.Context, newsLink string) (*model.Article, error)

	// List は記事一覧をupdated_at降順・オフセットページネーションで返す。
	List(ctx context.Context, offset, limit int) ([]model.ArticleWithCategory, error)

	// Count は記事の総数を返す。
	Count(ctx context.Context) (int, error)

	// SearchByText はタイトルまたは説明文にqueryを含む記事を返す（大文字小文字を区別しない部分一致）。
	SearchByText(ctx context.Context, query string, offset, limit int) ([]model.ArticleWithCategory, error)

	// CountByText はSearchByTextと同条件の総件数を返す。
	CountByText(ctx context.Context, query string) (int, error)

	// ListByCategoryIDs は指定カテゴリに属する記事を返す。
	ListByCategoryIDs(ctx context.Context, categoryIDs []string, offset, limit int) ([]model.ArticleWithCategory, error)

	// CountByCategoryIDs はListByCategoryIDsと同条件の総件数を返す。
	CountByCategoryIDs(ctx context.Context, categoryIDs []string) (int, error)

	// ListUpdatedBetween はupdated_atが[from, to)の記事を返す。
	ListUpdatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]model.ArticleWithCategory, error)

	// CountUpdatedBetween はListUpdatedBetweenと同条件の総件数を返す。
	CountUpdatedBetween(ctx context.Context, from, to time.Time) (int, error)

	// CreateWithTags は記事とタグ関連を同一トランザクションで作成する。
	// タグは名前で検索し、存在しなければ作成する。
	CreateWithTags(ctx context.Context, article *model.Article, tagNames []string) error
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// FindByNameContains は名前にqueryを含むカテゴリを返す（大文字小文字を区別しない部分一致）。
	FindByNameContains(ctx context.Context, query string) ([]model.Category, error)

	// FindByNamesIn は名前が指定リストに完全一致するカテゴリを返す。
	FindByNamesIn(ctx context.Context, names []string) ([]model.Category, error)

	// FindOrCreateByName は名前でカテゴリを検索し、存在しなければ作成して返す。
	FindOrCreateByName(ctx context.Context, name string) (*model.Category, error)
}

// TagRepository はタグデータの永続化インターフェース。
type TagRepository interface {
	// ListTagRefs は全記事のタグ関連を記事の作成順で返す。
	// タグランキングの集計入力として使用する。
	ListTagRefs(ctx context.Context) ([]model.TagRef, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
// リスト値フィールド（recentSearches/bookmarks/history/notificationHistory)は
// JSONB列を丸ごと置き換えるread-modify-write方式で更新する。
// 楽観ロック等の同時実行制御は行わないため、同一ユーザーの同一フィールドへの
// 並行更新は後勝ちになる（lost updateを許容する設計判断）。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// ListWithDeviceToken はデバイストークンを登録済みの全ユーザーを返す。
	ListWithDeviceToken(ctx context.Context) ([]model.User, error)

	// UpdateRecentSearches は検索履歴フィールドを丸ごと置き換える。
	UpdateRecentSearches(ctx context.Context, userID string, searches []model.RecentSearch) error

	// UpdateBookmarks はブックマークフィールドを丸ごと置き換える。
	UpdateBookmarks(ctx context.Context, userID string, bookmarks []string) error

	// UpdateHistory は閲覧履歴フィールドを丸ごと置き換える。
	UpdateHistory(ctx context.Context, userID string, history []string) error

	// UpdateNotificationHistory は通知履歴フィールドを丸ごと置き換える。
	UpdateNotificationHistory(ctx context.Context, userID string, entries []model.NotificationEntry) error

	// UpdateDeviceToken はプッシュ通知用デバイストークンを更新する。
	UpdateDeviceToken(ctx context.Context, userID, deviceToken string) error

	// UpdateAvatarURL はアバターURLを更新する。空文字で削除を表す。
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error

	// UpdateResetCode はパスワードリセットコードと有効期限を設定する。
	UpdateResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error

	// UpdatePassword はパスワードハッシュを更新し、リセットコードをクリアする。
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// AddCategories はユーザーの興味カテゴリに指定IDを追加する（既存分は維持）。
	AddCategories(ctx context.Context, userID string, categoryIDs []string) error

	// ReplaceCategories はユーザーの興味カテゴリを指定IDで置き換える。
	ReplaceCategories(ctx context.Context, userID string, categoryIDs []string) error

	// ListCategories はユーザーの興味カテゴリ一覧を返す。
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// NotificationRepository は通知レコードの永続化インターフェース。
type NotificationRepository interface {
	// Create は正規の通知レコードを作成する。
	Create(ctx context.Context, n *model.Notification) error
}

// SourceRepository は取り込み元フィードの永続化インターフェース。
type SourceRepository interface {
	// ListDueForFetch は取り込み対象のソースを排他的に取得する。
	// next_fetch_at <= now() かつ active = true のソースを
	// FOR UPDATE SKIP LOCKEDで取得する。
	ListDueForFetch(ctx context.Context) ([]*model.Source, error)

	// UpdateFetchState はソースの取り込み状態を更新する。
	UpdateFetchState(ctx context.Context, source *model.Source) error
}
