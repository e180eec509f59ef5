// Package model はドメインモデルを定義する。
package model

import "time"

// maxRecentSearches はユーザーごとに保持する検索履歴の上限件数。
const maxRecentSearches = 5

// User はサービス利用ユーザーを表す。
// RecentSearches/Bookmarks/History/NotificationHistoryはJSONB列として
// 丸ごと読み書きされるリストフィールド。
type User struct {
	ID                  string
	Email               string
	Name                string
	PasswordHash        string // ローカル認証を使わないユーザーは空
	AvatarURL           string
	DeviceToken         string // プッシュ通知未登録のユーザーは空
	ResetCode           string
	ResetCodeExpiresAt  *time.Time
	RecentSearches      []RecentSearch
	Bookmarks           []string
	History             []string
	NotificationHistory []NotificationEntry
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecentSearch はユーザーの検索履歴1件を表す。
type RecentSearch struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendRecentSearch は検索履歴にクエリを追記した新しいリストを返す。
// 同一クエリ（大文字小文字を区別する完全一致）の既存エントリは削除してから
// 末尾に追加し、上限5件を超えた分は古い順に切り捨てる。
func AppendRecentSearch(searches []RecentSearch, query string, now time.Time) []RecentSearch {
	updated := make([]RecentSearch, 0, len(searches)+1)
	for _, s := range searches {
		if s.Query != query {
			updated = append(updated, s)
		}
	}
	updated = append(updated, RecentSearch{Query: query, Timestamp: now})
	if len(updated) > maxRecentSearches {
		updated = updated[len(updated)-maxRecentSearches:]
	}
	return updated
}

// ContainsID はIDリストに指定IDが含まれるかを返す。
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID はIDリストから指定IDを除外した新しいリストを返す。
func RemoveID(ids []string, id string) []string {
	filtered := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// Identity は外部IdPとの紐付け情報を表す。
// 複数のIdP（Google等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはBearerトークンとしてクライアントに渡される。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
