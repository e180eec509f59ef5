// Package model はドメインモデルを定義する。
package model

import "time"

// Notification はファンアウトの起点となる正規の通知レコードを表す。
// 1回の配信イベントにつき1件だけ作成され、各ユーザーへはNewsID参照で展開される。
type Notification struct {
	ID        string
	Title     string
	Message   string
	NewsID    string
	Timestamp time.Time
	Read      bool
	CreatedAt time.Time
}

// NotificationEntry はユーザーのnotificationHistoryに記録される通知1件を表す。
type NotificationEntry struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	NewsID    string    `json:"newsId"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
