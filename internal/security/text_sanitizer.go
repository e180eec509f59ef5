// Package security は取り込みコンテンツの無害化とSSRF防止機能を提供する。
//
// TextSanitizerService は外部フィード由来の記事タイトル・説明文から
// HTMLタグを除去し、モバイルクライアントにそのまま表示できる
// プレーンテキストに変換する。bluemondayのStrictPolicyを基にしており、
// scriptやiframe等の危険なタグはタグごと中身も除去される。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は記事テキストのサニタイズ機能のインターフェースを定義する。
// フィード取り込み時の保存前処理として使用される。
type TextSanitizerService interface {
	// SanitizeText はHTML断片をプレーンテキストに変換して返す。
	// 全てのタグを除去し、HTMLエンティティをデコードし、
	// 前後の空白をトリムする。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを一切持たないため、全てのHTMLタグが除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はHTML断片をプレーンテキストに変換して返す。
// bluemondayはタグ除去後のテキストをエスケープ済みで返すため、
// エンティティをデコードして元の文字に戻す。
func (s *textSanitizer) SanitizeText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
