package ingest

import "strings"

// Slugify は記事タイトルからURLスラッグを生成する。
// 英数字以外はハイフンに置き換え、連続ハイフンは1つにまとめる。
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // 先頭のハイフンを抑止

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
