package security

import (
	"testing"
)

// TestSanitizeText_StripsTags は全てのHTMLタグが除去されることを検証する。
func TestSanitizeText_StripsTags(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "pタグが除去されテキストのみ残る",
			input: "<p>試合結果の速報</p>",
			want:  "試合結果の速報",
		},
		{
			name:  "ネストしたタグが全て除去される",
			input: "<div><strong>決勝</strong>進出<em>確定</em></div>",
			want:  "決勝進出確定",
		},
		{
			name:  "scriptタグは中身ごと除去される",
			input: `速報<script>alert("xss")</script>です`,
			want:  "速報です",
		},
		{
			name:  "styleタグは中身ごと除去される",
			input: "<style>body{display:none}</style>タイトル",
			want:  "タイトル",
		},
		{
			name:  "imgタグが除去される",
			input: `<img src="https://example.com/a.png">写真付き記事`,
			want:  "写真付き記事",
		},
		{
			name:  "aタグはテキストのみ残る",
			input: `詳細は<a href="https://example.com">こちら</a>`,
			want:  "詳細はこちら",
		},
		{
			name:  "タグなしのテキストはそのまま",
			input: "プレーンテキスト",
			want:  "プレーンテキスト",
		},
		{
			name:  "空文字列は空文字列のまま",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText_UnescapesEntities はHTMLエンティティがデコードされることを検証する。
func TestSanitizeText_UnescapesEntities(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ampエンティティがデコードされる",
			input: "A &amp; B",
			want:  "A & B",
		},
		{
			name:  "quotエンティティがデコードされる",
			input: "&quot;quoted&quot;",
			want:  `"quoted"`,
		},
		{
			name:  "数値エンティティがデコードされる",
			input: "&#8220;smart&#8221;",
			want:  "“smart”",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText_TrimsWhitespace は前後の空白がトリムされることを検証する。
func TestSanitizeText_TrimsWhitespace(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.SanitizeText("  <p> 本文 </p>  ")
	if got != "本文" {
		t.Errorf("SanitizeText = %q, want %q", got, "本文")
	}
}

// TestSanitizeText_Idempotent は同一入力に対して冪等であることを検証する。
func TestSanitizeText_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	input := `<p>速報<script>x()</script>テキスト &amp; 続き</p>`
	first := sanitizer.SanitizeText(input)
	second := sanitizer.SanitizeText(first)
	if first != second {
		t.Errorf("SanitizeText is not idempotent: first=%q second=%q", first, second)
	}
}
