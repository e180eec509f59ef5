package ingest

import (
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// maxPageSize はog:image解決のためにページから読み込む最大バイト数。
const maxPageSize = 1 * 1024 * 1024

// resolveOGImage は記事ページのog:imageメタタグからカバー画像URLを取得する。
// ページの取得・解析の失敗はカバー無しとして扱うため、エラーは返さない。
func resolveOGImage(ctx context.Context, client *http.Client, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	return extractOGImage(io.LimitReader(resp.Body, maxPageSize))
}

// extractOGImage はHTMLからog:imageメタタグのcontent属性を取り出す。
// 見つからない場合は空文字を返す。
func extractOGImage(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property", "name":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if property == "og:image" && content != "" {
				found = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}
