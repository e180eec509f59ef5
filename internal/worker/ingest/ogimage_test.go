package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractOGImage(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "property属性のog:imageを取得する",
			html: `<html><head><meta property="og:image" content="https://example.com/cover.jpg"></head><body></body></html>`,
			want: "https://example.com/cover.jpg",
		},
		{
			name: "name属性のog:imageも取得する",
			html: `<html><head><meta name="og:image" content="https://example.com/alt.jpg"></head></html>`,
			want: "https://example.com/alt.jpg",
		},
		{
			name: "最初のog:imageが優先される",
			html: `<html><head>
<meta property="og:image" content="https://example.com/first.jpg">
<meta property="og:image" content="https://example.com/second.jpg">
</head></html>`,
			want: "https://example.com/first.jpg",
		},
		{
			name: "og:imageが無い場合は空文字",
			html: `<html><head><meta property="og:title" content="Title"></head></html>`,
			want: "",
		},
		{
			name: "contentが空の場合は無視される",
			html: `<html><head><meta property="og:image" content=""></head></html>`,
			want: "",
		},
		{
			name: "壊れたHTMLでもパースできる範囲で取得する",
			html: `<head><meta property="og:image" content="https://example.com/x.jpg">`,
			want: "https://example.com/x.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractOGImage(strings.NewReader(tt.html))
			if got != tt.want {
				t.Errorf("extractOGImage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOGImage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://example.com/page-cover.jpg"></head></html>`)
	}))
	defer server.Close()

	got := resolveOGImage(context.Background(), server.Client(), server.URL)
	if got != "https://example.com/page-cover.jpg" {
		t.Errorf("resolveOGImage = %q, want %q", got, "https://example.com/page-cover.jpg")
	}
}

func TestResolveOGImage_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if got := resolveOGImage(context.Background(), server.Client(), server.URL); got != "" {
		t.Errorf("非200応答では空文字を返すべき: %q", got)
	}
}

func TestResolveOGImage_RequestError(t *testing.T) {
	if got := resolveOGImage(context.Background(), http.DefaultClient, "http://127.0.0.1:1/unreachable"); got != "" {
		t.Errorf("接続失敗では空文字を返すべき: %q", got)
	}
}
