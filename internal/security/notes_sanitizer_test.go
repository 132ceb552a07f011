package security

import (
	"strings"
	"testing"
)

// TestSanitize_PlainText はプレーンテキストがそのまま通過することを検証する。
func TestSanitize_PlainText(t *testing.T) {
	sanitizer := NewNotesSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "日本語テキストがそのまま通過する",
			input: "面白かった。続編に期待。",
			want:  "面白かった。続編に期待。",
		},
		{
			name:  "英語テキストがそのまま通過する",
			input: "Great cinematography, slow second act.",
			want:  "Great cinematography, slow second act.",
		},
		{
			name:  "空文字列には空文字列を返す",
			input: "",
			want:  "",
		},
		{
			name:  "前後の空白がトリムされる",
			input: "  メモ  ",
			want:  "メモ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_RemovesTags は全てのHTMLタグが除去されることを検証する。
func TestSanitize_RemovesTags(t *testing.T) {
	sanitizer := NewNotesSanitizer()

	tests := []struct {
		name  string
		input string
		// 出力に含まれてはならない部分文字列
		wantNotContains []string
		// 出力に含まれるべき部分文字列
		wantContains []string
	}{
		{
			name:            "scriptタグが除去される",
			input:           `メモ<script>alert('xss')</script>`,
			wantNotContains: []string{"<script", "alert"},
			wantContains:    []string{"メモ"},
		},
		{
			name:            "iframeタグが除去される",
			input:           `<iframe src="https://evil.example.com"></iframe>感想`,
			wantNotContains: []string{"<iframe", "evil.example.com"},
			wantContains:    []string{"感想"},
		},
		{
			name:            "pタグも除去されテキストは残る",
			input:           "<p>段落のメモ</p>",
			wantNotContains: []string{"<p>", "</p>"},
			wantContains:    []string{"段落のメモ"},
		},
		{
			name:            "on*イベント属性付きタグが除去される",
			input:           `<img src="x" onerror="alert(1)">星5つ`,
			wantNotContains: []string{"<img", "onerror"},
			wantContains:    []string{"星5つ"},
		},
		{
			name:            "aタグは除去されリンクテキストは残る",
			input:           `<a href="javascript:alert(1)">公式サイト</a>参照`,
			wantNotContains: []string{"<a", "javascript:"},
			wantContains:    []string{"公式サイト", "参照"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, s := range tt.wantNotContains {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, s)
				}
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, s)
				}
			}
		})
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewNotesSanitizer()

	input := `<b>太字</b>のメモ<script>evil()</script>`
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)

	if first != second {
		t.Errorf("Sanitize is not idempotent: first=%q, second=%q", first, second)
	}
}
