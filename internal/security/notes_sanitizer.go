// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NotesSanitizerService は視聴記録のメモテキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーで全てのHTMLタグを除去し、
// プレーンテキストのみを通過させる。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NotesSanitizerService はメモテキストのサニタイズ機能のインターフェースを定義する。
// 視聴記録の保存前および更新前に使用される。
type NotesSanitizerService interface {
	// Sanitize はメモテキストをサニタイズしてプレーンテキストを返す。
	// 全てのHTMLタグ（script, iframe, on*イベント属性を含む）を除去し、
	// タグ内のテキストノードのみを残す。前後の空白はトリムされる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// notesSanitizer はNotesSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type notesSanitizer struct {
	policy *bluemonday.Policy
}

// NewNotesSanitizer はNotesSanitizerServiceの新しいインスタンスを生成する。
// メモはプレーンテキストとして扱うため、bluemondayのStrictPolicyを使用し
// 全てのタグと属性を除去する。
func NewNotesSanitizer() *notesSanitizer {
	return &notesSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はメモテキストをサニタイズしてプレーンテキストを返す。
func (s *notesSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
