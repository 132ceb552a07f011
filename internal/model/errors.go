// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken            = "EMAIL_TAKEN"
	ErrCodeDuplicateWatchlist    = "DUPLICATE_WATCHLIST_ITEM"
	ErrCodeWatchlistItemNotFound = "WATCHLIST_ITEM_NOT_FOUND"
	ErrCodeWatchedItemNotFound   = "WATCHED_ITEM_NOT_FOUND"
	ErrCodeCatalogUnavailable    = "CATALOG_UNAVAILABLE"
	ErrCodeInvalidRating         = "INVALID_RATING"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
)

// NewValidationError は必須フィールド欠落などの入力エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワード不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError は登録済みメールアドレスの再登録エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスを使用してください。",
	}
}

// NewDuplicateWatchlistError は既にウォッチリストに存在する作品を再度追加しようとした場合のエラーを生成する。
func NewDuplicateWatchlistError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateWatchlist,
		Message:  "この作品は既にウォッチリストに追加されています。",
		Category: "validation",
		Action:   "ウォッチリストから該当作品を確認してください。",
	}
}

// NewWatchlistItemNotFoundError はウォッチリストエントリ未検出エラーを生成する。
func NewWatchlistItemNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeWatchlistItemNotFound,
		Message:  fmt.Sprintf("指定されたウォッチリストの作品が見つかりません: %d", id),
		Category: "validation",
		Action:   "作品は既に削除されている可能性があります。一覧を再読み込みしてください。",
	}
}

// NewWatchedItemNotFoundError は視聴記録未検出エラーを生成する。
func NewWatchedItemNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeWatchedItemNotFound,
		Message:  fmt.Sprintf("指定された視聴記録が見つかりません: %d", id),
		Category: "validation",
		Action:   "記録は既に削除されている可能性があります。一覧を再読み込みしてください。",
	}
}

// NewCatalogUnavailableError はカタログ検索APIの失敗エラーを生成する。
// statusTextには上流APIのHTTPステータステキストを渡す。
func NewCatalogUnavailableError(statusText string) *APIError {
	return &APIError{
		Code:     ErrCodeCatalogUnavailable,
		Message:  fmt.Sprintf("カタログ検索に失敗しました: %s", statusText),
		Category: "catalog",
		Action:   "一時的な障害の可能性があります。しばらく待ってから再度検索してください。",
	}
}

// NewInvalidRatingError は評価値の範囲外エラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価値です: %d", rating),
		Category: "validation",
		Action:   "評価は1から10の範囲で指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
