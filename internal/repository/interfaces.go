// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/cinelog/internal/model"
)

// ErrDuplicateEntry はユニーク制約違反を表すセンチネルエラー。
// 同一作品の二重追加や登録済みメールアドレスの再登録で返される。
var ErrDuplicateEntry = errors.New("duplicate entry")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが登録済みの場合はErrDuplicateEntryを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、watchlist、watchedはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// WatchlistRepository は「観たい」リストの永続化インターフェース。
type WatchlistRepository interface {
	// ListByUserID はユーザーのウォッチリストを追加日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.WatchlistItem, error)

	// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.WatchlistItem, error)

	// Create はエントリを作成し、採番されたIDとタイムスタンプをitemに書き戻す。
	// 同一ユーザー・同一catalog_idの重複はErrDuplicateEntryを返す。
	Create(ctx context.Context, item *model.WatchlistItem) error

	// Delete は指定IDのエントリを削除する。
	Delete(ctx context.Context, id int64) error

	// DeleteByUserID はユーザーの全エントリを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// WatchedRepository は視聴記録の永続化インターフェース。
type WatchedRepository interface {
	// ListByUserID はユーザーの視聴記録を視聴日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.WatchedItem, error)

	// FindByID は指定IDの視聴記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.WatchedItem, error)

	// Create は視聴記録を作成し、採番されたIDとタイムスタンプをitemに書き戻す。
	Create(ctx context.Context, item *model.WatchedItem) error

	// Update は視聴記録のrating、notes、watched_atを更新する。
	Update(ctx context.Context, item *model.WatchedItem) error

	// Delete は指定IDの視聴記録を削除する。
	Delete(ctx context.Context, id int64) error

	// DeleteByUserID はユーザーの全視聴記録を削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
