package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
)

// PostgresWatchlistRepo はPostgreSQLを使用したウォッチリストリポジトリ。
type PostgresWatchlistRepo struct {
	db *sql.DB
}

// NewPostgresWatchlistRepo はPostgresWatchlistRepoを生成する。
func NewPostgresWatchlistRepo(db *sql.DB) *PostgresWatchlistRepo {
	return &PostgresWatchlistRepo{db: db}
}

// ListByUserID はユーザーのウォッチリストを追加日時の降順で返す。
func (r *PostgresWatchlistRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, catalog_id, title, poster_path, media_type, created_at
		 FROM watchlist WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ウォッチリストの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []*model.WatchlistItem
	for rows.Next() {
		item := &model.WatchlistItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.CatalogID, &item.Title, &item.PosterPath, &item.MediaType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("ウォッチリスト行の読み取りに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ウォッチリストの走査に失敗しました: %w", err)
	}
	return items, nil
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresWatchlistRepo) FindByID(ctx context.Context, id int64) (*model.WatchlistItem, error) {
	item := &model.WatchlistItem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, catalog_id, title, poster_path, media_type, created_at
		 FROM watchlist WHERE id = $1`,
		id,
	).Scan(&item.ID, &item.UserID, &item.CatalogID, &item.Title, &item.PosterPath, &item.MediaType, &item.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ウォッチリストエントリの取得に失敗しました: %w", err)
	}

	return item, nil
}

// Create はエントリを作成し、採番されたIDとタイムスタンプをitemに書き戻す。
// 同一ユーザー・同一catalog_idの重複はErrDuplicateEntryを返す。
func (r *PostgresWatchlistRepo) Create(ctx context.Context, item *model.WatchlistItem) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO watchlist (user_id, catalog_id, title, poster_path, media_type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		item.UserID, item.CatalogID, item.Title, item.PosterPath, item.MediaType,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("ウォッチリストエントリの作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのエントリを削除する。
func (r *PostgresWatchlistRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ウォッチリストエントリの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ウォッチリストエントリが見つかりません: %d", id)
	}
	return nil
}

// DeleteByUserID はユーザーの全エントリを削除する。
func (r *PostgresWatchlistRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全ウォッチリストエントリの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ WatchlistRepository = (*PostgresWatchlistRepo)(nil)
