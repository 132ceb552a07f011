package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/cinelog/internal/model"
)

// PostgresWatchedRepo はPostgreSQLを使用した視聴記録リポジトリ。
type PostgresWatchedRepo struct {
	db *sql.DB
}

// NewPostgresWatchedRepo はPostgresWatchedRepoを生成する。
func NewPostgresWatchedRepo(db *sql.DB) *PostgresWatchedRepo {
	return &PostgresWatchedRepo{db: db}
}

// ListByUserID はユーザーの視聴記録を視聴日時の降順で返す。
func (r *PostgresWatchedRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WatchedItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, catalog_id, title, poster_path, media_type, rating, notes, watched_at, created_at, updated_at
		 FROM watched WHERE user_id = $1 ORDER BY watched_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []*model.WatchedItem
	for rows.Next() {
		item := &model.WatchedItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.CatalogID, &item.Title, &item.PosterPath, &item.MediaType, &item.Rating, &item.Notes, &item.WatchedAt, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("視聴記録行の読み取りに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("視聴記録の走査に失敗しました: %w", err)
	}
	return items, nil
}

// FindByID は指定IDの視聴記録を取得する。見つからない場合はnilを返す。
func (r *PostgresWatchedRepo) FindByID(ctx context.Context, id int64) (*model.WatchedItem, error) {
	item := &model.WatchedItem{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, catalog_id, title, poster_path, media_type, rating, notes, watched_at, created_at, updated_at
		 FROM watched WHERE id = $1`,
		id,
	).Scan(&item.ID, &item.UserID, &item.CatalogID, &item.Title, &item.PosterPath, &item.MediaType, &item.Rating, &item.Notes, &item.WatchedAt, &item.CreatedAt, &item.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}

	return item, nil
}

// Create は視聴記録を作成し、採番されたIDとタイムスタンプをitemに書き戻す。
// WatchedAtがゼロ値の場合はDBのデフォルト（now()）を使用する。
func (r *PostgresWatchedRepo) Create(ctx context.Context, item *model.WatchedItem) error {
	var err error
	if item.WatchedAt.IsZero() {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO watched (user_id, catalog_id, title, poster_path, media_type, rating, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, watched_at, created_at, updated_at`,
			item.UserID, item.CatalogID, item.Title, item.PosterPath, item.MediaType, item.Rating, item.Notes,
		).Scan(&item.ID, &item.WatchedAt, &item.CreatedAt, &item.UpdatedAt)
	} else {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO watched (user_id, catalog_id, title, poster_path, media_type, rating, notes, watched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, watched_at, created_at, updated_at`,
			item.UserID, item.CatalogID, item.Title, item.PosterPath, item.MediaType, item.Rating, item.Notes, item.WatchedAt,
		).Scan(&item.ID, &item.WatchedAt, &item.CreatedAt, &item.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("視聴記録の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は視聴記録のrating、notes、watched_atを更新する。
func (r *PostgresWatchedRepo) Update(ctx context.Context, item *model.WatchedItem) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE watched
		 SET rating = $2, notes = $3, watched_at = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		item.ID, item.Rating, item.Notes, item.WatchedAt,
	).Scan(&item.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("視聴記録が見つかりません: %d", item.ID)
	}
	if err != nil {
		return fmt.Errorf("視聴記録の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの視聴記録を削除する。
func (r *PostgresWatchedRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM watched WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("視聴記録が見つかりません: %d", id)
	}
	return nil
}

// DeleteByUserID はユーザーの全視聴記録を削除する。
func (r *PostgresWatchedRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM watched WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザーの全視聴記録の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ WatchedRepository = (*PostgresWatchedRepo)(nil)
