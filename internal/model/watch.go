// Package model はドメインモデルを定義する。
package model

import "time"

// MediaType はコンテンツ種別を表す。映画（movie）またはシリーズ（series）のみ。
type MediaType string

const (
	// MediaTypeMovie は映画を表す。
	MediaTypeMovie MediaType = "movie"
	// MediaTypeSeries はTVシリーズを表す。
	MediaTypeSeries MediaType = "series"
)

// IsValid はMediaTypeが定義済みの値であるかを返す。
func (m MediaType) IsValid() bool {
	return m == MediaTypeMovie || m == MediaTypeSeries
}

// WatchlistItem はユーザーの「観たい」リストの1エントリを表す。
// IDはサーバー割り当て（正）またはクライアント側の楽観的な一時ID（負）。
type WatchlistItem struct {
	ID         int64
	UserID     string
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  MediaType
	CreatedAt  time.Time
}

// WatchedItem はユーザーの視聴記録の1エントリを表す。
// RatingとNotesは任意。WatchedAtは未指定の場合は作成時刻。
type WatchedItem struct {
	ID         int64
	UserID     string
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  MediaType
	Rating     *int
	Notes      *string
	WatchedAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
