// Package model はドメインモデルを定義する。
package model

// SearchResult はカタログ検索で得られた表示可能なコンテンツ1件を表す。
// 検索のたびに全件入れ替わる一時データであり、永続化されない。
type SearchResult struct {
	CatalogID  int64     `json:"catalogId"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"posterPath"`
	MediaType  MediaType `json:"kind"`
}

// SearchPage はカタログ検索の1ページ分の結果を表す。
type SearchPage struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}
