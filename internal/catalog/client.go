// Package catalog は外部メディアカタログAPI（TMDB）との連携を提供する。
// 映画・TVシリーズの横断検索とポスター画像URLの組み立てを含む。
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/cinelog/internal/metrics"
	"github.com/hitoshi/cinelog/internal/model"
)

const (
	// defaultBaseURL はTMDB APIのベースURL。
	defaultBaseURL = "https://api.themoviedb.org/3"
	// imageBaseURL はポスター画像のベースURL（幅500px）。
	imageBaseURL = "https://image.tmdb.org/t/p/w500"
	// placeholderImage はポスター画像がない場合の代替パス。
	placeholderImage = "/placeholder-image.png"
)

// Client はTMDB検索APIのクライアント。
// /search/multiエンドポイントで映画とTVシリーズを横断検索する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector
	apiKey     string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// multiSearchResponse はTMDB /search/multiのレスポンス。
type multiSearchResponse struct {
	Page         int                 `json:"page"`
	Results      []multiSearchResult `json:"results"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
}

// multiSearchResult はTMDB /search/multiの結果1件。
// media_typeに応じてtitle（映画）またはname（TVシリーズ）が設定される。
type multiSearchResult struct {
	ID         int64   `json:"id"`
	MediaType  string  `json:"media_type"`
	Title      string  `json:"title"`
	Name       string  `json:"name"`
	PosterPath *string `json:"poster_path"`
}

// Search はTMDBで映画とTVシリーズを横断検索する。
// 空白のみのクエリの場合はAPIを呼び出さずに空の結果を返す。
// 結果はmedia_typeがmovie/tvのもののみを元の順序を保って返し、
// tvはseriesに正規化される。1ページ目のみを取得し、リトライは行わない。
func (c *Client) Search(ctx context.Context, query string) (*model.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		return &model.SearchPage{
			Page:    1,
			Results: []model.SearchResult{},
		}, nil
	}

	reqURL, err := url.Parse(c.baseURL + "/search/multi")
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("query", query)
	q.Set("api_key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("カタログAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		c.collector.RecordSearchFailure("transport_error")
		return nil, model.NewCatalogUnavailableError(err.Error())
	}
	defer resp.Body.Close()
	c.collector.RecordSearchLatency(time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("カタログAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		c.collector.RecordSearchFailure("upstream_error")
		return nil, model.NewCatalogUnavailableError(resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.collector.RecordSearchFailure("read_error")
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result multiSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("カタログAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		c.collector.RecordSearchFailure("parse_error")
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	// movie/tv以外（person等）を除外し、元の順序を保って変換する
	results := make([]model.SearchResult, 0, len(result.Results))
	for _, r := range result.Results {
		converted, ok := convertResult(r)
		if !ok {
			continue
		}
		results = append(results, converted)
	}

	c.collector.RecordSearchSuccess()

	return &model.SearchPage{
		Page:         result.Page,
		Results:      results,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
	}, nil
}

// convertResult はTMDBの結果1件をドメインモデルに変換する。
// media_typeがmovie/tv以外の場合はfalseを返す。
func convertResult(r multiSearchResult) (model.SearchResult, bool) {
	switch r.MediaType {
	case "movie":
		return model.SearchResult{
			CatalogID:  r.ID,
			Title:      r.Title,
			PosterPath: r.PosterPath,
			MediaType:  model.MediaTypeMovie,
		}, true
	case "tv":
		// TVシリーズはタイトルがnameフィールドに入る
		return model.SearchResult{
			CatalogID:  r.ID,
			Title:      r.Name,
			PosterPath: r.PosterPath,
			MediaType:  model.MediaTypeSeries,
		}, true
	default:
		return model.SearchResult{}, false
	}
}

// ImageURL はポスターパスから表示用の画像URLを組み立てる。
// パスがnilまたは空の場合は代替画像のパスを返す。
func ImageURL(posterPath *string) string {
	if posterPath == nil || *posterPath == "" {
		return placeholderImage
	}
	return imageBaseURL + *posterPath
}
