// Package client はサーバーAPIのクライアントと、楽観的更新を行う
// インメモリ状態ストアを提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
)

const (
	sessionCookieName = "session_id"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"

	// genericErrorMessage はサーバーからもトランスポートからも
	// メッセージを取得できなかった場合のフォールバック。
	genericErrorMessage = "リクエストに失敗しました。しばらく待ってから再度お試しください。"
)

// WatchlistItemInput はウォッチリスト追加リクエストの入力。
type WatchlistItemInput struct {
	CatalogID  int64   `json:"catalogId"`
	Title      string  `json:"title"`
	PosterPath *string `json:"posterPath"`
	MediaType  string  `json:"mediaType"`
}

// WatchedItemInput は視聴記録作成リクエストの入力。
type WatchedItemInput struct {
	CatalogID  int64      `json:"catalogId"`
	Title      string     `json:"title"`
	PosterPath *string    `json:"posterPath"`
	MediaType  string     `json:"mediaType"`
	Rating     *int       `json:"rating,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	WatchedAt  *time.Time `json:"watchedAt,omitempty"`
}

// WatchedItemPatch は視聴記録更新リクエストの入力。nilのフィールドは変更なし。
type WatchedItemPatch struct {
	Rating    *int       `json:"rating,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
}

// WatchlistItem はサーバーが返すウォッチリストエントリ。
type WatchlistItem struct {
	ID         int64     `json:"id"`
	CatalogID  int64     `json:"catalogId"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"posterPath"`
	MediaType  string    `json:"mediaType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WatchedItem はサーバーが返す視聴記録。
type WatchedItem struct {
	ID         int64     `json:"id"`
	CatalogID  int64     `json:"catalogId"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"posterPath"`
	MediaType  string    `json:"mediaType"`
	Rating     *int      `json:"rating"`
	Notes      *string   `json:"notes"`
	WatchedAt  time.Time `json:"watchedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// User はサーバーが返すユーザー情報。
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// apiErrorBody はサーバーの統一エラーフォーマット。
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIRequestError はサーバーまたはトランスポートで失敗したリクエストのエラー。
// Messageには表示可能なメッセージが入る。
type APIRequestError struct {
	StatusCode int    // トランスポートエラーの場合は0
	Code       string // サーバーのエラーコード（取得できた場合）
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *APIRequestError) Error() string {
	return e.Message
}

// Client はサーバーAPIのHTTPクライアント。
// ログイン後はセッションCookieとCSRFトークンを保持して全リクエストに付与する。
type Client struct {
	httpClient *http.Client
	baseURL    string

	sessionID string
	csrfToken string
}

// NewClient は新しいClientを生成する。
// httpClientがnilの場合はタイムアウト付きのデフォルトクライアントを使用する。
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Register は新規ユーザーを登録し、セッションを開始する。
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを開始する。
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout はセッションを破棄する。
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.sessionID = ""
	return nil
}

// Me は現在のログインユーザー情報を取得する。
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search はカタログを検索する。
func (c *Client) Search(ctx context.Context, query string) (*model.SearchPage, error) {
	var page model.SearchPage
	path := "/api/search?query=" + url.QueryEscape(query)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchWatchlist はウォッチリスト全件を取得する。
func (c *Client) FetchWatchlist(ctx context.Context) ([]WatchlistItem, error) {
	var items []WatchlistItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/watchlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWatchlistItem は作品をウォッチリストに追加する。
func (c *Client) AddWatchlistItem(ctx context.Context, input WatchlistItemInput) (*WatchlistItem, error) {
	var item WatchlistItem
	if err := c.doJSON(ctx, http.MethodPost, "/api/watchlist", input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveWatchlistItem は指定IDのエントリをウォッチリストから削除する。
func (c *Client) RemoveWatchlistItem(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/watchlist?id=%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// FetchWatched は視聴記録全件を取得する。
func (c *Client) FetchWatched(ctx context.Context) ([]WatchedItem, error) {
	var items []WatchedItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/watched", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateWatchedItem は視聴記録を作成する。
func (c *Client) CreateWatchedItem(ctx context.Context, input WatchedItemInput) (*WatchedItem, error) {
	var item WatchedItem
	if err := c.doJSON(ctx, http.MethodPost, "/api/watched", input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateWatchedItem は視聴記録を部分更新する。
func (c *Client) UpdateWatchedItem(ctx context.Context, id int64, patch WatchedItemPatch) (*WatchedItem, error) {
	var item WatchedItem
	path := fmt.Sprintf("/api/watched/%d", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteWatchedItem は指定IDの視聴記録を削除する。
func (c *Client) DeleteWatchedItem(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/watched/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// doJSON はJSONリクエストを送信し、成功レスポンスをoutにデコードする。
// 失敗時は*APIRequestErrorを返す。メッセージの優先順位:
// サーバーのAPIErrorメッセージ → トランスポートエラーのテキスト → 汎用メッセージ。
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIRequestError{Message: genericErrorMessage}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIRequestError{Message: genericErrorMessage}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCredentials(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// トランスポートエラー: エラーテキストをそのまま使用
		return &APIRequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.captureCredentials(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return extractAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIRequestError{StatusCode: resp.StatusCode, Message: genericErrorMessage}
		}
	}
	return nil
}

// attachCredentials はセッションCookieとCSRFトークンをリクエストに付与する。
func (c *Client) attachCredentials(req *http.Request) {
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionID})
	}
	if c.csrfToken != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: c.csrfToken})
		req.Header.Set(csrfHeaderName, c.csrfToken)
	}
}

// captureCredentials はレスポンスのSet-Cookieからセッションと
// CSRFトークンを取り込む。
func (c *Client) captureCredentials(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case sessionCookieName:
			if cookie.MaxAge < 0 {
				c.sessionID = ""
			} else {
				c.sessionID = cookie.Value
			}
		case csrfCookieName:
			c.csrfToken = cookie.Value
		}
	}
}

// extractAPIError はエラーレスポンスから表示可能なエラーを組み立てる。
func extractAPIError(resp *http.Response) *APIRequestError {
	apiErr := &APIRequestError{
		StatusCode: resp.StatusCode,
		Message:    genericErrorMessage,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
