package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
)

// WatchlistServiceInterface はウォッチリストハンドラーが必要とするサービスインターフェース。
type WatchlistServiceInterface interface {
	// List はユーザーのウォッチリストを追加日時の降順で返す。
	List(ctx context.Context, userID string) ([]*model.WatchlistItem, error)
	// Add は作品をウォッチリストに追加する。
	Add(ctx context.Context, userID string, input WatchlistAddInput) (*model.WatchlistItem, error)
	// Remove は指定IDのエントリをウォッチリストから削除する。
	Remove(ctx context.Context, userID string, itemID int64) error
}

// WatchlistAddInput はウォッチリスト追加の入力。
type WatchlistAddInput struct {
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  model.MediaType
}

// WatchlistHandler はウォッチリスト管理のHTTPハンドラー。
type WatchlistHandler struct {
	service WatchlistServiceInterface
}

// NewWatchlistHandler はWatchlistHandlerを生成する。
func NewWatchlistHandler(service WatchlistServiceInterface) *WatchlistHandler {
	return &WatchlistHandler{
		service: service,
	}
}

// watchlistAddRequest はウォッチリスト追加リクエストのボディ。
type watchlistAddRequest struct {
	CatalogID  int64   `json:"catalogId"`
	Title      string  `json:"title"`
	PosterPath *string `json:"posterPath"`
	MediaType  string  `json:"mediaType"`
}

// watchlistItemResponse はウォッチリストエントリのAPIレスポンス。
type watchlistItemResponse struct {
	ID         int64     `json:"id"`
	CatalogID  int64     `json:"catalogId"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"posterPath"`
	MediaType  string    `json:"mediaType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// deleteConfirmResponse は削除成功のAPIレスポンス。
type deleteConfirmResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// List はユーザーのウォッチリストを取得する。
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]watchlistItemResponse, len(items))
	for i, item := range items {
		responses[i] = toWatchlistItemResponse(item)
	}
	writeJSON(w, http.StatusOK, responses)
}

// Add は作品をウォッチリストに追加する。
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req watchlistAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	item, err := h.service.Add(r.Context(), userID, WatchlistAddInput{
		CatalogID:  req.CatalogID,
		Title:      req.Title,
		PosterPath: req.PosterPath,
		MediaType:  model.MediaType(req.MediaType),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWatchlistItemResponse(item))
}

// Remove は指定IDのエントリをウォッチリストから削除する。
// DELETE /api/watchlist?id=xxx
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	idStr := r.URL.Query().Get("id")
	itemID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || itemID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("idパラメータは正の整数である必要があります"))
		return
	}

	if err := h.service.Remove(r.Context(), userID, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteConfirmResponse{Success: true, ID: itemID})
}

// toWatchlistItemResponse はmodel.WatchlistItemからAPIレスポンスに変換する。
func toWatchlistItemResponse(item *model.WatchlistItem) watchlistItemResponse {
	return watchlistItemResponse{
		ID:         item.ID,
		CatalogID:  item.CatalogID,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		MediaType:  string(item.MediaType),
		CreatedAt:  item.CreatedAt,
	}
}
