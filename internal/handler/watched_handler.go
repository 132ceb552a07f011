package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
)

// WatchedServiceInterface は視聴記録ハンドラーが必要とするサービスインターフェース。
type WatchedServiceInterface interface {
	// List はユーザーの視聴記録を視聴日時の降順で返す。
	List(ctx context.Context, userID string) ([]*model.WatchedItem, error)
	// Create は視聴記録を作成する。
	Create(ctx context.Context, userID string, input WatchedCreateInput) (*model.WatchedItem, error)
	// Update は視聴記録のrating、notes、watchedAtを更新する。
	Update(ctx context.Context, userID string, itemID int64, input WatchedUpdateInput) (*model.WatchedItem, error)
	// Delete は指定IDの視聴記録を削除する。
	Delete(ctx context.Context, userID string, itemID int64) error
}

// WatchedCreateInput は視聴記録作成の入力。
type WatchedCreateInput struct {
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  model.MediaType
	Rating     *int
	Notes      *string
	WatchedAt  time.Time
}

// WatchedUpdateInput は視聴記録更新の入力。nilのフィールドは変更なし。
type WatchedUpdateInput struct {
	Rating    *int
	Notes     *string
	WatchedAt *time.Time
}

// WatchedHandler は視聴記録管理のHTTPハンドラー。
type WatchedHandler struct {
	service WatchedServiceInterface
}

// NewWatchedHandler はWatchedHandlerを生成する。
func NewWatchedHandler(service WatchedServiceInterface) *WatchedHandler {
	return &WatchedHandler{
		service: service,
	}
}

// watchedCreateRequest は視聴記録作成リクエストのボディ。
type watchedCreateRequest struct {
	CatalogID  int64      `json:"catalogId"`
	Title      string     `json:"title"`
	PosterPath *string    `json:"posterPath"`
	MediaType  string     `json:"mediaType"`
	Rating     *int       `json:"rating"`
	Notes      *string    `json:"notes"`
	WatchedAt  *time.Time `json:"watchedAt"`
}

// watchedUpdateRequest は視聴記録更新リクエストのボディ。
type watchedUpdateRequest struct {
	Rating    *int       `json:"rating"`
	Notes     *string    `json:"notes"`
	WatchedAt *time.Time `json:"watchedAt"`
}

// watchedItemResponse は視聴記録のAPIレスポンス。
type watchedItemResponse struct {
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

// List はユーザーの視聴記録を取得する。
// GET /api/watched
func (h *WatchedHandler) List(w http.ResponseWriter, r *http.Request) {
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

	responses := make([]watchedItemResponse, len(items))
	for i, item := range items {
		responses[i] = toWatchedItemResponse(item)
	}
	writeJSON(w, http.StatusOK, responses)
}

// Create は視聴記録を作成する。
// POST /api/watched
func (h *WatchedHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req watchedCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	input := WatchedCreateInput{
		CatalogID:  req.CatalogID,
		Title:      req.Title,
		PosterPath: req.PosterPath,
		MediaType:  model.MediaType(req.MediaType),
		Rating:     req.Rating,
		Notes:      req.Notes,
	}
	if req.WatchedAt != nil {
		input.WatchedAt = *req.WatchedAt
	}

	item, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWatchedItemResponse(item))
}

// Update は視聴記録を部分更新する。
// PATCH /api/watched/{id}
func (h *WatchedHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	var req watchedUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	item, err := h.service.Update(r.Context(), userID, itemID, WatchedUpdateInput{
		Rating:    req.Rating,
		Notes:     req.Notes,
		WatchedAt: req.WatchedAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toWatchedItemResponse(item))
}

// Delete は指定IDの視聴記録を削除する。
// DELETE /api/watched/{id}
func (h *WatchedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, itemID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteConfirmResponse{Success: true, ID: itemID})
}

// parseItemID はURLパラメータから記録IDを取り出す。不正な場合は400を書き込む。
func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	itemID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || itemID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("idは正の整数である必要があります"))
		return 0, false
	}
	return itemID, true
}

// toWatchedItemResponse はmodel.WatchedItemからAPIレスポンスに変換する。
func toWatchedItemResponse(item *model.WatchedItem) watchedItemResponse {
	return watchedItemResponse{
		ID:         item.ID,
		CatalogID:  item.CatalogID,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		MediaType:  string(item.MediaType),
		Rating:     item.Rating,
		Notes:      item.Notes,
		WatchedAt:  item.WatchedAt,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}
