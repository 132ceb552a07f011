package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
)

// SearchServiceInterface は検索ハンドラーが必要とするサービスインターフェース。
type SearchServiceInterface interface {
	// Search はカタログ検索を実行し、1ページ分の結果を返す。
	Search(ctx context.Context, query string) (*model.SearchPage, error)
}

// SearchHandler はカタログ検索のHTTPハンドラー。
type SearchHandler struct {
	service SearchServiceInterface
}

// NewSearchHandler はSearchHandlerを生成する。
func NewSearchHandler(service SearchServiceInterface) *SearchHandler {
	return &SearchHandler{
		service: service,
	}
}

// Search はカタログを検索する。
// GET /api/search?query=xxx
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("queryパラメータは必須です"))
		return
	}

	page, err := h.service.Search(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
