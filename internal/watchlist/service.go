// Package watchlist は「観たい」リスト管理のドメインロジックを提供する。
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/cinelog/internal/metrics"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// AddInput はウォッチリストへの追加リクエストを表す。
type AddInput struct {
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  model.MediaType
}

// Service はウォッチリスト管理のサービス層。
// 一覧取得、追加、削除のビジネスロジックを提供する。
type Service struct {
	repo      repository.WatchlistRepository
	collector metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.WatchlistRepository, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		collector: collector,
		logger:    logger,
	}
}

// List はユーザーのウォッチリストを追加日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.WatchlistItem, error) {
	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ウォッチリストの取得に失敗しました: %w", err)
	}
	return items, nil
}

// Add は作品をウォッチリストに追加する。
// 同一作品が登録済みの場合はDUPLICATE_WATCHLIST_ITEMエラーを返す。
func (s *Service) Add(ctx context.Context, userID string, input AddInput) (*model.WatchlistItem, error) {
	if apiErr := validateAddInput(input); apiErr != nil {
		return nil, apiErr
	}

	item := &model.WatchlistItem{
		UserID:     userID,
		CatalogID:  input.CatalogID,
		Title:      strings.TrimSpace(input.Title),
		PosterPath: input.PosterPath,
		MediaType:  input.MediaType,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, model.NewDuplicateWatchlistError()
		}
		return nil, fmt.Errorf("ウォッチリストへの追加に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordWatchlistMutation("add")
	}
	s.logger.Info("ウォッチリストに追加しました",
		slog.String("user_id", userID),
		slog.Int64("item_id", item.ID),
		slog.Int64("catalog_id", item.CatalogID),
	)

	return item, nil
}

// Remove は指定IDのエントリをウォッチリストから削除する。
// エントリが存在しない、または他ユーザーの所有である場合は
// WATCHLIST_ITEM_NOT_FOUNDエラーを返す。
func (s *Service) Remove(ctx context.Context, userID string, itemID int64) error {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("ウォッチリストエントリの取得に失敗しました: %w", err)
	}
	if item == nil {
		return model.NewWatchlistItemNotFoundError(itemID)
	}
	if item.UserID != userID {
		// 他ユーザーのエントリの存在を漏らさないため、not foundとして扱う
		return model.NewWatchlistItemNotFoundError(itemID)
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("ウォッチリストエントリの削除に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordWatchlistMutation("remove")
	}
	s.logger.Info("ウォッチリストから削除しました",
		slog.String("user_id", userID),
		slog.Int64("item_id", itemID),
	)

	return nil
}

// validateAddInput は追加リクエストの内容を検証する。
func validateAddInput(input AddInput) *model.APIError {
	if input.CatalogID <= 0 {
		return model.NewValidationError("catalog_idは正の整数である必要があります")
	}
	if strings.TrimSpace(input.Title) == "" {
		return model.NewValidationError("titleは必須です")
	}
	if !input.MediaType.IsValid() {
		return model.NewValidationError("media_typeはmovieまたはseriesである必要があります")
	}
	return nil
}
