// Package watched は視聴記録管理のドメインロジックを提供する。
package watched

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/cinelog/internal/metrics"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
	"github.com/hitoshi/cinelog/internal/security"
)

// 評価値の許容範囲。
const (
	minRating = 1
	maxRating = 10
)

// CreateInput は視聴記録の作成リクエストを表す。
// RatingとNotesは任意。WatchedAtがゼロ値の場合は作成時刻が視聴日時になる。
type CreateInput struct {
	CatalogID  int64
	Title      string
	PosterPath *string
	MediaType  model.MediaType
	Rating     *int
	Notes      *string
	WatchedAt  time.Time
}

// UpdateInput は視聴記録の更新リクエストを表す。
// nilのフィールドは「変更なし」を意味する。
type UpdateInput struct {
	Rating    *int
	Notes     *string
	WatchedAt *time.Time
}

// Service は視聴記録管理のサービス層。
// 一覧取得、作成、更新、削除のビジネスロジックを提供する。
type Service struct {
	repo      repository.WatchedRepository
	sanitizer security.NotesSanitizerService
	collector metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.WatchedRepository,
	sanitizer security.NotesSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		collector: collector,
		logger:    logger,
	}
}

// List はユーザーの視聴記録を視聴日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.WatchedItem, error) {
	items, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	return items, nil
}

// Create は視聴記録を作成する。
// ウォッチリストと異なり同一作品の記録が複数存在してもよい（再視聴）。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.WatchedItem, error) {
	if apiErr := validateCreateInput(input); apiErr != nil {
		return nil, apiErr
	}

	item := &model.WatchedItem{
		UserID:     userID,
		CatalogID:  input.CatalogID,
		Title:      strings.TrimSpace(input.Title),
		PosterPath: input.PosterPath,
		MediaType:  input.MediaType,
		Rating:     input.Rating,
		Notes:      s.sanitizeNotes(input.Notes),
		WatchedAt:  input.WatchedAt,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("視聴記録の作成に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordWatchedMutation("create")
	}
	s.logger.Info("視聴記録を作成しました",
		slog.String("user_id", userID),
		slog.Int64("item_id", item.ID),
		slog.Int64("catalog_id", item.CatalogID),
	)

	return item, nil
}

// Update は視聴記録のrating、notes、watched_atを更新する。
// nilのフィールドは既存値を維持する。
// 記録が存在しない、または他ユーザーの所有である場合は
// WATCHED_ITEM_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, userID string, itemID int64, input UpdateInput) (*model.WatchedItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	if item == nil {
		return nil, model.NewWatchedItemNotFoundError(itemID)
	}
	if item.UserID != userID {
		// 他ユーザーの記録の存在を漏らさないため、not foundとして扱う
		return nil, model.NewWatchedItemNotFoundError(itemID)
	}

	if input.Rating != nil {
		if *input.Rating < minRating || *input.Rating > maxRating {
			return nil, model.NewInvalidRatingError(*input.Rating)
		}
		item.Rating = input.Rating
	}
	if input.Notes != nil {
		item.Notes = s.sanitizeNotes(input.Notes)
	}
	if input.WatchedAt != nil {
		item.WatchedAt = *input.WatchedAt
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("視聴記録の更新に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordWatchedMutation("update")
	}
	s.logger.Info("視聴記録を更新しました",
		slog.String("user_id", userID),
		slog.Int64("item_id", itemID),
	)

	return item, nil
}

// Delete は指定IDの視聴記録を削除する。
// 記録が存在しない、または他ユーザーの所有である場合は
// WATCHED_ITEM_NOT_FOUNDエラーを返す。
func (s *Service) Delete(ctx context.Context, userID string, itemID int64) error {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("視聴記録の取得に失敗しました: %w", err)
	}
	if item == nil {
		return model.NewWatchedItemNotFoundError(itemID)
	}
	if item.UserID != userID {
		return model.NewWatchedItemNotFoundError(itemID)
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordWatchedMutation("delete")
	}
	s.logger.Info("視聴記録を削除しました",
		slog.String("user_id", userID),
		slog.Int64("item_id", itemID),
	)

	return nil
}

// sanitizeNotes はメモをサニタイズして返す。nilの場合はnilのまま返す。
func (s *Service) sanitizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*notes)
	return &cleaned
}

// validateCreateInput は作成リクエストの内容を検証する。
func validateCreateInput(input CreateInput) *model.APIError {
	if input.CatalogID <= 0 {
		return model.NewValidationError("catalog_idは正の整数である必要があります")
	}
	if strings.TrimSpace(input.Title) == "" {
		return model.NewValidationError("titleは必須です")
	}
	if !input.MediaType.IsValid() {
		return model.NewValidationError("media_typeはmovieまたはseriesである必要があります")
	}
	if input.Rating != nil && (*input.Rating < minRating || *input.Rating > maxRating) {
		return model.NewInvalidRatingError(*input.Rating)
	}
	return nil
}
