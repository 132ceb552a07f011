// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// WatchlistDeleter はウォッチリストの一括削除インターフェース。
type WatchlistDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// WatchedDeleter は視聴記録の一括削除インターフェース。
type WatchedDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	watchlistDeleter WatchlistDeleter
	watchedDeleter   WatchedDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	watchlistDeleter WatchlistDeleter,
	watchedDeleter WatchedDeleter,
) *Service {
	return &Service{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		watchlistDeleter: watchlistDeleter,
		watchedDeleter:   watchedDeleter,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: watched → watchlist → sessions → user。
// 外部キーのCASCADE制約もあるが、削除順序を明示して部分失敗時の状態を予測可能にする。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. 視聴記録を削除
	if s.watchedDeleter != nil {
		if err := s.watchedDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("視聴記録の削除に失敗しました: %w", err)
		}
	}

	// 2. ウォッチリストを削除
	if s.watchlistDeleter != nil {
		if err := s.watchlistDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("ウォッチリストの削除に失敗しました: %w", err)
		}
	}

	// 3. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 4. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
