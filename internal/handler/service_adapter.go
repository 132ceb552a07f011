package handler

import (
	"context"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/user"
	"github.com/hitoshi/cinelog/internal/watched"
	"github.com/hitoshi/cinelog/internal/watchlist"
)

// WatchlistServiceAdapter は watchlist.Service を WatchlistServiceInterface に適合させるアダプタ。
type WatchlistServiceAdapter struct {
	svc *watchlist.Service
}

// NewWatchlistServiceAdapter はWatchlistServiceAdapterを生成する。
func NewWatchlistServiceAdapter(svc *watchlist.Service) *WatchlistServiceAdapter {
	return &WatchlistServiceAdapter{svc: svc}
}

// List はユーザーのウォッチリストを返す。
func (a *WatchlistServiceAdapter) List(ctx context.Context, userID string) ([]*model.WatchlistItem, error) {
	return a.svc.List(ctx, userID)
}

// Add は作品をウォッチリストに追加する。
func (a *WatchlistServiceAdapter) Add(ctx context.Context, userID string, input WatchlistAddInput) (*model.WatchlistItem, error) {
	return a.svc.Add(ctx, userID, watchlist.AddInput{
		CatalogID:  input.CatalogID,
		Title:      input.Title,
		PosterPath: input.PosterPath,
		MediaType:  input.MediaType,
	})
}

// Remove は指定IDのエントリをウォッチリストから削除する。
func (a *WatchlistServiceAdapter) Remove(ctx context.Context, userID string, itemID int64) error {
	return a.svc.Remove(ctx, userID, itemID)
}

// WatchedServiceAdapter は watched.Service を WatchedServiceInterface に適合させるアダプタ。
type WatchedServiceAdapter struct {
	svc *watched.Service
}

// NewWatchedServiceAdapter はWatchedServiceAdapterを生成する。
func NewWatchedServiceAdapter(svc *watched.Service) *WatchedServiceAdapter {
	return &WatchedServiceAdapter{svc: svc}
}

// List はユーザーの視聴記録を返す。
func (a *WatchedServiceAdapter) List(ctx context.Context, userID string) ([]*model.WatchedItem, error) {
	return a.svc.List(ctx, userID)
}

// Create は視聴記録を作成する。
func (a *WatchedServiceAdapter) Create(ctx context.Context, userID string, input WatchedCreateInput) (*model.WatchedItem, error) {
	return a.svc.Create(ctx, userID, watched.CreateInput{
		CatalogID:  input.CatalogID,
		Title:      input.Title,
		PosterPath: input.PosterPath,
		MediaType:  input.MediaType,
		Rating:     input.Rating,
		Notes:      input.Notes,
		WatchedAt:  input.WatchedAt,
	})
}

// Update は視聴記録を部分更新する。
func (a *WatchedServiceAdapter) Update(ctx context.Context, userID string, itemID int64, input WatchedUpdateInput) (*model.WatchedItem, error) {
	return a.svc.Update(ctx, userID, itemID, watched.UpdateInput{
		Rating:    input.Rating,
		Notes:     input.Notes,
		WatchedAt: input.WatchedAt,
	})
}

// Delete は指定IDの視聴記録を削除する。
func (a *WatchedServiceAdapter) Delete(ctx context.Context, userID string, itemID int64) error {
	return a.svc.Delete(ctx, userID, itemID)
}

// UserServiceAdapter は user.Service を UserServiceInterface に適合させるアダプタ。
type UserServiceAdapter struct {
	svc *user.Service
}

// NewUserServiceAdapter はUserServiceAdapterを生成する。
func NewUserServiceAdapter(svc *user.Service) *UserServiceAdapter {
	return &UserServiceAdapter{svc: svc}
}

// Withdraw はユーザーの退会処理を実行する。
func (a *UserServiceAdapter) Withdraw(ctx context.Context, userID string) error {
	return a.svc.Withdraw(ctx, userID)
}

// --- compile-time interface checks ---

var _ WatchlistServiceInterface = (*WatchlistServiceAdapter)(nil)
var _ WatchedServiceInterface = (*WatchedServiceAdapter)(nil)
var _ UserServiceInterface = (*UserServiceAdapter)(nil)
