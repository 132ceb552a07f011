package watchlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// mockWatchlistRepo はWatchlistRepositoryのモック実装。
type mockWatchlistRepo struct {
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.WatchlistItem, error)
	findByIDFn     func(ctx context.Context, id int64) (*model.WatchlistItem, error)
	createFn       func(ctx context.Context, item *model.WatchlistItem) error
	deleteFn       func(ctx context.Context, id int64) error
}

func (m *mockWatchlistRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WatchlistItem, error) {
	return m.listByUserIDFn(ctx, userID)
}

func (m *mockWatchlistRepo) FindByID(ctx context.Context, id int64) (*model.WatchlistItem, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockWatchlistRepo) Create(ctx context.Context, item *model.WatchlistItem) error {
	return m.createFn(ctx, item)
}

func (m *mockWatchlistRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func (m *mockWatchlistRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return nil
}

var _ repository.WatchlistRepository = (*mockWatchlistRepo)(nil)

// mockCollector はMetricsCollectorのモック実装。記録された操作を保持する。
type mockCollector struct {
	watchlistOps []string
}

func (m *mockCollector) RecordSearchSuccess()                   {}
func (m *mockCollector) RecordSearchFailure(reason string)      {}
func (m *mockCollector) RecordSearchLatency(d time.Duration)    {}
func (m *mockCollector) RecordHTTPStatus(status int)            {}
func (m *mockCollector) RecordWatchedMutation(operation string) {}

func (m *mockCollector) RecordWatchlistMutation(operation string) {
	m.watchlistOps = append(m.watchlistOps, operation)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestList_Success は一覧取得が正常に動作することを検証する。
func TestList_Success(t *testing.T) {
	stored := []*model.WatchlistItem{
		{ID: 2, UserID: "user-1", CatalogID: 550, Title: "Fight Club", MediaType: model.MediaTypeMovie},
		{ID: 1, UserID: "user-1", CatalogID: 1399, Title: "Game of Thrones", MediaType: model.MediaTypeSeries},
	}
	repo := &mockWatchlistRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.WatchlistItem, error) {
			if userID != "user-1" {
				t.Errorf("ListByUserID userID = %q, want %q", userID, "user-1")
			}
			return stored, nil
		},
	}
	svc := NewService(repo, &mockCollector{}, newTestLogger())

	items, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() returned %d items, want 2", len(items))
	}
	if items[0].ID != 2 || items[1].ID != 1 {
		t.Errorf("List() order = [%d, %d], want [2, 1]", items[0].ID, items[1].ID)
	}
}

// TestAdd_Success は追加が正常に動作し、メトリクスが記録されることを検証する。
func TestAdd_Success(t *testing.T) {
	repo := &mockWatchlistRepo{
		createFn: func(ctx context.Context, item *model.WatchlistItem) error {
			item.ID = 42
			item.CreatedAt = time.Now()
			return nil
		},
	}
	collector := &mockCollector{}
	svc := NewService(repo, collector, newTestLogger())

	poster := "/poster.jpg"
	item, err := svc.Add(context.Background(), "user-1", AddInput{
		CatalogID:  550,
		Title:      "Fight Club",
		PosterPath: &poster,
		MediaType:  model.MediaTypeMovie,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if item.ID != 42 {
		t.Errorf("item.ID = %d, want 42", item.ID)
	}
	if item.UserID != "user-1" {
		t.Errorf("item.UserID = %q, want %q", item.UserID, "user-1")
	}
	if len(collector.watchlistOps) != 1 || collector.watchlistOps[0] != "add" {
		t.Errorf("collector.watchlistOps = %v, want [add]", collector.watchlistOps)
	}
}

// TestAdd_Duplicate は重複追加がDUPLICATE_WATCHLIST_ITEMエラーになることを検証する。
func TestAdd_Duplicate(t *testing.T) {
	repo := &mockWatchlistRepo{
		createFn: func(ctx context.Context, item *model.WatchlistItem) error {
			return repository.ErrDuplicateEntry
		},
	}
	collector := &mockCollector{}
	svc := NewService(repo, collector, newTestLogger())

	_, err := svc.Add(context.Background(), "user-1", AddInput{
		CatalogID: 550,
		Title:     "Fight Club",
		MediaType: model.MediaTypeMovie,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Add() error = %v, want *model.APIError", err)
	}
	if apiErr.Code != "DUPLICATE_WATCHLIST_ITEM" {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, "DUPLICATE_WATCHLIST_ITEM")
	}
	if len(collector.watchlistOps) != 0 {
		t.Errorf("collector.watchlistOps = %v, want empty", collector.watchlistOps)
	}
}

// TestAdd_Validation は不正な入力がVALIDATION_ERRORになることを検証する。
func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input AddInput
	}{
		{
			name:  "catalog_idがゼロ",
			input: AddInput{CatalogID: 0, Title: "Fight Club", MediaType: model.MediaTypeMovie},
		},
		{
			name:  "catalog_idが負",
			input: AddInput{CatalogID: -5, Title: "Fight Club", MediaType: model.MediaTypeMovie},
		},
		{
			name:  "titleが空",
			input: AddInput{CatalogID: 550, Title: "   ", MediaType: model.MediaTypeMovie},
		},
		{
			name:  "media_typeが不正",
			input: AddInput{CatalogID: 550, Title: "Fight Club", MediaType: model.MediaType("anime")},
		},
	}

	repo := &mockWatchlistRepo{
		createFn: func(ctx context.Context, item *model.WatchlistItem) error {
			t.Error("Create should not be called for invalid input")
			return nil
		},
	}
	svc := NewService(repo, &mockCollector{}, newTestLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "user-1", tt.input)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Add() error = %v, want *model.APIError", err)
			}
			if apiErr.Code != "VALIDATION_ERROR" {
				t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, "VALIDATION_ERROR")
			}
		})
	}
}

// TestRemove_Success は削除が正常に動作することを検証する。
func TestRemove_Success(t *testing.T) {
	deleted := false
	repo := &mockWatchlistRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.WatchlistItem, error) {
			return &model.WatchlistItem{ID: id, UserID: "user-1", CatalogID: 550}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			if id != 42 {
				t.Errorf("Delete id = %d, want 42", id)
			}
			deleted = true
			return nil
		},
	}
	collector := &mockCollector{}
	svc := NewService(repo, collector, newTestLogger())

	if err := svc.Remove(context.Background(), "user-1", 42); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if !deleted {
		t.Error("Delete was not called")
	}
	if len(collector.watchlistOps) != 1 || collector.watchlistOps[0] != "remove" {
		t.Errorf("collector.watchlistOps = %v, want [remove]", collector.watchlistOps)
	}
}

// TestRemove_NotFound は存在しないエントリの削除がnot foundエラーになることを検証する。
func TestRemove_NotFound(t *testing.T) {
	repo := &mockWatchlistRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.WatchlistItem, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, &mockCollector{}, newTestLogger())

	err := svc.Remove(context.Background(), "user-1", 999)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Remove() error = %v, want *model.APIError", err)
	}
	if apiErr.Code != "WATCHLIST_ITEM_NOT_FOUND" {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, "WATCHLIST_ITEM_NOT_FOUND")
	}
}

// TestRemove_OtherUsersItem は他ユーザーのエントリの削除がnot foundエラーになることを検証する。
func TestRemove_OtherUsersItem(t *testing.T) {
	repo := &mockWatchlistRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.WatchlistItem, error) {
			return &model.WatchlistItem{ID: id, UserID: "other-user", CatalogID: 550}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			t.Error("Delete should not be called for another user's item")
			return nil
		},
	}
	svc := NewService(repo, &mockCollector{}, newTestLogger())

	err := svc.Remove(context.Background(), "user-1", 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Remove() error = %v, want *model.APIError", err)
	}
	if apiErr.Code != "WATCHLIST_ITEM_NOT_FOUND" {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, "WATCHLIST_ITEM_NOT_FOUND")
	}
}
