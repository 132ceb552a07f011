package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/cinelog/internal/model"
)

// Operation はストアの操作カテゴリを表す。
// 操作ごとに独立したローディングフラグとエラーフィールドを持つ。
type Operation string

const (
	OpSearch         Operation = "search"
	OpFetchWatchlist Operation = "fetch_watchlist"
	OpFetchWatched   Operation = "fetch_watched"
	OpAdd            Operation = "add"
	OpRemove         Operation = "remove"
	OpMarkWatched    Operation = "mark_watched"
	OpUpdateWatched  Operation = "update_watched"
	OpDeleteWatched  Operation = "delete_watched"
)

// API はストアが必要とするサーバーAPIのインターフェース。
// *Clientが実装する。
type API interface {
	Search(ctx context.Context, query string) (*model.SearchPage, error)
	FetchWatchlist(ctx context.Context) ([]WatchlistItem, error)
	AddWatchlistItem(ctx context.Context, input WatchlistItemInput) (*WatchlistItem, error)
	RemoveWatchlistItem(ctx context.Context, id int64) error
	FetchWatched(ctx context.Context) ([]WatchedItem, error)
	CreateWatchedItem(ctx context.Context, input WatchedItemInput) (*WatchedItem, error)
	UpdateWatchedItem(ctx context.Context, id int64, patch WatchedItemPatch) (*WatchedItem, error)
	DeleteWatchedItem(ctx context.Context, id int64) error
}

var _ API = (*Client)(nil)

// Store はクライアント側のアプリケーション状態を保持するインメモリストア。
//
// 変更系操作（ウォッチリスト追加・削除、視聴記録への昇格）は楽観的更新で
// 動作する: ネットワーク呼び出しの前に同期的にローカル状態を変更し、
// 失敗時には補償操作で変更前の状態に正確に戻す。
// 楽観的エントリには負の一時IDを割り当て、サーバー採番の正のIDと
// 衝突しないことを保証する。
//
// 全ての状態変更はミューテックスで直列化される。ネットワーク呼び出し中は
// ロックを保持しない。
type Store struct {
	api API

	mu            sync.Mutex
	searchResults []model.SearchResult
	watchlist     []WatchlistItem
	watched       []WatchedItem
	loading       map[Operation]bool
	lastError     map[Operation]string

	// nextTempID は負の一時IDアロケータ。-1から単調減少する。
	nextTempID int64
}

// NewStore は新しいStoreを生成する。
func NewStore(api API) *Store {
	return &Store{
		api:       api,
		loading:   make(map[Operation]bool),
		lastError: make(map[Operation]string),
	}
}

// --- 状態の取得 ---

// SearchResults は検索結果のコピーを返す。
func (s *Store) SearchResults() []model.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SearchResult, len(s.searchResults))
	copy(out, s.searchResults)
	return out
}

// Watchlist はウォッチリストのコピーを返す。
func (s *Store) Watchlist() []WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WatchlistItem, len(s.watchlist))
	copy(out, s.watchlist)
	return out
}

// Watched は視聴記録のコピーを返す。
func (s *Store) Watched() []WatchedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WatchedItem, len(s.watched))
	copy(out, s.watched)
	return out
}

// Loading は指定操作が実行中かどうかを返す。
func (s *Store) Loading(op Operation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[op]
}

// LastError は指定操作の直近のエラーメッセージを返す。エラーがなければ空文字列。
func (s *Store) LastError(op Operation) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError[op]
}

// --- 取得系操作: Idle → Loading → Loaded | Failed ---

// Search はカタログ検索を実行する。
// 成功時は検索結果を全件入れ替える。失敗時はエラーを記録し、
// 既存の検索結果はそのまま残す。
func (s *Store) Search(ctx context.Context, query string) error {
	if err := s.begin(OpSearch); err != nil {
		return err
	}

	page, err := s.api.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpSearch] = false
	if err != nil {
		s.lastError[OpSearch] = errorMessage(err)
		return err
	}
	s.searchResults = page.Results
	s.lastError[OpSearch] = ""
	return nil
}

// LoadWatchlist はウォッチリストをサーバーから取得して全件入れ替える。
func (s *Store) LoadWatchlist(ctx context.Context) error {
	if err := s.begin(OpFetchWatchlist); err != nil {
		return err
	}

	items, err := s.api.FetchWatchlist(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpFetchWatchlist] = false
	if err != nil {
		s.lastError[OpFetchWatchlist] = errorMessage(err)
		return err
	}
	s.watchlist = items
	s.lastError[OpFetchWatchlist] = ""
	return nil
}

// LoadWatched は視聴記録をサーバーから取得して全件入れ替える。
func (s *Store) LoadWatched(ctx context.Context) error {
	if err := s.begin(OpFetchWatched); err != nil {
		return err
	}

	items, err := s.api.FetchWatched(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpFetchWatched] = false
	if err != nil {
		s.lastError[OpFetchWatched] = errorMessage(err)
		return err
	}
	s.watched = items
	s.lastError[OpFetchWatched] = ""
	return nil
}

// --- 変更系操作: Idle → Optimistic → Confirmed | RolledBack ---

// AddToWatchlist は検索結果の作品をウォッチリストに楽観的に追加する。
//
// ネットワーク呼び出しの前に一時IDつきのエントリをローカルリストに追加する。
// 成功時は一時エントリをサーバーレコードで置き換える（マージではなく置換）。
// 失敗時（重複409を含む）は一時エントリを除去し、エラーを記録する。
func (s *Store) AddToWatchlist(ctx context.Context, result model.SearchResult) error {
	s.mu.Lock()
	if s.loading[OpAdd] {
		s.mu.Unlock()
		return fmt.Errorf("追加処理が既に実行中です")
	}
	s.loading[OpAdd] = true
	s.lastError[OpAdd] = ""

	// 楽観的追加: 負の一時IDを割り当ててローカルリストに追加
	tempID := s.allocTempID()
	temp := WatchlistItem{
		ID:         tempID,
		CatalogID:  result.CatalogID,
		Title:      result.Title,
		PosterPath: result.PosterPath,
		MediaType:  string(result.MediaType),
		CreatedAt:  time.Now(),
	}
	s.watchlist = append(s.watchlist, temp)
	s.mu.Unlock()

	confirmed, err := s.api.AddWatchlistItem(ctx, WatchlistItemInput{
		CatalogID:  result.CatalogID,
		Title:      result.Title,
		PosterPath: result.PosterPath,
		MediaType:  string(result.MediaType),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpAdd] = false

	idx := s.watchlistIndexByID(tempID)
	if err != nil {
		// ロールバック: 一時エントリを除去
		if idx >= 0 {
			s.watchlist = append(s.watchlist[:idx], s.watchlist[idx+1:]...)
		}
		s.lastError[OpAdd] = errorMessage(err)
		return err
	}

	// 確定: 一時エントリをサーバーレコードで置き換える
	if idx >= 0 {
		s.watchlist[idx] = *confirmed
	} else {
		s.watchlist = append(s.watchlist, *confirmed)
	}
	return nil
}

// RemoveFromWatchlist は指定IDのエントリをウォッチリストから楽観的に削除する。
//
// ネットワーク呼び出しの前に削除対象の完全なコピーと位置を保存してから除去する。
// 失敗時は保存したコピーを元の位置に再挿入する。ロールバック後の状態は
// 楽観的変更の前と完全に一致する。
func (s *Store) RemoveFromWatchlist(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.loading[OpRemove] {
		s.mu.Unlock()
		return fmt.Errorf("削除処理が既に実行中です")
	}

	idx := s.watchlistIndexByID(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("ウォッチリストにID %d のエントリがありません", id)
	}

	s.loading[OpRemove] = true
	s.lastError[OpRemove] = ""

	// 楽観的削除: 完全な事前イメージと位置を保存してから除去
	preImage := s.watchlist[idx]
	s.watchlist = append(s.watchlist[:idx], s.watchlist[idx+1:]...)
	s.mu.Unlock()

	err := s.api.RemoveWatchlistItem(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpRemove] = false

	if err != nil {
		// ロールバック: 事前イメージを元の位置に再挿入
		s.insertWatchlistAt(idx, preImage)
		s.lastError[OpRemove] = errorMessage(err)
		return err
	}
	return nil
}

// MarkWatched はウォッチリストのエントリを視聴記録に昇格させる。
//
// 楽観的更新はウォッチリストからの除去と視聴記録への一時IDつき追加を
// 同時に行う。サーバー確定は視聴記録の作成とウォッチリスト行の削除。
// いずれかが失敗した場合は両方のコレクションをロールバックする。
func (s *Store) MarkWatched(ctx context.Context, watchlistID int64, rating *int, notes *string) error {
	s.mu.Lock()
	if s.loading[OpMarkWatched] {
		s.mu.Unlock()
		return fmt.Errorf("視聴記録への昇格処理が既に実行中です")
	}

	idx := s.watchlistIndexByID(watchlistID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("ウォッチリストにID %d のエントリがありません", watchlistID)
	}

	s.loading[OpMarkWatched] = true
	s.lastError[OpMarkWatched] = ""

	// 楽観的更新: ウォッチリストから除去 + 視聴記録に一時エントリを追加
	preImage := s.watchlist[idx]
	s.watchlist = append(s.watchlist[:idx], s.watchlist[idx+1:]...)

	tempID := s.allocTempID()
	tempWatched := WatchedItem{
		ID:         tempID,
		CatalogID:  preImage.CatalogID,
		Title:      preImage.Title,
		PosterPath: preImage.PosterPath,
		MediaType:  preImage.MediaType,
		Rating:     rating,
		Notes:      notes,
		WatchedAt:  time.Now(),
	}
	s.watched = append(s.watched, tempWatched)
	s.mu.Unlock()

	rollback := func(failure error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading[OpMarkWatched] = false
		// 両コレクションをロールバック
		s.insertWatchlistAt(idx, preImage)
		if widx := s.watchedIndexByID(tempID); widx >= 0 {
			s.watched = append(s.watched[:widx], s.watched[widx+1:]...)
		}
		s.lastError[OpMarkWatched] = errorMessage(failure)
		return failure
	}

	// サーバー確定 1/2: 視聴記録を作成
	confirmed, err := s.api.CreateWatchedItem(ctx, WatchedItemInput{
		CatalogID:  preImage.CatalogID,
		Title:      preImage.Title,
		PosterPath: preImage.PosterPath,
		MediaType:  preImage.MediaType,
		Rating:     rating,
		Notes:      notes,
	})
	if err != nil {
		return rollback(err)
	}

	// サーバー確定 2/2: ウォッチリスト行を削除
	if err := s.api.RemoveWatchlistItem(ctx, watchlistID); err != nil {
		// 作成済みの視聴記録を補償削除してからロールバックする
		_ = s.api.DeleteWatchedItem(ctx, confirmed.ID)
		return rollback(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpMarkWatched] = false
	if widx := s.watchedIndexByID(tempID); widx >= 0 {
		s.watched[widx] = *confirmed
	}
	return nil
}

// UpdateWatched は視聴記録を更新する。楽観的更新は行わず、
// サーバー確定後にローカルの該当レコードを置き換える。
func (s *Store) UpdateWatched(ctx context.Context, id int64, patch WatchedItemPatch) error {
	if err := s.begin(OpUpdateWatched); err != nil {
		return err
	}

	updated, err := s.api.UpdateWatchedItem(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpUpdateWatched] = false
	if err != nil {
		s.lastError[OpUpdateWatched] = errorMessage(err)
		return err
	}
	if idx := s.watchedIndexByID(id); idx >= 0 {
		s.watched[idx] = *updated
	}
	s.lastError[OpUpdateWatched] = ""
	return nil
}

// DeleteWatched は視聴記録を削除する。楽観的更新は行わず、
// サーバー確定後にローカルの該当レコードを除去する。
func (s *Store) DeleteWatched(ctx context.Context, id int64) error {
	if err := s.begin(OpDeleteWatched); err != nil {
		return err
	}

	err := s.api.DeleteWatchedItem(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[OpDeleteWatched] = false
	if err != nil {
		s.lastError[OpDeleteWatched] = errorMessage(err)
		return err
	}
	if idx := s.watchedIndexByID(id); idx >= 0 {
		s.watched = append(s.watched[:idx], s.watched[idx+1:]...)
	}
	s.lastError[OpDeleteWatched] = ""
	return nil
}

// --- 内部ヘルパー ---

// begin は操作の実行中フラグを立てる。既に実行中の場合はエラーを返す。
func (s *Store) begin(op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading[op] {
		return fmt.Errorf("%s処理が既に実行中です", op)
	}
	s.loading[op] = true
	return nil
}

// allocTempID は負の一時IDを払い出す。呼び出し側がmuを保持していること。
func (s *Store) allocTempID() int64 {
	s.nextTempID--
	return s.nextTempID
}

// watchlistIndexByID は指定IDのエントリの位置を返す。見つからない場合は-1。
// 呼び出し側がmuを保持していること。
func (s *Store) watchlistIndexByID(id int64) int {
	for i, item := range s.watchlist {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// watchedIndexByID は指定IDの視聴記録の位置を返す。見つからない場合は-1。
// 呼び出し側がmuを保持していること。
func (s *Store) watchedIndexByID(id int64) int {
	for i, item := range s.watched {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// insertWatchlistAt は指定位置にエントリを挿入する。位置がリスト長を
// 超える場合は末尾に追加する。呼び出し側がmuを保持していること。
func (s *Store) insertWatchlistAt(idx int, item WatchlistItem) {
	if idx > len(s.watchlist) {
		idx = len(s.watchlist)
	}
	s.watchlist = append(s.watchlist, WatchlistItem{})
	copy(s.watchlist[idx+1:], s.watchlist[idx:])
	s.watchlist[idx] = item
}

// errorMessage はエラーから表示可能なメッセージを取り出す。
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		return genericErrorMessage
	}
	return msg
}
