package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
)

// ReservationRepository は単一プロセス用のインメモリ予約ストア。
// Create の「空き確認＋挿入」は (ResourceID, Date) 単位のストライプロックで
// 直列化され、同一スロットへの並行予約は必ず片方が ErrSlotTaken を受け取る。
type ReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*reservation.Reservation

	// (ResourceID|Date) ごとの排他ロック
	slotLocks sync.Map
}

// NewReservationRepository は新しいインメモリ予約リポジトリを作成する
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		reservations: make(map[string]*reservation.Reservation),
	}
}

func slotLockKey(resourceID, date string) string {
	return resourceID + "|" + date
}

func (r *ReservationRepository) slotLock(resourceID, date string) *sync.Mutex {
	lock, _ := r.slotLocks.LoadOrStore(slotLockKey(resourceID, date), &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Create は空き確認と挿入を単一の原子的操作として実行する
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	lock := r.slotLock(res.ResourceID, res.Date)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reservations {
		if existing.ResourceID == res.ResourceID &&
			existing.Date == res.Date &&
			existing.Time == res.Time &&
			existing.IsActive() {
			return reservation.ErrSlotTaken
		}
	}

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	stored := *res
	r.reservations[res.ID] = &stored
	return nil
}

// GetByID はIDから予約のスナップショットを取得する
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	snapshot := *stored
	return &snapshot, nil
}

// GetByResourceAndDate はリソースと日付から全予約（状態不問）を取得する
func (r *ReservationRepository) GetByResourceAndDate(ctx context.Context, resourceID, date string) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*reservation.Reservation
	for _, stored := range r.reservations {
		if stored.ResourceID == resourceID && stored.Date == date {
			snapshot := *stored
			result = append(result, &snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Time != result[j].Time {
			return result[i].Time < result[j].Time
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Update は予約を更新する。キャンセルによるスロット解放は次の照会から直ちに見える
func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	lock := r.slotLock(res.ResourceID, res.Date)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reservations[res.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	stored := *res
	r.reservations[res.ID] = &stored
	return nil
}

// GetActiveBefore は指定日より前の日付を持つ有効な予約を取得する
func (r *ReservationRepository) GetActiveBefore(ctx context.Context, date string) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*reservation.Reservation
	for _, stored := range r.reservations {
		if stored.IsActive() && stored.Date < date {
			snapshot := *stored
			result = append(result, &snapshot)
		}
	}
	return result, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
