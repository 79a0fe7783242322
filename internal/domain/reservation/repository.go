package reservation

import (
	"context"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース。
// (ResourceID, Date, Time) の排他は Create が原子的に保証する。
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）。
	// 同じ (ResourceID, Date, Time) に有効な予約が既に存在する場合は
	// ErrSlotTaken を返す。この判定と挿入は単一の原子的操作として扱われる。
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByResourceAndDate はリソースと日付から全予約（状態不問）を取得する
	GetByResourceAndDate(ctx context.Context, resourceID, date string) ([]*Reservation, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetActiveBefore は指定日より前の日付を持つ有効な予約を取得する
	GetActiveBefore(ctx context.Context, date string) ([]*Reservation, error)
}
