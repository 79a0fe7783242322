package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = errors.New("予約が見つかりません")
	ErrSlotTaken           = errors.New("指定のスロットは既に予約されています")
	ErrAlreadyCanceled     = errors.New("予約は既にキャンセルされています")
	ErrNotCancellable      = errors.New("完了済みの予約はキャンセルできません")
	ErrNotActive           = errors.New("予約は有効ではありません")
)
