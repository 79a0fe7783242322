package resource

import "errors"

// Resource ドメインのエラー定義
var (
	ErrResourceNotFound   = errors.New("リソースが見つかりません")
	ErrNameRequired       = errors.New("リソース名は必須です")
	ErrInvalidOpenHour    = errors.New("開店時刻は0〜23の範囲である必要があります")
	ErrInvalidCloseHour   = errors.New("閉店時刻は0〜23の範囲である必要があります")
	ErrCloseBeforeOpen    = errors.New("閉店時刻は開店時刻より後である必要があります")
	ErrInvalidSlotMinutes = errors.New("スロット間隔は正の値である必要があります")
)
