package slot

import (
	"errors"
	"fmt"
)

// Slot ドメインのエラー定義
var (
	ErrInvalidStartHour   = errors.New("開始時刻は0〜23の範囲である必要があります")
	ErrInvalidEndHour     = errors.New("終了時刻は0〜23の範囲である必要があります")
	ErrEndBeforeStart     = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrInvalidGranularity = errors.New("スロット間隔は正の値である必要があります")
)

// DefaultGranularityMinutes はスロット間隔のデフォルト値（分）
const DefaultGranularityMinutes = 60

// TimeLayout はスロットラベルのフォーマット
const TimeLayout = "15:04"

// Build はリソースの営業時間からスロットラベルの列を生成する。
// startHour:00 から endHour:00 まで（終了時刻を含む）granularityMinutes 刻みで
// "HH:MM" 形式のラベルを返す。純粋関数であり、同じ入力に対して常に同じ列を返す。
// granularityMinutes に 0 を渡した場合は DefaultGranularityMinutes が使われる。
func Build(startHour, endHour, granularityMinutes int) ([]string, error) {
	if startHour < 0 || startHour > 23 {
		return nil, ErrInvalidStartHour
	}
	if endHour < 0 || endHour > 23 {
		return nil, ErrInvalidEndHour
	}
	if endHour <= startHour {
		return nil, ErrEndBeforeStart
	}
	if granularityMinutes == 0 {
		granularityMinutes = DefaultGranularityMinutes
	}
	if granularityMinutes < 0 {
		return nil, ErrInvalidGranularity
	}

	var slots []string
	for minutes := startHour * 60; minutes <= endHour*60; minutes += granularityMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return slots, nil
}

// Contains はスロット列に指定ラベルが含まれるかを返す
func Contains(slots []string, label string) bool {
	for _, s := range slots {
		if s == label {
			return true
		}
	}
	return false
}
