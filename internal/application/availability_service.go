package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/slot"
	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/metrics"
)

// SlotAvailability はスロットごとの空き状況
type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityService はリソースと日付からスロットの空き状況ビューを計算する。
// スロットが埋まっているのは、その (リソース, 日付, 時刻) に有効な予約が
// 存在する場合のみ。キャンセル済み・完了済みは空きとして扱う。
type AvailabilityService struct {
	resourceRepo    resource.Repository
	reservationRepo reservation.Repository
	cache           *AvailabilityCache
}

// NewAvailabilityService は新しい AvailabilityService を作成する。cache は nil 可
func NewAvailabilityService(rr resource.Repository, resr reservation.Repository, cache *AvailabilityCache) *AvailabilityService {
	return &AvailabilityService{resourceRepo: rr, reservationRepo: resr, cache: cache}
}

// Slots はリソースのスロットカタログを返す
func (s *AvailabilityService) Slots(ctx context.Context, resourceID string) ([]string, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return slot.Build(res.OpenHour, res.CloseHour, res.SlotMinutes)
}

// Resolve は (リソース, 日付) の空き状況ビューを計算する。
// キャッシュはストアの全ての書き込みで無効化されるため、ここで返る
// ビューが予約済みスロットを空きとして示すことはない。
func (s *AvailabilityService) Resolve(ctx context.Context, resourceID, date string) ([]SlotAvailability, error) {
	if _, err := time.Parse(reservation.DateLayout, date); err != nil {
		return nil, reservation.NewValidationError("date", "日付の形式が不正です（YYYY-MM-DD）")
	}

	if s.cache != nil {
		if view, ok := s.cache.Get(resourceID, date); ok {
			if m := metrics.Get(); m != nil {
				m.AvailabilityCacheTotal.WithLabelValues("hit").Inc()
			}
			return view, nil
		}
		if m := metrics.Get(); m != nil {
			m.AvailabilityCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	catalog, err := slot.Build(res.OpenHour, res.CloseHour, res.SlotMinutes)
	if err != nil {
		return nil, fmt.Errorf("スロットカタログ生成に失敗: %w", err)
	}

	reservations, err := s.reservationRepo.GetByResourceAndDate(ctx, resourceID, date)
	if err != nil {
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	taken := make(map[string]bool, len(reservations))
	for _, r := range reservations {
		if r.IsActive() {
			taken[r.Time] = true
		}
	}

	view := make([]SlotAvailability, len(catalog))
	for i, label := range catalog {
		view[i] = SlotAvailability{Time: label, Available: !taken[label]}
	}

	if s.cache != nil {
		s.cache.Store(resourceID, date, view)
	}
	return view, nil
}

// Invalidate は (リソース, 日付) の空き状況キャッシュを無効化する
func (s *AvailabilityService) Invalidate(resourceID, date string) {
	if s.cache != nil {
		s.cache.Invalidate(resourceID, date)
	}
}

// PurgeCache は空き状況キャッシュを全破棄する
func (s *AvailabilityService) PurgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
