package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/slot"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-appointment-reservation/internal/gateway"
	redisinfra "github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/metrics"
)

const slotLockTTL = 10 * time.Second

// EventPublisher は予約イベントの発行先
type EventPublisher interface {
	PublishCreated(ctx context.Context, res *reservation.Reservation) error
	PublishCanceled(ctx context.Context, res *reservation.Reservation) error
}

// BookingService は予約ワークフローとキャンセルワークフローを司る。
// 検証はストアに触れる前に完結させ、スロット排他の最終判定は常に
// ストアの原子的な衝突検出に委ねる（ローカルの空き確認が通っていても
// ストアの衝突シグナルが優先される）。
type BookingService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	resourceRepo    resource.Repository
	availability    *AvailabilityService

	// 以下はすべて任意（nil 可）
	slotLocks *redisinfra.SlotLockManager
	mirror    *redisinfra.ReceiptMirror
	publisher EventPublisher
	gw        *gateway.Client

	now func() time.Time
}

// NewBookingService は新しい BookingService を作成する。
// slotLocks / mirror / publisher / gw は構成に応じて nil を許す。
func NewBookingService(
	txm transaction.Manager,
	rr reservation.Repository,
	resr resource.Repository,
	availability *AvailabilityService,
	slotLocks *redisinfra.SlotLockManager,
	mirror *redisinfra.ReceiptMirror,
	publisher EventPublisher,
	gw *gateway.Client,
) *BookingService {
	return &BookingService{
		txManager:       txm,
		reservationRepo: rr,
		resourceRepo:    resr,
		availability:    availability,
		slotLocks:       slotLocks,
		mirror:          mirror,
		publisher:       publisher,
		gw:              gw,
		now:             time.Now,
	}
}

// CreateReservationInput は予約作成の入力
type CreateReservationInput struct {
	ResourceID    string
	Date          string
	Time          string
	CustomerName  string
	CustomerEmail string
}

// CreateReservation は予約リクエストを検証して確定する。
// 成功時はちょうど一件の予約が作成され、失敗時は一切の書き込みを行わない。
func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	res := reservation.NewReservation(input.ResourceID, input.Date, input.Time, input.CustomerName, input.CustomerEmail)
	if err := res.Validate(s.now()); err != nil {
		s.countBooking(metrics.BookingStatusValidation)
		return nil, err
	}

	rsrc, err := s.resourceRepo.GetByID(ctx, input.ResourceID)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, err
	}
	catalog, err := slot.Build(rsrc.OpenHour, rsrc.CloseHour, rsrc.SlotMinutes)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("スロットカタログ生成に失敗: %w", err)
	}
	if !slot.Contains(catalog, input.Time) {
		s.countBooking(metrics.BookingStatusValidation)
		return nil, reservation.NewValidationError("time", "指定の時刻は予約可能なスロットではありません")
	}

	// 分散ロック（多重防御）。取得失敗はスロット競合として扱い、リトライしない
	if s.slotLocks != nil {
		lock, err := s.slotLocks.Acquire(ctx, input.ResourceID, input.Date, slotLockTTL)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countConflict(input.ResourceID)
				return nil, reservation.ErrSlotTaken
			}
			s.countBooking(metrics.BookingStatusError)
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// 事前の空き確認。最終判定はストアの原子的衝突検出が行う
	existing, err := s.reservationRepo.GetByResourceAndDate(ctx, input.ResourceID, input.Date)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("空き確認に失敗: %w", err)
	}
	for _, e := range existing {
		if e.Time == input.Time && e.IsActive() {
			s.countConflict(input.ResourceID)
			return nil, reservation.ErrSlotTaken
		}
	}

	if s.gw != nil {
		if err := s.createViaGateway(ctx, rsrc, res); err != nil {
			return nil, err
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
		if errors.Is(err, reservation.ErrSlotTaken) {
			s.countConflict(input.ResourceID)
		} else {
			s.countBooking(metrics.BookingStatusError)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.countBooking(metrics.BookingStatusError)
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.availability.Invalidate(res.ResourceID, res.Date)
	s.writeMirror(ctx, res)
	if s.publisher != nil {
		if err := s.publisher.PublishCreated(ctx, res); err != nil {
			logger.Warn("予約イベント発行エラー", zap.String("reservation_id", res.ID), zap.Error(err))
		}
	}
	s.countBooking(metrics.BookingStatusSuccess)
	return res, nil
}

// createViaGateway は外部ゲートウェイに予約を確定させる。
// 成功時、上流が採番したIDをローカルレコードに引き継ぐ。
func (s *BookingService) createViaGateway(ctx context.Context, rsrc *resource.Resource, res *reservation.Reservation) error {
	endTime, err := slotEndTime(res.Time, rsrc.SlotMinutes)
	if err != nil {
		return err
	}
	remote, err := s.gw.CreateReservation(ctx, gateway.CreateReservationRequest{
		CustomerName:  res.CustomerName,
		CustomerEmail: res.CustomerEmail,
		ResourceID:    res.ResourceID,
		Date:          res.Date,
		StartTime:     res.Time,
		EndTime:       endTime,
	})
	if err != nil {
		var upstream *gateway.UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusConflict {
			s.countConflict(res.ResourceID)
			return reservation.ErrSlotTaken
		}
		s.countBooking(metrics.BookingStatusError)
		return err
	}
	res.ID = remote.ID
	return nil
}

// slotEndTime はスロット開始時刻と間隔から終了時刻ラベルを計算する
func slotEndTime(start string, slotMinutes int) (string, error) {
	t, err := time.Parse(reservation.TimeSlotLayout, start)
	if err != nil {
		return "", reservation.NewValidationError("time", "時刻の形式が不正です（HH:MM）")
	}
	return t.Add(time.Duration(slotMinutes) * time.Minute).Format(reservation.TimeSlotLayout), nil
}

// GetReservation はIDから予約を取得する
func (s *BookingService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

// GetReservationsByResourceAndDate はリソースと日付の全予約を取得する
func (s *BookingService) GetReservationsByResourceAndDate(ctx context.Context, resourceID, date string) ([]*reservation.Reservation, error) {
	if _, err := time.Parse(reservation.DateLayout, date); err != nil {
		return nil, reservation.NewValidationError("date", "日付の形式が不正です（YYYY-MM-DD）")
	}
	return s.reservationRepo.GetByResourceAndDate(ctx, resourceID, date)
}

// CancelReservation は予約をキャンセルし、スロットを即座に解放する。
// レコードは削除されず、監査のために状態遷移として残る。
func (s *BookingService) CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.Cancel(); err != nil {
		return nil, err
	}

	if s.gw != nil {
		if _, err := s.gw.CancelReservation(ctx, id); err != nil {
			var upstream *gateway.UpstreamError
			if errors.As(err, &upstream) && upstream.StatusCode == http.StatusNotFound {
				return nil, reservation.ErrReservationNotFound
			}
			return nil, err
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reservationRepo.Update(ctx, tx, res); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.availability.Invalidate(res.ResourceID, res.Date)
	s.writeMirror(ctx, res)
	if s.publisher != nil {
		if err := s.publisher.PublishCanceled(ctx, res); err != nil {
			logger.Warn("キャンセルイベント発行エラー", zap.String("reservation_id", res.ID), zap.Error(err))
		}
	}
	if m := metrics.Get(); m != nil {
		m.CancellationsTotal.Inc()
	}
	return res, nil
}

// CompletePastReservations は今日より前の日付を持つ有効な予約を完了状態に
// 遷移させる。ワーカーから定期的に呼ばれる管理プロセス
func (s *BookingService) CompletePastReservations(ctx context.Context) (int, error) {
	today := s.now().Format(reservation.DateLayout)
	past, err := s.reservationRepo.GetActiveBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("過去予約取得に失敗: %w", err)
	}

	completed := 0
	for _, res := range past {
		if err := res.Complete(); err != nil {
			continue
		}
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return completed, fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		if err := s.reservationRepo.Update(ctx, tx, res); err != nil {
			tx.Rollback()
			return completed, err
		}
		if err := tx.Commit(); err != nil {
			return completed, fmt.Errorf("コミットに失敗: %w", err)
		}
		s.availability.Invalidate(res.ResourceID, res.Date)
		completed++
	}
	return completed, nil
}

// LastReservation はリソースの受付ミラー（最後に作成・更新された予約）を返す。
// ミラーは表示専用であり、空き判定に使ってはならない
func (s *BookingService) LastReservation(ctx context.Context, resourceID string) (*reservation.Reservation, error) {
	if s.mirror == nil {
		return nil, redisinfra.ErrMirrorMiss
	}
	return s.mirror.Last(ctx, resourceID)
}

// writeMirror は受付ミラーを更新する。失敗しても予約処理は成功のまま
func (s *BookingService) writeMirror(ctx context.Context, res *reservation.Reservation) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Store(ctx, res); err != nil {
		logger.Warn("受付ミラー更新エラー", zap.String("reservation_id", res.ID), zap.Error(err))
	}
}

func (s *BookingService) countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) countConflict(resourceID string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(metrics.BookingStatusConflict).Inc()
		m.SlotConflictsTotal.WithLabelValues(resourceID).Inc()
	}
}
