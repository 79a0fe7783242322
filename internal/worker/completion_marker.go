package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/logger"
)

// ReservationCompleter は過去日の有効予約を完了状態に遷移させるインターフェース
type ReservationCompleter interface {
	CompletePastReservations(ctx context.Context) (int, error)
}

// CompletionMarker は過ぎた予約を完了扱いにするワーカー
type CompletionMarker struct {
	bookingService ReservationCompleter
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewCompletionMarker は新しいワーカーを作成
func NewCompletionMarker(bs ReservationCompleter, interval time.Duration) *CompletionMarker {
	return &CompletionMarker{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はワーカーを開始
func (w *CompletionMarker) Start(ctx context.Context) {
	logger.Info("予約完了マーカー開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("予約完了マーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("予約完了マーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.mark(ctx)
		}
	}
}

// Stop はワーカーを停止
func (w *CompletionMarker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// mark は過去日の有効予約を完了状態に遷移させる
func (w *CompletionMarker) mark(ctx context.Context) {
	log := logger.Get()
	log.Debug("過去予約の完了処理開始")

	count, err := w.bookingService.CompletePastReservations(ctx)
	if err != nil {
		log.Error("過去予約の完了処理失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("過去予約を完了扱いに遷移", zap.Int("count", count))
	} else {
		log.Debug("完了対象の予約なし")
	}
}
