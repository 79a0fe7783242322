package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
)

var ErrMirrorMiss = errors.New("受付ミラーにエントリがありません")

// ReceiptMirror はリソースごとの「最後に作成・更新された予約」の
// 表示用キーバリューミラー。権威はあくまで予約ストアにあり、ここに
// 書かれた値が空き状況の判断に使われることはない。
type ReceiptMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReceiptMirror は新しい ReceiptMirror を作成する
func NewReceiptMirror(client *redis.Client, ttl time.Duration) *ReceiptMirror {
	return &ReceiptMirror{client: client, ttl: ttl}
}

func (m *ReceiptMirror) key(resourceID string) string {
	return fmt.Sprintf("mirror:last:%s", resourceID)
}

// Store は最新の予約レシートをミラーに書き込む
func (m *ReceiptMirror) Store(ctx context.Context, res *reservation.Reservation) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("ミラーのシリアライズに失敗: %w", err)
	}
	if err := m.client.Set(ctx, m.key(res.ResourceID), payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("ミラー保存に失敗: %w", err)
	}
	return nil
}

// Last はリソースの最新予約レシートを取得する
func (m *ReceiptMirror) Last(ctx context.Context, resourceID string) (*reservation.Reservation, error) {
	payload, err := m.client.Get(ctx, m.key(resourceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMirrorMiss
		}
		return nil, fmt.Errorf("ミラー取得に失敗: %w", err)
	}
	var res reservation.Reservation
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("ミラーのデシリアライズに失敗: %w", err)
	}
	return &res, nil
}
