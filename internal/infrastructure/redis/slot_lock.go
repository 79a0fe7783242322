package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// SlotLock は (リソース, 日付) 単位の分散ロック。複数インスタンス構成で
// ストアの原子的衝突検出に重ねて使う多重防御であり、リトライは行わない。
// 取得に失敗した予約はそのまま衝突として呼び出し元に返す。
type SlotLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// SlotLockManager は分散スロットロックを管理する
type SlotLockManager struct {
	client *redis.Client
}

// NewSlotLockManager は新しい SlotLockManager を作成する
func NewSlotLockManager(client *redis.Client) *SlotLockManager {
	return &SlotLockManager{client: client}
}

func slotLockKey(resourceID, date string) string {
	return fmt.Sprintf("lock:slot:%s:%s", resourceID, date)
}

// Acquire は (リソース, 日付) のロックを単発で取得する。
// SetNX によりキーが存在しない場合のみ設定される。
func (m *SlotLockManager) Acquire(ctx context.Context, resourceID, date string, ttl time.Duration) (*SlotLock, error) {
	key := slotLockKey(resourceID, date)
	value := uuid.NewString()

	ok, err := m.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &SlotLock{client: m.client, key: key, value: value, ttl: ttl}, nil
}

// Release はロックを解放する。所有者確認と削除は Lua スクリプトで
// アトミックに実行する。
func (l *SlotLock) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
