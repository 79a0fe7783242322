package application

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// AvailabilityCache は (リソース, 日付) ごとの空き状況ビューのLRUキャッシュ。
// ストアへの全ての書き込みで明示的に無効化される。無効化漏れはUI上の
// 二重予約の温床になるため、書き込み側は必ず Invalidate を呼ぶこと。
type AvailabilityCache struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, []SlotAvailability]
}

// NewAvailabilityCache は新しい AvailabilityCache を作成する
func NewAvailabilityCache(size int) (*AvailabilityCache, error) {
	cache, err := lru.New[string, []SlotAvailability](size)
	if err != nil {
		return nil, err
	}
	return &AvailabilityCache{cache: cache}, nil
}

func availabilityCacheKey(resourceID, date string) string {
	return resourceID + "|" + date
}

// Get はキャッシュから空き状況ビューのコピーを取得する
func (c *AvailabilityCache) Get(resourceID, date string) ([]SlotAvailability, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache.Get(availabilityCacheKey(resourceID, date))
	if !ok {
		return nil, false
	}
	snapshot := make([]SlotAvailability, len(entry))
	copy(snapshot, entry)
	return snapshot, true
}

// Store は空き状況ビューをキャッシュに保存する
func (c *AvailabilityCache) Store(resourceID, date string, slots []SlotAvailability) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := make([]SlotAvailability, len(slots))
	copy(entry, slots)
	c.cache.Add(availabilityCacheKey(resourceID, date), entry)
}

// Invalidate は (リソース, 日付) のキャッシュエントリを破棄する
func (c *AvailabilityCache) Invalidate(resourceID, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(availabilityCacheKey(resourceID, date))
}

// Purge は全エントリを破棄する。リソースの営業時間変更時に使う
func (c *AvailabilityCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}
