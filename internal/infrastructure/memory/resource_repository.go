package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

// ResourceRepository は単一プロセス用のインメモリリソースストア
type ResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*resource.Resource
}

// NewResourceRepository は新しいインメモリリソースリポジトリを作成する
func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{resources: make(map[string]*resource.Resource)}
}

// Create は新しいリソースを作成する
func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	stored := *res
	r.resources[res.ID] = &stored
	return nil
}

// GetByID はIDからリソースを取得する
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.resources[id]
	if !ok {
		return nil, resource.ErrResourceNotFound
	}
	snapshot := *stored
	return &snapshot, nil
}

// List はリソース一覧を名前順で取得する
func (r *ResourceRepository) List(ctx context.Context, limit, offset int) ([]*resource.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*resource.Resource, 0, len(r.resources))
	for _, stored := range r.resources {
		snapshot := *stored
		all = append(all, &snapshot)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	if offset >= len(all) {
		return []*resource.Resource{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Update はリソースを更新する
func (r *ResourceRepository) Update(ctx context.Context, res *resource.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[res.ID]; !ok {
		return resource.ErrResourceNotFound
	}
	stored := *res
	r.resources[res.ID] = &stored
	return nil
}

// Delete はリソースを削除する
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[id]; !ok {
		return resource.ErrResourceNotFound
	}
	delete(r.resources, id)
	return nil
}

var _ resource.Repository = (*ResourceRepository)(nil)
