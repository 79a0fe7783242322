package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

// ResourceService はリソース（予約対象）の管理を担う
type ResourceService struct {
	resourceRepo resource.Repository
	availability *AvailabilityService
}

// NewResourceService は新しい ResourceService を作成する
func NewResourceService(repo resource.Repository, availability *AvailabilityService) *ResourceService {
	return &ResourceService{
		resourceRepo: repo,
		availability: availability,
	}
}

// CreateResourceInput はリソース作成の入力
type CreateResourceInput struct {
	Name        string
	Description string
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// CreateResource は新しいリソースを登録する
func (s *ResourceService) CreateResource(ctx context.Context, input CreateResourceInput) (*resource.Resource, error) {
	r := resource.NewResource(input.Name, input.Description, input.OpenHour, input.CloseHour, input.SlotMinutes)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.resourceRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetResource はIDからリソースを取得する
func (s *ResourceService) GetResource(ctx context.Context, id string) (*resource.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

// ListResources はリソースの一覧を取得する
func (s *ResourceService) ListResources(ctx context.Context, limit, offset int) ([]*resource.Resource, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.resourceRepo.List(ctx, limit, offset)
}

// UpdateResourceInput はリソース更新の入力
type UpdateResourceInput struct {
	Name        string
	Description string
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

// UpdateResource はリソースの営業時間や名称を更新する。
// 営業時間の変更はスロットカタログに波及するためキャッシュを破棄する
func (s *ResourceService) UpdateResource(ctx context.Context, id string, input UpdateResourceInput) (*resource.Resource, error) {
	r, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Name = input.Name
	r.Description = input.Description
	r.OpenHour = input.OpenHour
	r.CloseHour = input.CloseHour
	if input.SlotMinutes > 0 {
		r.SlotMinutes = input.SlotMinutes
	}
	r.UpdatedAt = time.Now()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.resourceRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.availability.PurgeCache()
	return r, nil
}

// DeleteResource はリソースを削除する
func (s *ResourceService) DeleteResource(ctx context.Context, id string) error {
	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.availability.PurgeCache()
	return nil
}
