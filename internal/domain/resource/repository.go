package resource

import "context"

// Repository はリソースリポジトリのインターフェース
type Repository interface {
	// Create は新しいリソースを作成する
	Create(ctx context.Context, resource *Resource) error

	// GetByID はIDからリソースを取得する
	GetByID(ctx context.Context, id string) (*Resource, error)

	// List はリソース一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Resource, error)

	// Update はリソースを更新する
	Update(ctx context.Context, resource *Resource) error

	// Delete はリソースを削除する
	Delete(ctx context.Context, id string) error
}
