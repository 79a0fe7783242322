package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

type resourceRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	OpenHour    int       `db:"open_hour"`
	CloseHour   int       `db:"close_hour"`
	SlotMinutes int       `db:"slot_minutes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *resourceRow) toEntity() *resource.Resource {
	return &resource.Resource{
		ID: r.ID, Name: r.Name, Description: r.Description,
		OpenHour: r.OpenHour, CloseHour: r.CloseHour, SlotMinutes: r.SlotMinutes,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// ResourceRepository はPostgreSQLを使用したリソースリポジトリ
type ResourceRepository struct{ db *sqlx.DB }

// NewResourceRepository は新しい ResourceRepository を作成する
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create は新しいリソースを作成する
func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	query := `INSERT INTO resources (name, description, open_hour, close_hour, slot_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		res.Name, res.Description, res.OpenHour, res.CloseHour, res.SlotMinutes,
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		return fmt.Errorf("リソース作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDからリソースを取得する
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	var row resourceRow
	query := `SELECT id, name, description, open_hour, close_hour, slot_minutes, created_at, updated_at FROM resources WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrResourceNotFound
		}
		return nil, fmt.Errorf("リソース取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// List はリソース一覧を取得する
func (r *ResourceRepository) List(ctx context.Context, limit, offset int) ([]*resource.Resource, error) {
	var rows []resourceRow
	query := `SELECT id, name, description, open_hour, close_hour, slot_minutes, created_at, updated_at FROM resources ORDER BY name LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("リソース一覧取得に失敗: %w", err)
	}
	result := make([]*resource.Resource, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// Update はリソースを更新する
func (r *ResourceRepository) Update(ctx context.Context, res *resource.Resource) error {
	query := `UPDATE resources SET name = $1, description = $2, open_hour = $3, close_hour = $4, slot_minutes = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		res.Name, res.Description, res.OpenHour, res.CloseHour, res.SlotMinutes,
		res.UpdatedAt, res.ID,
	)
	if err != nil {
		return fmt.Errorf("リソース更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return resource.ErrResourceNotFound
	}
	return nil
}

// Delete はリソースを削除する
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("リソース削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return resource.ErrResourceNotFound
	}
	return nil
}

var _ resource.Repository = (*ResourceRepository)(nil)
