package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/transaction"
)

const reservationColumns = `id, resource_id, date, time, customer_name, customer_email, status, confirmation_code, canceled_at, created_at, updated_at`

type reservationRow struct {
	ID               string     `db:"id"`
	ResourceID       string     `db:"resource_id"`
	Date             time.Time  `db:"date"`
	Time             string     `db:"time"`
	CustomerName     string     `db:"customer_name"`
	CustomerEmail    string     `db:"customer_email"`
	Status           string     `db:"status"`
	ConfirmationCode string     `db:"confirmation_code"`
	CanceledAt       *time.Time `db:"canceled_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:               r.ID,
		ResourceID:       r.ResourceID,
		Date:             r.Date.Format(reservation.DateLayout),
		Time:             r.Time,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		Status:           reservation.Status(r.Status),
		ConfirmationCode: r.ConfirmationCode,
		CanceledAt:       r.CanceledAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ReservationRepository はPostgreSQLを使用した予約リポジトリ。
// (resource_id, date, time) の排他は status = 'active' の部分一意インデックスが
// データベース側で保証する。並行する INSERT は必ず片方が 23505 を受け取る。
type ReservationRepository struct{ db *sqlx.DB }

// NewReservationRepository は新しい ReservationRepository を作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create は予約を作成する。一意インデックス違反は ErrSlotTaken に写像される
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}
	// ゲートウェイが採番したIDがあればそれを使い、なければDBが採番する
	query := `INSERT INTO reservations (id, resource_id, date, time, customer_name, customer_email, status, confirmation_code, created_at, updated_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := sqlxTx.QueryRowContext(ctx, query,
		res.ID, res.ResourceID, res.Date, res.Time,
		res.CustomerName, res.CustomerEmail,
		string(res.Status), res.ConfirmationCode,
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return reservation.ErrSlotTaken
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByResourceAndDate はリソースと日付から全予約（状態不問）を取得する
func (r *ReservationRepository) GetByResourceAndDate(ctx context.Context, resourceID, date string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE resource_id = $1 AND date = $2 ORDER BY time, created_at`
	if err := r.db.SelectContext(ctx, &rows, query, resourceID, date); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// Update は予約の状態遷移を永続化する
func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}
	query := `UPDATE reservations SET status = $1, canceled_at = $2, updated_at = $3 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(res.Status), res.CanceledAt, res.UpdatedAt, res.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// GetActiveBefore は指定日より前の日付を持つ有効な予約を取得する
func (r *ReservationRepository) GetActiveBefore(ctx context.Context, date string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = 'active' AND date < $1`
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("過去予約取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
