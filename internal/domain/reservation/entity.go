package reservation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status は予約の状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

// DateLayout は予約日のフォーマット（ISO 8601 日付）
const DateLayout = "2006-01-02"

// TimeSlotLayout はスロットラベルのフォーマット
const TimeSlotLayout = "15:04"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Reservation は予約エンティティを表す。
// 一つの (ResourceID, Date, Time) に対して Status が active の予約は高々一つしか
// 存在してはならない。この不変条件の唯一の守り手はリポジトリである。
type Reservation struct {
	ID               string
	ResourceID       string
	Date             string
	Time             string
	CustomerName     string
	CustomerEmail    string
	Status           Status
	ConfirmationCode string
	CanceledAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewReservation は新しい予約を作成する。確認コードはこの時点で採番される。
// ID はリポジトリが永続化時に採番する。
func NewReservation(resourceID, date, timeSlot, customerName, customerEmail string) *Reservation {
	now := time.Now()
	return &Reservation{
		ResourceID:       resourceID,
		Date:             date,
		Time:             timeSlot,
		CustomerName:     strings.TrimSpace(customerName),
		CustomerEmail:    strings.TrimSpace(customerEmail),
		Status:           StatusActive,
		ConfirmationCode: newConfirmationCode(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// newConfirmationCode は人間が読める確認コードを生成する。
// 衝突しても表示上の問題にとどまる（正準キーはあくまで ID）。
func newConfirmationCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// IsActive は予約が有効かを返す
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Cancel は予約をキャンセルする。レコードは削除せず状態だけを遷移させる
func (r *Reservation) Cancel() error {
	if r.Status == StatusCanceled {
		return ErrAlreadyCanceled
	}
	if r.Status == StatusCompleted {
		return ErrNotCancellable
	}
	now := time.Now()
	r.Status = StatusCanceled
	r.CanceledAt = &now
	r.UpdatedAt = now
	return nil
}

// Complete は予約を完了状態にする（管理プロセス専用の遷移）
func (r *Reservation) Complete() error {
	if r.Status != StatusActive {
		return ErrNotActive
	}
	r.Status = StatusCompleted
	r.UpdatedAt = time.Now()
	return nil
}

// Validate は予約入力の検証を行う。now は「過去日付」判定の基準時刻。
// いずれかの項目が不正な場合、対象フィールドを示す ValidationError を返す。
func (r *Reservation) Validate(now time.Time) error {
	if r.ResourceID == "" {
		return NewValidationError("resourceId", "リソースIDは必須です")
	}
	if r.CustomerName == "" {
		return NewValidationError("customerName", "顧客名は必須です")
	}
	if !emailPattern.MatchString(r.CustomerEmail) {
		return NewValidationError("customerEmail", "メールアドレスの形式が不正です")
	}
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return NewValidationError("date", "日付の形式が不正です（YYYY-MM-DD）")
	}
	// 「今日」はUTCの暦日で判定する
	utcNow := now.UTC()
	today := time.Date(utcNow.Year(), utcNow.Month(), utcNow.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return NewValidationError("date", "過去の日付は指定できません")
	}
	if _, err := time.Parse(TimeSlotLayout, r.Time); err != nil {
		return NewValidationError("time", "時刻の形式が不正です（HH:MM）")
	}
	return nil
}

// ValidationError はユーザー入力の検証エラー。どのフィールドが不正かを保持する
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError は新しい ValidationError を作成する
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
