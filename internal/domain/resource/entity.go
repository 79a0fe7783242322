package resource

import "time"

// Resource は予約対象のリソース（店舗・施術者・サービス）を表すエンティティ。
// スロットの排他制御はこのリソースを軸に行われる。
type Resource struct {
	ID          string
	Name        string
	Description string
	OpenHour    int
	CloseHour   int
	SlotMinutes int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewResource は新しいリソースを作成する
func NewResource(name, description string, openHour, closeHour, slotMinutes int) *Resource {
	now := time.Now()
	if slotMinutes == 0 {
		slotMinutes = 60
	}
	return &Resource{
		Name:        name,
		Description: description,
		OpenHour:    openHour,
		CloseHour:   closeHour,
		SlotMinutes: slotMinutes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はリソースの検証を行う
func (r *Resource) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if r.OpenHour < 0 || r.OpenHour > 23 {
		return ErrInvalidOpenHour
	}
	if r.CloseHour < 0 || r.CloseHour > 23 {
		return ErrInvalidCloseHour
	}
	if r.CloseHour <= r.OpenHour {
		return ErrCloseBeforeOpen
	}
	if r.SlotMinutes <= 0 {
		return ErrInvalidSlotMinutes
	}
	return nil
}
