package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
)

// 理髪店の一日を通した予約フロー。予約の確定、競合、キャンセル、
// 再予約までの一連の流れを検証する
func TestBookingFlow_理髪店シナリオ(t *testing.T) {
	f := setupBookingService(t)
	ctx := context.Background()
	const date = "2025-06-02"

	// 開店直後は全スロットが空いている
	view, err := f.availability.Resolve(ctx, f.resource.ID, date)
	require.NoError(t, err)
	require.Len(t, view, 3)
	for _, s := range view {
		assert.True(t, s.Available)
	}

	// Laura が 09:00 を予約する
	laura, err := f.service.CreateReservation(ctx, CreateReservationInput{
		ResourceID: f.resource.ID, Date: date, Time: "09:00",
		CustomerName: "Laura", CustomerEmail: "laura@example.com",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^BK-[0-9A-F]{8}$`, laura.ConfirmationCode)

	// Mateo が同じ 09:00 を取ろうとして競合する
	_, err = f.service.CreateReservation(ctx, CreateReservationInput{
		ResourceID: f.resource.ID, Date: date, Time: "09:00",
		CustomerName: "Mateo", CustomerEmail: "mateo@example.com",
	})
	require.ErrorIs(t, err, reservation.ErrSlotTaken)

	// 空き状況には 09:00 だけが埋まりとして反映される
	view, err = f.availability.Resolve(ctx, f.resource.ID, date)
	require.NoError(t, err)
	assert.False(t, view[0].Available)
	assert.True(t, view[1].Available)
	assert.True(t, view[2].Available)

	// Laura が都合でキャンセルする
	_, err = f.service.CancelReservation(ctx, laura.ID)
	require.NoError(t, err)

	// スロットは即座に解放され、Mateo が同じ枠を確保できる
	mateo, err := f.service.CreateReservation(ctx, CreateReservationInput{
		ResourceID: f.resource.ID, Date: date, Time: "09:00",
		CustomerName: "Mateo", CustomerEmail: "mateo@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, laura.ID, mateo.ID)
	assert.NotEqual(t, laura.ConfirmationCode, mateo.ConfirmationCode)

	// 一日の予約一覧にはキャンセル済みと有効の両方が残る
	list, err := f.service.GetReservationsByResourceAndDate(ctx, f.resource.ID, date)
	require.NoError(t, err)
	require.Len(t, list, 2)

	active := 0
	for _, r := range list {
		if r.IsActive() {
			active++
			assert.Equal(t, "Mateo", r.CustomerName)
		}
	}
	assert.Equal(t, 1, active)
}
