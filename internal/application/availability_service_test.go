package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

func TestAvailabilityService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("予約がなければ全スロットが空きになる", func(t *testing.T) {
		f := setupBookingService(t)

		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		require.Len(t, view, 3)
		assert.Equal(t, "09:00", view[0].Time)
		assert.Equal(t, "10:00", view[1].Time)
		assert.Equal(t, "11:00", view[2].Time)
		for _, s := range view {
			assert.True(t, s.Available)
		}
	})

	t.Run("有効な予約のあるスロットは埋まりとして返る", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.service.CreateReservation(ctx, CreateReservationInput{
			ResourceID: f.resource.ID, Date: "2025-06-02", Time: "10:00",
			CustomerName: "Laura", CustomerEmail: "laura@example.com",
		})
		require.NoError(t, err)

		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		require.Len(t, view, 3)
		assert.True(t, view[0].Available)
		assert.False(t, view[1].Available)
		assert.True(t, view[2].Available)
	})

	t.Run("キャンセル済み予約は空き扱いになる", func(t *testing.T) {
		f := setupBookingService(t)

		res, err := f.service.CreateReservation(ctx, CreateReservationInput{
			ResourceID: f.resource.ID, Date: "2025-06-02", Time: "10:00",
			CustomerName: "Laura", CustomerEmail: "laura@example.com",
		})
		require.NoError(t, err)
		_, err = f.service.CancelReservation(ctx, res.ID)
		require.NoError(t, err)

		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		for _, s := range view {
			assert.True(t, s.Available, "slot %s", s.Time)
		}
	})

	t.Run("日付ごとに独立した空き状況を返す", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.service.CreateReservation(ctx, CreateReservationInput{
			ResourceID: f.resource.ID, Date: "2025-06-02", Time: "09:00",
			CustomerName: "Laura", CustomerEmail: "laura@example.com",
		})
		require.NoError(t, err)

		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-03")
		require.NoError(t, err)
		for _, s := range view {
			assert.True(t, s.Available)
		}
	})

	t.Run("日付の形式が不正な場合はエラーになる", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.availability.Resolve(ctx, f.resource.ID, "06/02/2025")
		var vErr *reservation.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "date", vErr.Field)
	})

	t.Run("存在しないリソースはエラーになる", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.availability.Resolve(ctx, "unknown", "2025-06-02")
		assert.ErrorIs(t, err, resource.ErrResourceNotFound)
	})

	t.Run("予約作成後にキャッシュが無効化される", func(t *testing.T) {
		f := setupBookingService(t)

		// 一度解決してキャッシュに載せる
		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		assert.True(t, view[0].Available)

		_, err = f.service.CreateReservation(ctx, CreateReservationInput{
			ResourceID: f.resource.ID, Date: "2025-06-02", Time: "09:00",
			CustomerName: "Laura", CustomerEmail: "laura@example.com",
		})
		require.NoError(t, err)

		view, err = f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		assert.False(t, view[0].Available)
	})
}

func TestAvailabilityService_Slots(t *testing.T) {
	f := setupBookingService(t)

	slots, err := f.availability.Slots(context.Background(), f.resource.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
}

func TestAvailabilityCache(t *testing.T) {
	t.Run("格納した内容を取得できる", func(t *testing.T) {
		cache, err := NewAvailabilityCache(8)
		require.NoError(t, err)

		view := []SlotAvailability{{Time: "09:00", Available: true}}
		cache.Store("r1", "2025-06-02", view)

		got, ok := cache.Get("r1", "2025-06-02")
		require.True(t, ok)
		assert.Equal(t, view, got)
	})

	t.Run("取得結果を書き換えてもキャッシュは汚れない", func(t *testing.T) {
		cache, err := NewAvailabilityCache(8)
		require.NoError(t, err)

		cache.Store("r1", "2025-06-02", []SlotAvailability{{Time: "09:00", Available: true}})
		got, ok := cache.Get("r1", "2025-06-02")
		require.True(t, ok)
		got[0].Available = false

		again, ok := cache.Get("r1", "2025-06-02")
		require.True(t, ok)
		assert.True(t, again[0].Available)
	})

	t.Run("無効化したキーはミスになる", func(t *testing.T) {
		cache, err := NewAvailabilityCache(8)
		require.NoError(t, err)

		cache.Store("r1", "2025-06-02", []SlotAvailability{{Time: "09:00", Available: true}})
		cache.Invalidate("r1", "2025-06-02")

		_, ok := cache.Get("r1", "2025-06-02")
		assert.False(t, ok)
	})
}

func TestResourceService(t *testing.T) {
	ctx := context.Background()

	t.Run("リソースを作成・取得できる", func(t *testing.T) {
		f := setupBookingService(t)

		r, err := f.resources.CreateResource(ctx, CreateResourceInput{
			Name: "studio-a", OpenHour: 10, CloseHour: 18, SlotMinutes: 30,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)

		got, err := f.resources.GetResource(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "studio-a", got.Name)
	})

	t.Run("営業時間が不正なリソースは作成できない", func(t *testing.T) {
		f := setupBookingService(t)

		_, err := f.resources.CreateResource(ctx, CreateResourceInput{
			Name: "bad", OpenHour: 18, CloseHour: 9, SlotMinutes: 60,
		})
		assert.ErrorIs(t, err, resource.ErrCloseBeforeOpen)
	})

	t.Run("更新すると空きキャッシュが破棄される", func(t *testing.T) {
		f := setupBookingService(t)

		view, err := f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		require.Len(t, view, 3)

		_, err = f.resources.UpdateResource(ctx, f.resource.ID, UpdateResourceInput{
			Name: f.resource.Name, OpenHour: 9, CloseHour: 12, SlotMinutes: 60,
		})
		require.NoError(t, err)

		view, err = f.availability.Resolve(ctx, f.resource.ID, "2025-06-02")
		require.NoError(t, err)
		assert.Len(t, view, 4)
	})

	t.Run("削除したリソースは取得できない", func(t *testing.T) {
		f := setupBookingService(t)

		require.NoError(t, f.resources.DeleteResource(ctx, f.resource.ID))

		_, err := f.resources.GetResource(ctx, f.resource.ID)
		assert.ErrorIs(t, err, resource.ErrResourceNotFound)
	})
}
