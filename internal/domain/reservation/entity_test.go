package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func createTestReservation() *Reservation {
	return NewReservation("barber-1", "2025-06-10", "09:00", "Laura", "laura@mail.com")
}

func TestNewReservation(t *testing.T) {
	tests := []struct {
		name          string
		resourceID    string
		date          string
		timeSlot      string
		customerName  string
		customerEmail string
		wantErr       bool
		wantField     string
	}{
		{
			name: "正常な予約作成", resourceID: "barber-1", date: "2025-06-10", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "laura@mail.com",
		},
		{
			name: "リソースID未指定", resourceID: "", date: "2025-06-10", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "resourceId",
		},
		{
			name: "顧客名が空", resourceID: "barber-1", date: "2025-06-10", timeSlot: "09:00",
			customerName: "", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "customerName",
		},
		{
			name: "顧客名が空白のみ", resourceID: "barber-1", date: "2025-06-10", timeSlot: "09:00",
			customerName: "   ", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "customerName",
		},
		{
			name: "メールアドレスが不正", resourceID: "barber-1", date: "2025-06-10", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "not-an-email",
			wantErr: true, wantField: "customerEmail",
		},
		{
			name: "日付の形式が不正", resourceID: "barber-1", date: "10/06/2025", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "date",
		},
		{
			name: "過去の日付", resourceID: "barber-1", date: "2025-05-31", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "date",
		},
		{
			name: "当日は予約可能", resourceID: "barber-1", date: "2025-06-01", timeSlot: "09:00",
			customerName: "Laura", customerEmail: "laura@mail.com",
		},
		{
			name: "時刻の形式が不正", resourceID: "barber-1", date: "2025-06-10", timeSlot: "9am",
			customerName: "Laura", customerEmail: "laura@mail.com",
			wantErr: true, wantField: "time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservation(tt.resourceID, tt.date, tt.timeSlot, tt.customerName, tt.customerEmail)
			err := r.Validate(testNow)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusActive, r.Status)
			assert.NotEmpty(t, r.ConfirmationCode)
			assert.True(t, r.IsActive())
		})
	}
}

func TestReservation_Validate_UTCの暦日で判定(t *testing.T) {
	r := NewReservation("barber-1", "2025-06-01", "09:00", "Laura", "laura@mail.com")

	t.Run("ローカルでは翌日でもUTCで当日なら予約可能", func(t *testing.T) {
		// UTC+5 の 2025-06-02 03:00 は UTC では 2025-06-01 22:00
		zone := time.FixedZone("UTC+5", 5*60*60)
		now := time.Date(2025, 6, 2, 3, 0, 0, 0, zone)

		assert.NoError(t, r.Validate(now))
	})

	t.Run("ローカルでは当日でもUTCで翌日なら過去日付", func(t *testing.T) {
		// UTC-5 の 2025-06-01 21:00 は UTC では 2025-06-02 02:00
		zone := time.FixedZone("UTC-5", -5*60*60)
		now := time.Date(2025, 6, 1, 21, 0, 0, 0, zone)

		err := r.Validate(now)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "date", vErr.Field)
	})
}

func TestNewReservation_TrimsCustomerFields(t *testing.T) {
	r := NewReservation("barber-1", "2025-06-10", "09:00", "  Laura  ", " laura@mail.com ")
	assert.Equal(t, "Laura", r.CustomerName)
	assert.Equal(t, "laura@mail.com", r.CustomerEmail)
}

func TestReservation_ConfirmationCodeFormat(t *testing.T) {
	r := createTestReservation()
	assert.Regexp(t, `^BK-[0-9A-F]{8}$`, r.ConfirmationCode)
}

func TestReservation_Cancel(t *testing.T) {
	r := createTestReservation()
	err := r.Cancel()
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, r.Status)
	assert.NotNil(t, r.CanceledAt)
	assert.False(t, r.IsActive())
}

func TestReservation_Cancel_AlreadyCanceled(t *testing.T) {
	r := createTestReservation()
	require.NoError(t, r.Cancel())
	canceledAt := r.CanceledAt

	// 二重キャンセルは状態を変えない
	err := r.Cancel()
	assert.ErrorIs(t, err, ErrAlreadyCanceled)
	assert.Equal(t, StatusCanceled, r.Status)
	assert.Equal(t, canceledAt, r.CanceledAt)
}

func TestReservation_Cancel_Completed(t *testing.T) {
	r := createTestReservation()
	require.NoError(t, r.Complete())

	err := r.Cancel()
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, StatusCompleted, r.Status)
}

func TestReservation_Complete(t *testing.T) {
	r := createTestReservation()
	err := r.Complete()
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, r.Status)
}

func TestReservation_Complete_NotActive(t *testing.T) {
	r := createTestReservation()
	require.NoError(t, r.Cancel())

	err := r.Complete()
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("date", "過去の日付は指定できません")
	assert.Equal(t, "date: 過去の日付は指定できません", err.Error())
}
