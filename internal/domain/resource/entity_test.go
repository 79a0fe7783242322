package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	tests := []struct {
		name        string
		resName     string
		openHour    int
		closeHour   int
		slotMinutes int
		wantErr     error
	}{
		{name: "正常なリソース作成", resName: "barber-1", openHour: 9, closeHour: 19, slotMinutes: 60},
		{name: "リソース名未指定", resName: "", openHour: 9, closeHour: 19, slotMinutes: 60, wantErr: ErrNameRequired},
		{name: "開店時刻が範囲外", resName: "barber-1", openHour: -1, closeHour: 19, slotMinutes: 60, wantErr: ErrInvalidOpenHour},
		{name: "閉店時刻が範囲外", resName: "barber-1", openHour: 9, closeHour: 24, slotMinutes: 60, wantErr: ErrInvalidCloseHour},
		{name: "閉店時刻が開店時刻より前", resName: "barber-1", openHour: 18, closeHour: 10, slotMinutes: 60, wantErr: ErrCloseBeforeOpen},
		{name: "スロット間隔が負", resName: "barber-1", openHour: 9, closeHour: 19, slotMinutes: -15, wantErr: ErrInvalidSlotMinutes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResource(tt.resName, "", tt.openHour, tt.closeHour, tt.slotMinutes)
			err := r.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.resName, r.Name)
			assert.Equal(t, tt.openHour, r.OpenHour)
			assert.Equal(t, tt.closeHour, r.CloseHour)
		})
	}
}

func TestNewResource_DefaultSlotMinutes(t *testing.T) {
	r := NewResource("barber-1", "", 9, 19, 0)
	require.NoError(t, r.Validate())
	assert.Equal(t, 60, r.SlotMinutes)
}
