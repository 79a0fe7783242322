package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

// MockAvailabilityService はAvailabilityServiceInterfaceのモック
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) Slots(ctx context.Context, resourceID string) ([]string, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAvailabilityService) Resolve(ctx context.Context, resourceID, date string) ([]application.SlotAvailability, error) {
	args := m.Called(ctx, resourceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.SlotAvailability), args.Error(1)
}

func TestAvailabilityHandler_Slots(t *testing.T) {
	e := NewTestEcho()

	t.Run("スロットカタログを取得できる", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		mockService.On("Slots", mock.Anything, "resource-123").
			Return([]string{"09:00", "10:00", "11:00"}, nil)

		handler := NewAvailabilityHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/resources/resource-123/slots", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("resource-123")

		err := handler.Slots(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SlotsResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, resp.Slots)
		mockService.AssertExpectations(t)
	})

	t.Run("リソースが見つからない場合404", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		mockService.On("Slots", mock.Anything, "nonexistent").Return(nil, resource.ErrResourceNotFound)

		handler := NewAvailabilityHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/resources/nonexistent/slots", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nonexistent")

		err := handler.Slots(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestAvailabilityHandler_Resolve(t *testing.T) {
	e := NewTestEcho()

	t.Run("指定日の空き状況を取得できる", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		mockService.On("Resolve", mock.Anything, "resource-123", "2025-06-02").
			Return([]application.SlotAvailability{
				{Time: "09:00", Available: false},
				{Time: "10:00", Available: true},
			}, nil)

		handler := NewAvailabilityHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/resources/resource-123/availability?date=2025-06-02", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("resource-123")

		err := handler.Resolve(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AvailabilityResponse
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", resp.Date)
		require.Len(t, resp.Slots, 2)
		assert.False(t, resp.Slots[0].Available)
		assert.True(t, resp.Slots[1].Available)
		mockService.AssertExpectations(t)
	})

	t.Run("dateパラメータがない場合400", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := NewAvailabilityHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/resources/resource-123/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("resource-123")

		err := handler.Resolve(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "Resolve")
	})

	t.Run("日付の形式が不正な場合400", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		mockService.On("Resolve", mock.Anything, "resource-123", "06/02/2025").
			Return(nil, reservation.NewValidationError("date", "日付の形式が不正です（YYYY-MM-DD）"))

		handler := NewAvailabilityHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/resources/resource-123/availability?date=06%2F02%2F2025", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("resource-123")

		err := handler.Resolve(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}
