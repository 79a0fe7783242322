package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-appointment-reservation/internal/api"
	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

type AvailabilityHandler struct {
	service AvailabilityServiceInterface
}

func NewAvailabilityHandler(s AvailabilityServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{service: s}
}

// SlotsResponse はスロットカタログのレスポンス
type SlotsResponse struct {
	ResourceID string   `json:"resource_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Slots      []string `json:"slots" example:"09:00,10:00,11:00"`
}

// AvailabilityResponse は指定日の空き状況のレスポンス
type AvailabilityResponse struct {
	ResourceID string                         `json:"resource_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Date       string                         `json:"date" example:"2025-06-02"`
	Slots      []application.SlotAvailability `json:"slots"`
}

// Slots godoc
// @Summary スロットカタログを取得
// @Description リソースの営業時間から導出される予約可能スロットの一覧を返します
// @Tags availability
// @Produce json
// @Param id path string true "リソースID"
// @Success 200 {object} SlotsResponse
// @Failure 404 {object} map[string]string
// @Router /resources/{id}/slots [get]
func (h *AvailabilityHandler) Slots(c echo.Context) error {
	resourceID := c.Param("id")
	slots, err := h.service.Slots(c.Request().Context(), resourceID)
	if err != nil {
		if errors.Is(err, resource.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, SlotsResponse{ResourceID: resourceID, Slots: slots})
}

// Resolve godoc
// @Summary 指定日の空き状況を取得
// @Description 各スロットの空き・埋まりを返します。キャンセル済み予約は空き扱いです
// @Tags availability
// @Produce json
// @Param id path string true "リソースID"
// @Param date query string true "日付（YYYY-MM-DD）"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /resources/{id}/availability [get]
func (h *AvailabilityHandler) Resolve(c echo.Context) error {
	resourceID := c.Param("id")
	date := c.QueryParam("date")
	if date == "" {
		return api.NewFieldError("date", "date クエリパラメータは必須です")
	}
	slots, err := h.service.Resolve(c.Request().Context(), resourceID, date)
	if err != nil {
		var vErr *reservation.ValidationError
		switch {
		case errors.As(err, &vErr):
			return api.NewFieldError(vErr.Field, vErr.Message)
		case errors.Is(err, resource.ErrResourceNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{ResourceID: resourceID, Date: date, Slots: slots})
}
