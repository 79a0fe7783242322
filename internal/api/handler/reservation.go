package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-appointment-reservation/internal/api"
	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
	"github.com/sanosuguru/go-appointment-reservation/internal/gateway"
	redisinfra "github.com/sanosuguru/go-appointment-reservation/internal/infrastructure/redis"
)

type ReservationHandler struct {
	service BookingServiceInterface
}

func NewReservationHandler(s BookingServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	ResourceID    string `json:"resource_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Date          string `json:"date" validate:"required" example:"2025-06-02"`
	Time          string `json:"time" validate:"required" example:"09:00"`
	CustomerName  string `json:"customer_name" validate:"required" example:"Laura"`
	CustomerEmail string `json:"customer_email" validate:"required,email" example:"laura@example.com"`
}

type ReservationResponse struct {
	ID               string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ResourceID       string     `json:"resource_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Date             string     `json:"date" example:"2025-06-02"`
	Time             string     `json:"time" example:"09:00"`
	CustomerName     string     `json:"customer_name" example:"Laura"`
	CustomerEmail    string     `json:"customer_email" example:"laura@example.com"`
	Status           string     `json:"status" example:"active"`
	ConfirmationCode string     `json:"confirmation_code" example:"BK-1A2B3C4D"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, ResourceID: r.ResourceID,
		Date: r.Date, Time: r.Time,
		CustomerName: r.CustomerName, CustomerEmail: r.CustomerEmail,
		Status:           string(r.Status),
		ConfirmationCode: r.ConfirmationCode,
		CanceledAt:       r.CanceledAt,
		CreatedAt:        r.CreatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 指定スロットを原子的に確保します。同一スロットの有効な予約は高々一つです
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "スロットが既に予約済み"
// @Failure 502 {object} map[string]string "上流ゲートウェイに到達できない"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		ResourceID:    req.ResourceID,
		Date:          req.Date,
		Time:          req.Time,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return mapReservationError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	r, err := h.service.GetReservation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// ListByResource godoc
// @Summary リソースと日付の予約一覧を取得
// @Description 指定リソース・日付の予約を時刻順に返します（キャンセル済み含む）
// @Tags reservations
// @Produce json
// @Param id path string true "リソースID"
// @Param date query string true "日付（YYYY-MM-DD）"
// @Success 200 {array} ReservationResponse
// @Failure 400 {object} map[string]string
// @Router /resources/{id}/reservations [get]
func (h *ReservationHandler) ListByResource(c echo.Context) error {
	resourceID := c.Param("id")
	date := c.QueryParam("date")
	if date == "" {
		return api.NewFieldError("date", "date クエリパラメータは必須です")
	}
	reservations, err := h.service.GetReservationsByResourceAndDate(c.Request().Context(), resourceID, date)
	if err != nil {
		var vErr *reservation.ValidationError
		if errors.As(err, &vErr) {
			return api.NewFieldError(vErr.Field, vErr.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、スロットを即座に解放します
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "既にキャンセル済み、またはキャンセル不可"
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	r, err := h.service.CancelReservation(c.Request().Context(), id)
	if err != nil {
		return mapReservationError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Last godoc
// @Summary 最後に受け付けた予約を取得
// @Description リソースの受付ミラーから直近の予約を返します（表示用途のみ）
// @Tags reservations
// @Produce json
// @Param id path string true "リソースID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /resources/{id}/reservations/last [get]
func (h *ReservationHandler) Last(c echo.Context) error {
	resourceID := c.Param("id")
	r, err := h.service.LastReservation(c.Request().Context(), resourceID)
	if err != nil {
		if errors.Is(err, redisinfra.ErrMirrorMiss) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// mapReservationError はドメインエラーをHTTPステータスに対応付ける
func mapReservationError(err error) error {
	var vErr *reservation.ValidationError
	var upstream *gateway.UpstreamError
	switch {
	case errors.As(err, &vErr):
		return api.NewFieldError(vErr.Field, vErr.Message)
	case errors.Is(err, reservation.ErrSlotTaken),
		errors.Is(err, reservation.ErrAlreadyCanceled),
		errors.Is(err, reservation.ErrNotCancellable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, reservation.ErrReservationNotFound),
		errors.Is(err, resource.ErrResourceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.As(err, &upstream):
		return echo.NewHTTPError(http.StatusBadGateway, upstream.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
