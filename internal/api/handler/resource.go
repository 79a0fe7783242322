package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

type ResourceHandler struct {
	service ResourceServiceInterface
}

func NewResourceHandler(s ResourceServiceInterface) *ResourceHandler {
	return &ResourceHandler{service: s}
}

type CreateResourceRequest struct {
	Name        string `json:"name" validate:"required" example:"barber-1"`
	Description string `json:"description" example:"1番カットスペース"`
	OpenHour    int    `json:"open_hour" validate:"min=0,max=23" example:"9"`
	CloseHour   int    `json:"close_hour" validate:"min=0,max=23" example:"17"`
	SlotMinutes int    `json:"slot_minutes" validate:"omitempty,min=1" example:"60"`
}

type UpdateResourceRequest struct {
	Name        string `json:"name" validate:"required" example:"barber-1"`
	Description string `json:"description" example:"1番カットスペース"`
	OpenHour    int    `json:"open_hour" validate:"min=0,max=23" example:"9"`
	CloseHour   int    `json:"close_hour" validate:"min=0,max=23" example:"17"`
	SlotMinutes int    `json:"slot_minutes" validate:"omitempty,min=1" example:"60"`
}

type ResourceResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string    `json:"name" example:"barber-1"`
	Description string    `json:"description,omitempty" example:"1番カットスペース"`
	OpenHour    int       `json:"open_hour" example:"9"`
	CloseHour   int       `json:"close_hour" example:"17"`
	SlotMinutes int       `json:"slot_minutes" example:"60"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID: r.ID, Name: r.Name, Description: r.Description,
		OpenHour: r.OpenHour, CloseHour: r.CloseHour, SlotMinutes: r.SlotMinutes,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// Create godoc
// @Summary リソースを作成
// @Description 予約対象のリソース（部屋・席・スタッフ枠など）を登録します
// @Tags resources
// @Accept json
// @Produce json
// @Param request body CreateResourceRequest true "リソース情報"
// @Success 201 {object} ResourceResponse
// @Failure 400 {object} map[string]string
// @Router /resources [post]
func (h *ResourceHandler) Create(c echo.Context) error {
	var req CreateResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateResource(c.Request().Context(), application.CreateResourceInput{
		Name:        req.Name,
		Description: req.Description,
		OpenHour:    req.OpenHour,
		CloseHour:   req.CloseHour,
		SlotMinutes: req.SlotMinutes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toResourceResponse(r))
}

// GetByID godoc
// @Summary リソースを取得
// @Description 指定IDのリソースを取得します
// @Tags resources
// @Produce json
// @Param id path string true "リソースID"
// @Success 200 {object} ResourceResponse
// @Failure 404 {object} map[string]string
// @Router /resources/{id} [get]
func (h *ResourceHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	r, err := h.service.GetResource(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, resource.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toResourceResponse(r))
}

// List godoc
// @Summary リソース一覧を取得
// @Description 登録済みリソースの一覧を取得します
// @Tags resources
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ResourceResponse
// @Router /resources [get]
func (h *ResourceHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	resources, err := h.service.ListResources(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		resp[i] = toResourceResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary リソースを更新
// @Description リソースの名称や営業時間を更新します
// @Tags resources
// @Accept json
// @Produce json
// @Param id path string true "リソースID"
// @Param request body UpdateResourceRequest true "リソース情報"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var req UpdateResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.UpdateResource(c.Request().Context(), id, application.UpdateResourceInput{
		Name:        req.Name,
		Description: req.Description,
		OpenHour:    req.OpenHour,
		CloseHour:   req.CloseHour,
		SlotMinutes: req.SlotMinutes,
	})
	if err != nil {
		if errors.Is(err, resource.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, toResourceResponse(r))
}

// Delete godoc
// @Summary リソースを削除
// @Description リソースを削除します
// @Tags resources
// @Param id path string true "リソースID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.DeleteResource(c.Request().Context(), id); err != nil {
		if errors.Is(err, resource.ErrResourceNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
