package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-appointment-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code           = http.StatusInternalServerError
		message        = "内部サーバーエラー"
		field   string = ""
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case *fieldError:
			message = m.message
			field = m.field
		default:
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
		Field: field,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

// fieldError は検証エラーの対象フィールドをレスポンスに伝搬させるための内部型
type fieldError struct {
	field   string
	message string
}

func (e *fieldError) Error() string {
	return e.message
}

// NewFieldError はフィールド付きの 400 エラーを作成する
func NewFieldError(field, message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, &fieldError{field: field, message: message})
}
