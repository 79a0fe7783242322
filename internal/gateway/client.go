package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanosuguru/go-appointment-reservation/internal/config"
)

// ErrGatewayUnavailable は外部予約ゲートウェイへの到達失敗を表す
var ErrGatewayUnavailable = errors.New("予約ゲートウェイに接続できません")

// UpstreamError はゲートウェイが返した非2xx応答。上流のステータスと
// メッセージをそのまま呼び出し元に伝える。
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ゲートウェイエラー（%d）: %s", e.StatusCode, e.Message)
}

// Reservation はゲートウェイ上の予約表現
type Reservation struct {
	ID            string `json:"id"`
	ResourceID    string `json:"resourceId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Status        string `json:"status"`
}

// CreateReservationRequest は予約作成リクエストのボディ
type CreateReservationRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	ResourceID    string `json:"resourceId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

// Client は外部予約ゲートウェイのHTTPクライアント。
// すべての呼び出しはタイムアウト付きで、リトライは行わない。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient は新しいゲートウェイクライアントを作成する
func NewClient(cfg *config.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateReservation はゲートウェイに予約を作成する
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("リクエストのシリアライズに失敗: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reservations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, http.StatusCreated)
}

// CancelReservation はゲートウェイ上の予約をキャンセルする
func (c *Client) CancelReservation(ctx context.Context, id string) (*Reservation, error) {
	url := fmt.Sprintf("%s/reservations/%s/cancel", c.baseURL, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	return c.do(httpReq, http.StatusOK)
}

func (c *Client) do(req *http.Request, wantStatus int) (*Reservation, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンス読み取りに失敗: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(payload),
		}
	}

	var res Reservation
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("レスポンスのデシリアライズに失敗: %w", err)
	}
	return &res, nil
}

// upstreamMessage は上流のエラーボディから表示用メッセージを取り出す
func upstreamMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(payload))
}
