package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-appointment-reservation/internal/config"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
)

// ルーティングキー
const (
	RoutingKeyCreated  = "reservation.created"
	RoutingKeyCanceled = "reservation.canceled"
)

// ReservationEvent は予約イベントのペイロード
type ReservationEvent struct {
	ReservationID    string    `json:"reservation_id"`
	ResourceID       string    `json:"resource_id"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Status           string    `json:"status"`
	ConfirmationCode string    `json:"confirmation_code"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventPublisher は予約イベントをRabbitMQに発行する。
// 発行の失敗は予約そのものを失敗させない（呼び出し側でログに留める）。
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewEventPublisher は新しい EventPublisher を作成する
func NewEventPublisher(cfg *config.RabbitMQConfig) (*EventPublisher, error) {
	conn, err := amqp.Dial(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("エクスチェンジ宣言に失敗: %w", err)
	}

	return &EventPublisher{conn: conn, channel: channel, exchange: cfg.Exchange}, nil
}

// PublishCreated は予約作成イベントを発行する
func (p *EventPublisher) PublishCreated(ctx context.Context, res *reservation.Reservation) error {
	return p.publish(ctx, RoutingKeyCreated, res)
}

// PublishCanceled は予約キャンセルイベントを発行する
func (p *EventPublisher) PublishCanceled(ctx context.Context, res *reservation.Reservation) error {
	return p.publish(ctx, RoutingKeyCanceled, res)
}

func (p *EventPublisher) publish(ctx context.Context, routingKey string, res *reservation.Reservation) error {
	event := ReservationEvent{
		ReservationID:    res.ID,
		ResourceID:       res.ResourceID,
		Date:             res.Date,
		Time:             res.Time,
		Status:           string(res.Status),
		ConfirmationCode: res.ConfirmationCode,
		OccurredAt:       time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}

	if err := p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func (p *EventPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
