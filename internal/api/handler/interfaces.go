package handler

import (
	"context"

	"github.com/sanosuguru/go-appointment-reservation/internal/application"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-appointment-reservation/internal/domain/resource"
)

// ResourceServiceInterface はリソースサービスのインターフェース
type ResourceServiceInterface interface {
	CreateResource(ctx context.Context, input application.CreateResourceInput) (*resource.Resource, error)
	GetResource(ctx context.Context, id string) (*resource.Resource, error)
	ListResources(ctx context.Context, limit, offset int) ([]*resource.Resource, error)
	UpdateResource(ctx context.Context, id string, input application.UpdateResourceInput) (*resource.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// AvailabilityServiceInterface は空き照会サービスのインターフェース
type AvailabilityServiceInterface interface {
	Slots(ctx context.Context, resourceID string) ([]string, error)
	Resolve(ctx context.Context, resourceID, date string) ([]application.SlotAvailability, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetReservationsByResourceAndDate(ctx context.Context, resourceID, date string) ([]*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	LastReservation(ctx context.Context, resourceID string) (*reservation.Reservation, error)
}
