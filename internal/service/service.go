package service

import (
	"backstage/internal/config"
	"backstage/internal/guard"
	"backstage/internal/ledger"
	"backstage/internal/messaging"
	"backstage/internal/store"
)

type Services struct {
	Events   *EventService
	Bookings *BookingService
	Wallets  *WalletService
	Admin    *AdminService
}

func NewServices(st store.Store, natsClient *messaging.NATSClient, policy config.PolicyConfig) *Services {
	led := ledger.New()
	g := guard.New()

	return &Services{
		Events:   NewEventService(st, g),
		Bookings: NewBookingService(st, led, g, natsClient, policy),
		Wallets:  NewWalletService(st),
		Admin:    NewAdminService(st, led, natsClient),
	}
}
