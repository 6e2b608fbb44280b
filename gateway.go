package main

import (
	"fmt"

	"streamdraw/config"
	"streamdraw/database"
	"streamdraw/internal/infra/gateway"
	"streamdraw/internal/infra/payu"
	stripecheckout "streamdraw/internal/infra/stripe"
	"streamdraw/internal/participation"
	"streamdraw/internal/repo"
)

func newGateway() (gateway.Gateway, error) {
	switch config.GATEWAY {
	case "payu":
		return payu.New(payu.Config{
			Key:  config.PAYU_KEY,
			Salt: config.PAYU_SALT,
			Env:  config.PAYU_ENV,
		}), nil
	case "stripe":
		return stripecheckout.New(config.STRIPE_SECRET_KEY, nil), nil
	default:
		return nil, fmt.Errorf("unsupported gateway %q", config.GATEWAY)
	}
}

// newEngine expects database.DB to be initialized.
func newEngine() (*participation.Engine, error) {
	gw, err := newGateway()
	if err != nil {
		return nil, err
	}
	return participation.NewEngine(repo.NewParticipationRepo(database.DB), gw, participation.Options{
		GatewayTimeout: config.GATEWAY_TIMEOUT,
		Currency:       config.CURRENCY,
		ReturnURL:      config.BASE_URL + "/api/payment/give-access",
		ContactEmail:   config.SUPPORT_EMAIL,
	}), nil
}
