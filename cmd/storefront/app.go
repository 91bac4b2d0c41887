package main

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/internal/checkout"
	"Storefront/internal/config"
	"Storefront/internal/i18n"
	"Storefront/internal/order"
	"Storefront/internal/session"
	"Storefront/internal/storage"
	"Storefront/internal/tableclient"
	"Storefront/internal/timeid"
	"Storefront/pkg/kit"
)

// app wires the storefront stores over a directory-backed storage.
type app struct {
	cfg *config.Storefront
	log *zap.Logger

	catalog  *catalog.Store
	cart     *cart.Store
	auth     *auth.Store
	orders   *order.Store
	checkout *checkout.Service
	i18n     *i18n.Store
	api      *tableclient.Client
}

func newApp(cfg *config.Storefront) (*app, error) {
	log := kit.NewLogger("storefront", cfg.LogLevel)

	backend, err := storage.NewFileBackend(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "open data dir")
	}
	st := storage.NewAdapter(backend, log)

	var authn auth.Authenticator = auth.SimulatedAuthenticator{}
	if cfg.Auth == config.AuthCredentials {
		authn = auth.NewCredentialAuthenticator(st)
	}

	var tokens *session.TokenMaker
	if cfg.JWTSecret != "" {
		tokens = session.NewTokenMaker(cfg.JWTSecret, cfg.TokenTTL)
	}

	ids := timeid.New(nil)
	a := &app{
		cfg:     cfg,
		log:     log,
		catalog: catalog.NewStore(),
		cart:    cart.NewStore(st, log),
		auth: auth.NewStore(st, auth.Options{
			Authenticator: authn,
			Tokens:        tokens,
			IDs:           ids,
			Delay:         cfg.Delay,
			Log:           log,
		}),
		orders: order.NewStore(st, order.Options{
			IDs:   ids,
			Delay: cfg.Delay,
			Log:   log,
		}),
		i18n: i18n.NewStore(st),
		api:  tableclient.New(cfg.APIURL),
	}
	a.checkout = &checkout.Service{Cart: a.cart, Auth: a.auth, Orders: a.orders}
	a.api.Token = a.auth.Token

	if cfg.Language != "" {
		if err := a.i18n.Use(i18n.MatchLanguage(cfg.Language)); err != nil {
			return nil, err
		}
	}
	return a, nil
}
