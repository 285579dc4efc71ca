// Package app assembles the portal from configuration: the SQLite-backed
// local store, the session vault and store, the API gateway with its 403
// policy, the domain services and the HTTP engine. Both the CLI commands and
// the portal server run on an App.
package app

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-topup-portal/internal/config"
	"github.com/tbourn/go-topup-portal/internal/events"
	"github.com/tbourn/go-topup-portal/internal/gateway"
	httpapi "github.com/tbourn/go-topup-portal/internal/http"
	"github.com/tbourn/go-topup-portal/internal/repo"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/session"
	"github.com/tbourn/go-topup-portal/internal/storage"
)

// UserAgent identifies the portal to the backend.
var UserAgent = "go-topup-portal"

// App is the wired portal.
type App struct {
	Config   config.Config
	DB       *gorm.DB
	Store    *storage.Store
	Bus      *events.Bus
	Vault    *session.Vault
	Session  *session.Store
	Gateway  *gateway.Client
	Auth     *services.AuthService
	Recharge *services.RechargeService
	TopUp    *services.TopUpService

	log zerolog.Logger
}

// Option customizes New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zerolog.Logger
}

// WithHTTPClient replaces the client used to reach the backend.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithLogger replaces the base logger of every component.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New opens the local store at cfg.Store.DBPath and wires every component.
// Close releases the database and the logout bus.
func New(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	base := log.Logger
	if o.logger != nil {
		base = *o.logger
	}
	component := func(name string) zerolog.Logger {
		return base.With().Str("component", name).Logger()
	}

	db, err := repo.OpenSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store %q: %w", cfg.Store.DBPath, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	kv := repo.NewLocalStorage(db)

	st := storage.New(kv,
		storage.WithLogger(component("storage")),
		storage.WithSupplierTTL(cfg.Store.SupplierCacheTTL),
		storage.WithHistoryLimit(cfg.Store.HistoryLimit),
	)

	bus := events.NewBus()
	vault := session.NewVault(kv, bus)
	vault.SetLogger(component("session"))

	gwOpts := []gateway.Option{
		gateway.WithTimeout(cfg.Backend.Timeout),
		gateway.WithPolicies(gateway.DefaultPolicies(cfg.Backend.Endpoints.Auth, cfg.Backend.Endpoints.FindSuppliers)),
		gateway.WithLogger(component("gateway")),
		gateway.WithUserAgent(UserAgent),
	}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}
	gw, err := gateway.New(cfg.Backend.APIBase, vault, gwOpts...)
	if err != nil {
		closeDB(db)
		bus.Close()
		return nil, err
	}

	auth := services.NewAuthService(gw, cfg.Backend.Endpoints.Auth)
	recharge := services.NewRechargeService(gw, services.RechargeEndpoints{
		FindSuppliers: cfg.Backend.Endpoints.FindSuppliers,
		Buy:           cfg.Backend.Endpoints.Buy,
	})
	topup := services.NewTopUpService(recharge, st, services.Site{
		PointOfSale: cfg.Backend.PointOfSale,
		City:        cfg.Backend.CityCode,
		Latitude:    cfg.Backend.Latitude,
		Longitude:   cfg.Backend.Longitude,
	})
	topup.SetLogger(component("topup"))

	sess := session.NewStore(vault, auth)
	sess.SetLogger(component("session"))

	return &App{
		Config:   cfg,
		DB:       db,
		Store:    st,
		Bus:      bus,
		Vault:    vault,
		Session:  sess,
		Gateway:  gw,
		Auth:     auth,
		Recharge: recharge,
		TopUp:    topup,
		log:      component("app"),
	}, nil
}

// Handler builds the portal's Gin engine.
func (a *App) Handler() http.Handler {
	gin.SetMode(a.Config.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Session: a.Session,
		Portal:  a.TopUp,
		Events:  a.Bus,
	}, a.Config)
	return r
}

// Server returns an http.Server for the portal using the configured
// timeouts.
func (a *App) Server() *http.Server {
	c := a.Config
	return &http.Server{
		Addr:              ":" + c.Port,
		Handler:           a.Handler(),
		ReadTimeout:       c.ReadTimeout,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
		WriteTimeout:      c.WriteTimeout,
		IdleTimeout:       c.IdleTimeout,
		MaxHeaderBytes:    c.MaxHeaderBytes,
	}
}

// Commerce returns the configured login commerce as text, or "".
func (a *App) Commerce() string {
	if a.Config.Backend.Commerce == 0 {
		return ""
	}
	return strconv.FormatInt(a.Config.Backend.Commerce, 10)
}

// Close notifies logout listeners that the portal is going away and closes
// the database.
func (a *App) Close() error {
	a.Bus.Close()
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	a.log.Debug().Msg("local store closed")
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
