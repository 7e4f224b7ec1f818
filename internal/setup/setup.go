package setup

import (
	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/events"
	"github.com/lumeo-dev/lumeo/internal/handler"
	"github.com/lumeo-dev/lumeo/internal/jwt"
	"github.com/lumeo-dev/lumeo/internal/logger"
	"github.com/lumeo-dev/lumeo/internal/notification"
	"github.com/lumeo-dev/lumeo/internal/service"
	"github.com/lumeo-dev/lumeo/internal/storage/pg"
	"github.com/lumeo-dev/lumeo/internal/tmdb"
)

// Dependencies holds everything main needs to run and shut down.
type Dependencies struct {
	Storage    *pg.Storage
	Handler    *handler.Handler
	Jwt        jwt.JwtService
	Bus        *events.Bus
	Dispatcher *notification.Dispatcher
	SiteInfo   *service.SiteInfo
	Config     *config.Config
}

// SetupDependencies wires the whole object graph. The dispatcher and
// the site-info refresher still need starting, main owns their
// lifetimes.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(&cfg.Private.Pg)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	sender := notification.NewSMTP(&cfg.Private.Email)
	dispatcher := notification.NewDispatcher(sender, 64)
	bus := events.NewBus()

	siteInfo, err := service.NewSiteInfo(storage, cfg.SiteInfoRefreshInterval())
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	accounts := service.NewAccount(storage, bus, dispatcher, siteInfo, jwtService, cfg)
	info := service.NewInfo(storage, cfg)
	profiles := service.NewProfile(storage)
	stats := service.NewStats(storage)

	recommender, err := service.NewRecommender(storage, tmdb.New(&cfg.Private.Tmdb))
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	// Activation creates the empty profile.
	bus.Subscribe(domain.EventActivated, profiles.OnActivated)
	// Every transition leaves an audit line.
	bus.SubscribeAll(func(e domain.Event) error {
		logger.Log.Info("account event",
			"kind", e.Kind, "account_id", e.AccountId, "correlation_id", e.CorrelationId)
		return nil
	})

	h := handler.New(accounts, info, profiles, stats, siteInfo, recommender, storage, cfg)

	return &Dependencies{
		Storage:    storage,
		Handler:    h,
		Jwt:        jwtService,
		Bus:        bus,
		Dispatcher: dispatcher,
		SiteInfo:   siteInfo,
		Config:     cfg,
	}, nil
}
