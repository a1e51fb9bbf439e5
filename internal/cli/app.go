package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/issuebadge/issuebadge-service/internal/badgeapi"
	"github.com/issuebadge/issuebadge-service/internal/config"
	"github.com/issuebadge/issuebadge-service/internal/events"
	"github.com/issuebadge/issuebadge-service/internal/repo"
	"github.com/issuebadge/issuebadge-service/internal/services"
	"github.com/issuebadge/issuebadge-service/internal/sysutil"
)

// app holds the process dependencies built from Config.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	db     *gorm.DB
	client services.BadgeClient
}

// openApp opens and migrates the database and builds the API client. A
// missing API key is not an error: the client is left nil and the services
// report the configuration error per call.
func openApp(cfg config.Config, logOut io.Writer) (*app, error) {
	lg := sysutil.NewLogger(logOut, cfg.LogPretty, cfg.OTEL.ServiceName)

	db, err := repo.OpenDatabase(repo.Options{
		Driver:  cfg.DB.Driver,
		DSN:     cfg.DB.Target(),
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db, cfg.DB.MigrateHost); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &app{cfg: cfg, log: lg, db: db}
	c, err := badgeapi.New(badgeapi.Config{
		BaseURL: cfg.IssueBadge.APIURL,
		APIKey:  cfg.IssueBadge.APIKey,
		Timeout: cfg.IssueBadge.Timeout,
	})
	if err != nil {
		lg.Warn().Err(err).Msg("IssueBadge client not configured")
	} else {
		// a nil *badgeapi.Client must not end up inside the interface
		a.client = c
	}
	return a, nil
}

// bus is the event bus used outside the HTTP server.
func (a *app) bus() *events.Bus {
	return events.NewBus(events.LogObserver(a.log))
}

func (a *app) Close() { closeDB(a.db) }

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
