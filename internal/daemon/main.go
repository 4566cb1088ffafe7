// Package daemon wires configuration, database, sessions and the web service together.
package daemon

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/classgroups/classgroups/internal/config"
	"github.com/classgroups/classgroups/internal/db"
	"github.com/classgroups/classgroups/internal/db/dsn"
	"github.com/classgroups/classgroups/internal/evidence"
	"github.com/classgroups/classgroups/internal/web"
	"github.com/classgroups/classgroups/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start serves the web service until a shutdown signal arrives.
func (d *Daemon) Start() error {
	go func() {
		if err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port)); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	d.webService.WaitShutdown()

	return nil
}

// Open connects to the configured database and migrates it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return gdb, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(gdb); err != nil {
		return nil, err
	}

	InitSessions(cfg)

	if err = os.MkdirAll(cfg.Evidence.Path, 0o750); err != nil { //nolint:mnd
		return nil, errors.Wrap(err, "failed to create evidence directory")
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, gdb, evidence.New(cfg.Evidence.Path)),
	}, nil
}

// InitSessions opens the session store shared with the sign-in service.
// Server engines keep sessions in their database; sqlite keeps them in memory.
func InitSessions(cfg *config.Config) {
	var storage fiber.Storage

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		storage = sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(cfg),
			Table:         cfg.Webserver.Session.Table,
		})
	case config.EnginePostgres:
		storage = sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         cfg.Webserver.Session.Table,
		})
	default:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")
	}

	session.Init(storage)
}
