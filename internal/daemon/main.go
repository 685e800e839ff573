// Package daemon wires configuration, database and the web service together.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/noterelay/noterelay/internal/config"
	"github.com/noterelay/noterelay/internal/db/dsn"
	"github.com/noterelay/noterelay/internal/db/models"
	"github.com/noterelay/noterelay/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.UserSetting{},
	); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database ready")

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}, nil
}

func openDialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case "mysql":
		return gormmysql.Open(dsn.Create(cfg)), nil
	case "postgres":
		return gormpostgres.Open(dsn.Create(cfg)), nil
	case "sqlite":
		return sqlite.Open(dsn.Create(cfg)), nil
	}

	return nil, errors.Errorf("unsupported gorm engine %q", cfg.DB.GormEngine)
}
