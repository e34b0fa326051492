package app

import (
	"context"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/sourcing/internal/adapters/httpserver"
	"github.com/phenrril/sourcing/internal/adapters/lock"
	"github.com/phenrril/sourcing/internal/adapters/repo/postgres"
	"github.com/phenrril/sourcing/internal/usecase"
)

type App struct {
	DB     *gorm.DB
	Config Config

	Tree          *usecase.ProductTree
	ParamUC       *usecase.ParamUC
	CatalogUC     *usecase.CatalogUC
	CompareUC     *usecase.CompareUC
	TechTaskUC    *usecase.TechTaskUC
	MeasurementUC *usecase.MeasurementUC

	redis *redis.Client
}

func NewApp(ctx context.Context, db *gorm.DB, cfg Config) (*App, error) {
	app := wire(db, cfg)
	if cfg.RedisAddr != "" {
		rdb, err := lock.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, tech task lock disabled")
		} else {
			app.redis = rdb
			app.TechTaskUC.Locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.LockTTL).Msg("redis tech task lock enabled")
		}
	}
	return app, nil
}

// wire builds the repos and use cases over db. Seed calls it again with a
// transaction handle so every seeded record commits or rolls back together.
func wire(db *gorm.DB, cfg Config) *App {
	nodeRepo := postgres.NewNodeRepo(db)
	paramRepo := postgres.NewParamRepo(db)
	sourcingRepo := postgres.NewSourcingRepo(db)
	compareRepo := postgres.NewCompareRepo(db)
	contractRepo := postgres.NewContractRepo(db)
	measurementRepo := postgres.NewMeasurementRepo(db)

	app := &App{DB: db, Config: cfg}
	app.Tree = &usecase.ProductTree{Nodes: nodeRepo}
	app.ParamUC = &usecase.ParamUC{Tree: app.Tree, Assignments: nodeRepo, Params: paramRepo}
	app.CatalogUC = &usecase.CatalogUC{
		Tree:        app.Tree,
		Nodes:       nodeRepo,
		Assignments: nodeRepo,
		Params:      paramRepo,
		Sourcing:    sourcingRepo,
		Compare:     compareRepo,
		Contracts:   contractRepo,
	}
	app.CompareUC = &usecase.CompareUC{Compare: compareRepo, Sourcing: sourcingRepo, Measurements: measurementRepo, Params: app.ParamUC}
	app.TechTaskUC = &usecase.TechTaskUC{Contracts: contractRepo, Sourcing: sourcingRepo, Measurements: measurementRepo, Params: app.ParamUC}
	app.MeasurementUC = &usecase.MeasurementUC{Measurements: measurementRepo, Params: paramRepo, Sourcing: sourcingRepo}
	return app
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.ParamUC, a.CompareUC, a.TechTaskUC, a.MeasurementUC)
}

// MigrateAndSeed brings the schema up to date and loads the configured seed
// into an empty catalog.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.DB.WithContext(ctx).AutoMigrate(postgres.Models()...); err != nil {
		return err
	}
	var data []byte
	switch {
	case a.Config.SeedFile != "":
		b, err := os.ReadFile(a.Config.SeedFile)
		if err != nil {
			return err
		}
		data = b
	case a.Config.SeedDemo:
		data = demoSeed
	default:
		return nil
	}
	return a.Seed(ctx, data)
}

func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
