package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"disease-detector/internal/catalog"
	"disease-detector/internal/common/database"
	"disease-detector/internal/common/mqtt"
	"disease-detector/internal/common/redis"
	"disease-detector/internal/config"
	"disease-detector/internal/ensemble"
	"disease-detector/internal/repository"
	"disease-detector/internal/scorer"
	"disease-detector/internal/service"
	"disease-detector/internal/telemetry"
)

// app holds the wired components shared by serve and predict.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *catalog.Catalog
	db        *sql.DB
	repo      repository.PatientRepository
	pool      *scorer.Pool
	engine    *ensemble.Engine
	collector *telemetry.Collector
	redis     *redis.Client
	mqtt      *mqtt.Client

	predictions *service.PredictionService
	patients    *service.PatientService
}

// buildApp wires store, scorers, engine and telemetry. External telemetry
// sinks are only connected when withSinks is set; connection failures there
// are logged and the sink is skipped.
func buildApp(ctx context.Context, cfg *config.Config, catalogPath string, withSinks bool, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	a.catalog = cat
	logger.Info("Disease catalog loaded",
		zap.Int("diseases", cat.Len()),
		zap.String("path", catalogPathLabel(catalogPath)),
	)

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	instances := make([]*scorer.Instance, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		instances = append(instances, scorer.BuildInstance(ctx, m, cfg.Prediction.ScorerTimeout, logger))
	}
	a.pool = scorer.NewPool(logger, instances...)
	if err := a.pool.LoadAll(ctx, cat); err != nil {
		logger.Warn("Some models failed to load, continuing with reduced ensemble", zap.Error(err))
	}
	logger.Info("Models loaded",
		zap.Int("ready", a.pool.ReadyCount()),
		zap.Strings("model_names", a.pool.ReadyNames()),
	)

	history := service.NewRepositoryHistory(a.repo, cfg.Prediction.HistoryLimit)
	a.engine, err = ensemble.NewEngine(cat, a.pool, history, cfg.EngineOptions(), logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.collector = telemetry.NewCollector()
	observers := []telemetry.Observer{a.collector}
	if withSinks {
		observers = append(observers, a.connectSinks(ctx)...)
	}
	fanout := telemetry.NewFanout(logger, observers...)

	a.predictions = service.NewPredictionService(a.engine, a.repo, fanout, logger)
	a.patients = service.NewPatientService(a.repo, cfg.Prediction.HistoryLimit, logger)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	var err error
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		if a.db, err = database.NewPostgresDB(&a.cfg.Database); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.repo = repository.NewPostgresPatientRepository(a.db, a.logger)
	default:
		if a.db, err = database.NewSQLiteDB(&a.cfg.Store.SQLite); err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.repo = repository.NewSQLitePatientRepository(a.db, a.logger)
	}
	return a.repo.EnsureSchema(ctx)
}

func (a *app) connectSinks(ctx context.Context) []telemetry.Observer {
	var observers []telemetry.Observer
	if a.cfg.RedisEnabled {
		client := redis.NewRedisClient(&a.cfg.Redis)
		if err := redis.Ping(ctx, client); err != nil {
			a.logger.Warn("Redis enabled but unreachable, telemetry stream disabled",
				zap.String("addr", a.cfg.Redis.Addr), zap.Error(err))
			_ = redis.Close(client)
		} else {
			a.redis = client
			observers = append(observers, telemetry.NewRedisStreamObserver(client, a.cfg.Telemetry.Stream, a.cfg.Telemetry.StreamMaxLen))
			a.logger.Info("Redis telemetry stream enabled", zap.String("stream", a.cfg.Telemetry.Stream))
		}
	}
	if a.cfg.MQTTEnabled {
		client, err := mqtt.NewClient(&a.cfg.MQTT, a.logger)
		if err != nil {
			a.logger.Warn("MQTT enabled but connection failed, broker telemetry disabled",
				zap.String("broker", a.cfg.MQTT.Broker), zap.Error(err))
		} else {
			a.mqtt = client
			observers = append(observers, telemetry.NewMQTTObserver(client, a.cfg.MQTTTopic))
			a.logger.Info("MQTT telemetry enabled", zap.String("topic", a.cfg.MQTTTopic))
		}
	}
	return observers
}

// Close releases connections; it is safe on a partially built app.
func (a *app) Close() error {
	var errs []error
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.redis != nil {
		errs = append(errs, redis.Close(a.redis))
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	return errors.Join(errs...)
}

func catalogPathLabel(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
