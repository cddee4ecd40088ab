package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"quiverbook/internal/archers"
	"quiverbook/internal/competitions"
	"quiverbook/internal/equipment"
	"quiverbook/internal/jwttoken"
	"quiverbook/internal/platform/config"
	"quiverbook/internal/platform/httpserver"
	"quiverbook/internal/platform/logger"
	"quiverbook/internal/platform/metrics"
	recordsHandler "quiverbook/internal/records/handler"
	recordsService "quiverbook/internal/records/service"
	"quiverbook/internal/rounds"
	"quiverbook/internal/scores"
	scoresHandler "quiverbook/internal/scores/handler"
	scoresService "quiverbook/internal/scores/service"
	"quiverbook/internal/staging"
	stagingHandler "quiverbook/internal/staging/handler"
	stagingMetrics "quiverbook/internal/staging/metrics"
	stagingService "quiverbook/internal/staging/service"
	httptransport "quiverbook/internal/transport/http"
	"quiverbook/pkg/platform/audit"
	auditKafka "quiverbook/pkg/platform/audit/kafka"
	auditPostgres "quiverbook/pkg/platform/audit/store/postgres"
	auditWorker "quiverbook/pkg/platform/audit/worker"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	// Without a DSN everything runs in memory: good for development, useless
	// for production since approved scores vanish on restart.
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return err
		}
		log.Info("connected to postgres")
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	var (
		stagingStore     staging.Store
		scoreStore       scores.Store
		archerStore      archers.Store
		roundStore       rounds.Store
		equipmentStore   equipment.Store
		competitionStore competitions.Store
		auditStore       audit.Store
	)
	if db != nil {
		stagingStore = staging.NewPostgres(db)
		scoreStore = scores.NewPostgres(db)
		archerStore = archers.NewPostgres(db)
		roundStore = rounds.NewPostgres(db)
		equipmentStore = equipment.NewPostgres(db)
		competitionStore = competitions.NewPostgres(db)
		auditStore = auditPostgres.New(db)
	} else {
		stagingStore = staging.NewInMemoryStore()
		scoreStore = scores.NewInMemoryStore()
		archerStore = archers.NewInMemoryStore()
		roundStore = rounds.NewInMemoryStore()
		equipmentStore = equipment.NewInMemoryStore()
		competitionStore = competitions.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	auditor := audit.NewPublisher(auditStore)
	httpMetrics := metrics.New()

	stagingOpts := []stagingService.Option{
		stagingService.WithAudit(auditor),
		stagingService.WithMetrics(stagingMetrics.New()),
		stagingService.WithLogger(log),
	}
	if db != nil {
		stagingOpts = append(stagingOpts, stagingService.WithTx(newStagingPostgresTx(db)))
	}

	stagingSvc, err := stagingService.New(stagingStore, scoreStore,
		archerStore, roundStore, equipmentStore, competitionStore, stagingOpts...)
	if err != nil {
		return err
	}
	scoresSvc, err := scoresService.New(scoreStore, scoresService.WithAudit(auditor))
	if err != nil {
		return err
	}
	recordsSvc, err := recordsService.New(scoreStore, archerStore, roundStore)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        httpMetrics,
		JWTValidator:   jwttoken.NewJWTServiceAdapter(jwtService),
		RequestTimeout: cfg.RequestTimeout,

		Staging: stagingHandler.New(stagingSvc, log),
		Scores:  scoresHandler.New(scoresSvc, log),
		Records: recordsHandler.New(recordsSvc, log),

		Archers:      archerStore,
		Rounds:       roundStore,
		Equipment:    equipmentStore,
		Competitions: competitionStore,
	})

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting quiverbook", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// The outbox worker only makes sense with durable storage and a broker.
	if db != nil && len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditKafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaPub.Close()

		worker := auditWorker.New(db, kafkaPub, log)
		g.Go(func() error {
			err := worker.Run(gCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		log.Info("audit outbox worker started", "brokers", cfg.KafkaBrokers, "topic", cfg.AuditTopic)
	}

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
