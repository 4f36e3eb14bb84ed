package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/eventlog"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/metrics"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("quizd failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run serves until ctx is done. Everything it opens is closed before it
// returns.
func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	// --- Store ---
	store, dbh, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closeStore()

	// --- Grading ---
	metrics.Init()
	absTol, relTol := grading.ParseTolerance(cfg.NumericTolerance)
	grader := grading.NewDefaultGrader(
		grading.WithPartialMulti(cfg.PartialMulti),
		grading.WithMaxEditDistance(cfg.MaxEditDistance),
		grading.WithDefaultPoints(cfg.DefaultPoints),
		grading.WithNumericTolerance(absTol, relTol),
	)
	var recOpts []question.ReconstructOption
	if cfg.LegacyTrueFalse {
		recOpts = append(recOpts, question.WithLegacyTrueFalse())
	}
	svcOpts := []exam.ServiceOption{
		exam.WithReconstructOptions(recOpts...),
		exam.WithGradeObserver(metrics.ObserveGrade),
	}
	deps := api.Deps{Grader: grader, ReconstructOptions: recOpts}
	if dbh != nil {
		events := eventlog.NewRepo(dbh)
		svcOpts = append(svcOpts, exam.WithEventSink(events))
		deps.Events = events
	}
	svc := exam.NewService(store, grader, log.With("component", "exam"), svcOpts...)
	deps.Service = svc

	if cfg.BankPath != "" {
		e, err := bank.Load(cfg.BankPath)
		if err != nil {
			return fmt.Errorf("load bank %s: %w", cfg.BankPath, err)
		}
		if _, err := svc.PutExam(ctx, e); err != nil {
			return fmt.Errorf("seed bank %s: %w", cfg.BankPath, err)
		}
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: cfg.Mode == config.ModeOnline,
		MaxAge:           300,
	}))

	api.Routes(r, deps)
	r.Handle("/metrics", metrics.Handler())

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	log.Info("quizd listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "store", cfg.Store)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("quizd stopped")
	return nil
}

// openStore returns the configured store. The *sql.DB is nil unless the store
// is SQL backed.
func openStore(ctx context.Context, cfg config.Config) (exam.Store, *sql.DB, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return exam.NewInMemoryStore(), nil, func() {}, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		return exam.NewRedisStore(client), nil, func() { client.Close() }, nil
	default:
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		dbh, err := db.Open(openCtx, db.Driver(cfg.Store), cfg.DBDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return exam.NewSQLStore(dbh), dbh, func() { dbh.Close() }, nil
	}
}
