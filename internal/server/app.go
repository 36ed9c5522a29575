// Package server wires the TeenBudget account service together: storage,
// the pending signup store, mail delivery, the account flows and the HTTP
// and gRPC listeners, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Velislav710/TeenBudget-sub001/internal/logging"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/auth"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/config"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/i18n"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/mail"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/password"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/pending"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/repositories/repomanager"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/services"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/telemetry"

	gs "github.com/Velislav710/TeenBudget-sub001/internal/server/grpc"
	hs "github.com/Velislav710/TeenBudget-sub001/internal/server/http"
)

const serviceName = "teenbudget-auth"

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sweeper  *pending.Sweeper
	http     *hs.Server
	grpc     *gs.GRPCServer
	closers  []func() error
	shutdown telemetry.ShutdownFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	shutdown, err := telemetry.Setup(ctx, serviceName, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	store, sweeper, closeStore, err := buildPendingStore(ctx, c, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	mailer, err := buildMailer(ctx, c, logger)
	if err != nil {
		db.Close()
		_ = closeStore()
		return nil, err
	}

	hasher := password.NewBcryptHasher(c.BcryptCost)
	codec := auth.NewCodec([]byte(c.SecretKey))

	signup := services.NewSignupService(db, rm, store, hasher, mailer, c, logger)
	session := services.NewSessionService(db, rm, codec, hasher, c, logger)
	reset := services.NewResetService(db, rm, codec, hasher, mailer, c, logger)

	httpServer := hs.NewServer(hs.Options{
		Address:         c.EndpointAddrHTTP,
		RateLimitMax:    c.AuthRateLimitMax,
		RateLimitWindow: c.AuthRateLimitWindow,
	}, logger, i18n.New(), signup, session, reset)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sweeper:  sweeper,
		http:     httpServer,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		closers:  []func() error{closeStore, db.Close},
		shutdown: shutdown,
	}, nil
}

// buildPendingStore returns the configured store, a sweeper when the store
// needs explicit eviction, and a close function.
func buildPendingStore(ctx context.Context, c *config.Config, logger logging.Logger) (pending.Store, *pending.Sweeper, func() error, error) {
	switch c.PendingStore {
	case config.PendingStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		store := pending.NewRedisStore(client, c.SignupCodeTTL, c.PendingRetention)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("redis init error: %w", err)
		}
		return store, nil, store.Close, nil
	default:
		store := pending.NewMemoryStore(c.SignupCodeTTL)
		sweeper := pending.NewSweeper(store, c.PendingSweepInterval, logger)
		return store, sweeper, func() error { return nil }, nil
	}
}

func buildMailer(ctx context.Context, c *config.Config, logger logging.Logger) (mail.Sender, error) {
	if c.MailBackend != config.MailBackendSES {
		return mail.NewLogSender(logger), nil
	}
	sender, err := mail.NewSESSender(ctx, mail.SESConfig{
		Region:       c.SESRegion,
		AccessKey:    c.SESAccessKey,
		SecretKey:    c.SESSecretKey,
		BaseEndpoint: c.SESBaseEndpoint,
		From:         c.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	return sender, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runComponent runs fn and cancels the whole app when it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	if app.sweeper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweeper.Run(ctx)
		}()
	}

	app.grpc.SetServing(true)

	wg.Wait()

	app.close()
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	if err := app.shutdown(ctx); err != nil {
		app.logger.Warn(ctx, "telemetry shutdown failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
