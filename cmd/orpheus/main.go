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

	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/soundscroll/orpheus/internal/catalog/audius"
	"github.com/soundscroll/orpheus/internal/feed"
	"github.com/soundscroll/orpheus/internal/identity"
	"github.com/soundscroll/orpheus/internal/moments"
	"github.com/soundscroll/orpheus/internal/neighbors"
	"github.com/soundscroll/orpheus/internal/server"
	"github.com/soundscroll/orpheus/internal/storage/postgres"
	"github.com/soundscroll/orpheus/internal/trackcache"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host           string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port           int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on"`
	RequestTimeout time.Duration `long:"http.request_timeout" env:"HTTP_REQUEST_TIMEOUT" default:"45s" description:"request processing timeout"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`

	AudiusDiscoveryURL string        `long:"audius.discovery_url" env:"AUDIUS_DISCOVERY_URL" default:"https://api.audius.co" description:"audius discovery endpoint"`
	AudiusTimeout      time.Duration `long:"audius.timeout" env:"AUDIUS_TIMEOUT" default:"10s" description:"timeout for requests to audius"`

	FeedPolicy       string        `long:"feed.policy" env:"FEED_POLICY" default:"popularity" description:"default ranking policy" choice:"recency" choice:"popularity" choice:"neighbors"`
	FeedPageLimit    uint16        `long:"feed.page_limit" env:"FEED_PAGE_LIMIT" default:"80" description:"feed page size"`
	MinFeedItems     int           `long:"feed.min_items" env:"FEED_MIN_ITEMS" default:"30" description:"feed supply floor"`
	DuplicateWindow  time.Duration `long:"feed.duplicate_window" env:"FEED_DUPLICATE_WINDOW" default:"6h" description:"span during which a track is not reused by generation"`
	NeighborLookback time.Duration `long:"feed.neighbor_lookback" env:"FEED_NEIGHBOR_LOOKBACK" default:"720h" description:"engagement window for neighbor discovery"`

	JWTSecret string `long:"jwt.secret" env:"JWT_SECRET" description:"secret for bearer token verification"`

	LogLevel string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Orpheus"
	parser.LongDescription = "Orpheus music-discovery feed service"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	logrus.Info("service started")
	logrus.Infof("%+v", opts)

	db := mustGetDB()

	s := postgres.New(db)
	c := audius.New(opts.AudiusDiscoveryURL, opts.AudiusTimeout)
	tracks := trackcache.New(s, c)

	cfg := feed.DefaultConfig()
	cfg.DefaultPolicy = feed.Policy(opts.FeedPolicy)
	cfg.PageLimit = opts.FeedPageLimit
	cfg.MinFeedItems = opts.MinFeedItems

	f := feed.New(
		s, c, tracks,
		neighbors.New(s, neighbors.WithLookback(opts.NeighborLookback)),
		moments.New(s, c, tracks,
			moments.WithMinFeedItems(opts.MinFeedItems),
			moments.WithDuplicateWindow(opts.DuplicateWindow),
		),
		cfg,
	)

	r := chi.NewMux()
	server.SetupRouter(f, identity.NewJWT([]byte(opts.JWTSecret)), r, opts.RequestTimeout)

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	ctx, cancel := context.WithCancel(context.Background())

	gr, _ := errgroup.WithContext(ctx)
	gr.Go(srv.ListenAndServe)
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		select {
		case s := <-sigs:
			logrus.Infof("terminating by %s signal", s)
		case <-ctx.Done():
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("failed to shutdown server gracefully")
		}

		return errTerminated
	})

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}
