package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/lmcalvo/cine-checkout/internal/booking"
	"github.com/lmcalvo/cine-checkout/internal/domain"
	"github.com/lmcalvo/cine-checkout/internal/occupancy"
	"github.com/lmcalvo/cine-checkout/internal/selection"
	appvalidator "github.com/lmcalvo/cine-checkout/internal/validator"
	"github.com/lmcalvo/cine-checkout/internal/vcs"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	bookingClient    domain.BookingClient
	occupancyStore   domain.OccupancyStore
	occupancyManager *occupancy.Manager
	occupancyPoller  *occupancy.Poller
	selections       *selection.Registry
}

type config struct {
	port int
	env  string

	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}

	booking struct {
		baseURL string
		wsURL   string
		timeout time.Duration
	}

	occupancy struct {
		staleness time.Duration
	}
}

func Run() error {
	var cfg config

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.redis.url, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.booking.baseURL, "booking-url", "", "Booking backend base URL")
	flag.StringVar(&cfg.booking.wsURL, "booking-ws-url", "", "Booking backend occupancy websocket URL")
	flag.DurationVar(&cfg.booking.timeout, "booking-timeout", 10*time.Second, "Booking backend request timeout")

	flag.DurationVar(&cfg.occupancy.staleness, "occupancy-staleness", 30*time.Second, "Occupancy cache staleness window")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	bookingClient := booking.NewClient(cfg.booking.baseURL, &http.Client{Timeout: cfg.booking.timeout}, logger)

	occupancyStore := occupancy.NewRedisStore(redisClient)
	occupancyManager := occupancy.NewManager(cfg.booking.wsURL, occupancyStore, logger)
	defer occupancyManager.Close()

	selections := selection.NewRegistry()
	defer selections.Close()

	app := &application{
		config:           cfg,
		logger:           logger,
		redis:            redisClient,
		validator:        appvalidator.NewValidator(),
		sessionManager:   newSessionManager(redisClient),
		bookingClient:    bookingClient,
		occupancyStore:   occupancyStore,
		occupancyManager: occupancyManager,
		occupancyPoller:  occupancy.NewPoller(bookingClient, occupancyStore, logger, cfg.occupancy.staleness),
		selections:       selections,
	}

	return app.run()
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Route("/checkout", func(r chi.Router) {
		r.Put("/movie-selection", app.PutMovieSelectionHandler)
		r.Put("/tickets", app.PutTicketsHandler)
	})

	r.Route("/showtimes/{showtimeID}/selection", func(r chi.Router) {
		r.Post("/", app.StartSelectionHandler)
		r.Get("/", app.GetSelectionHandler)
		r.Delete("/", app.AbandonSelectionHandler)
		r.Post("/toggle", app.ToggleSeatHandler)
		r.Post("/complete", app.CompleteSelectionHandler)
	})

	return r
}
