package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uponor_bridge/internal/handlers"
	"uponor_bridge/internal/jnap"
	"uponor_bridge/internal/logger"
	"uponor_bridge/internal/metrics"
	"uponor_bridge/internal/repository"
	"uponor_bridge/internal/repository/db"
	"uponor_bridge/internal/server"
	"uponor_bridge/internal/service"

	"github.com/spf13/viper"
)

const defaultPollInterval = 30 * time.Second

// @title           Uponor Bridge API
// @version         1.0
// @description     Polls an Uponor X-265 controller over JNAP and serves normalized climate data.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))
	defer logger.Flush()

	// open the warm-start cache
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// protocol client for the controller
	client := jnap.NewClient(
		viper.GetString("controller.host"),
		viper.GetDuration("controller.timeout"),
	)
	defer func() { _ = client.Close() }()

	// wire dependencies
	repos := repository.NewRepository(database)
	services := service.NewService(repos, client, serviceConfig(), log)
	apiHandler := handlers.NewHandler(services, log)

	metrics.MustRegister()

	// context for the poll loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Run(ctx, pollInterval())

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func serviceConfig() service.Config {
	return service.Config{
		Units:              service.TemperatureUnits(viper.GetString("controller.units")),
		StalenessThreshold: viper.GetDuration("availability.staleness"),
		FatalWindow:        viper.GetDuration("poll.fatal_window"),
		SigningKey:         viper.GetString("auth.signing_key"),
	}
}

func pollInterval() time.Duration {
	if d := viper.GetDuration("poll.interval"); d > 0 {
		return d
	}
	return defaultPollInterval
}

// openDB initializes the SQLite cache using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "bridge.db")
		dbPath = "bridge.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")

	// stop the poll loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
