package service

import (
	"context"
	"time"

	uponor "uponor_bridge"
	"uponor_bridge/internal/logger"
	"uponor_bridge/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Telemetry is the read API over the latest normalized snapshot.
type Telemetry interface {
	GetThermostatData(id string) map[string]any
	GetSystemData() map[string]any
	ListThermostatIDs() []string
	GetCustomName(id string) string
	IsAvailable() bool
	Snapshot() (uponor.Snapshot, bool)
	Subscribe() (string, <-chan struct{})
	Unsubscribe(id string)
}

// Control exposes single-variable writes to the controller.
type Control interface {
	SetVariable(ctx context.Context, name, value string) error
}

// Poller drives the poll cycle. Stop via context cancellation in main()
// for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
	RefreshNow(ctx context.Context) error
}

// JNAPClient is the protocol client the coordinator polls through. The
// concrete implementation lives in internal/jnap.
type JNAPClient interface {
	DiscoverVariables(ctx context.Context) ([]string, error)
	GetAttributes(ctx context.Context, names []string) (map[string]string, error)
	SetAttribute(ctx context.Context, name, value string) error
	Close() error
}

// Config carries the tunables the services need. Thresholds default when
// left zero so a sparse config file still yields a working service.
type Config struct {
	Units              TemperatureUnits
	StalenessThreshold time.Duration // availability window, default 5m
	FatalWindow        time.Duration // failure escalation window, default 10m
	SigningKey         string        // JWT signing key for the write API
}

const (
	defaultStalenessThreshold = 5 * time.Minute
	defaultFatalWindow        = 10 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.Units == "" {
		c.Units = UnitsFahrenheitX10
	}
	if c.StalenessThreshold <= 0 {
		c.StalenessThreshold = defaultStalenessThreshold
	}
	if c.FatalWindow <= 0 {
		c.FatalWindow = defaultFatalWindow
	}
	return c
}

// Service aggregates all sub-services behind their interfaces.
type Service struct {
	Telemetry
	Control
	Poller
	Authorization
}

// NewService wires the repository layer, the protocol client, and the
// config into concrete services. The coordinator serves both the Telemetry
// and Poller roles: it owns the availability clocks and the published
// snapshot every read goes through.
func NewService(repos *repository.Repository, client JNAPClient, cfg Config, log *logger.Logger) *Service {
	cfg = cfg.withDefaults()
	coordinator := NewCoordinatorService(client, repos.Snapshots, repos.Names, cfg, log)
	return &Service{
		Telemetry:     coordinator,
		Poller:        coordinator,
		Control:       NewControlService(client, log),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
