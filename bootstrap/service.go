// Package bootstrap wires the delivery fee service together: config,
// logging, telemetry, provider clients, and the HTTP surface.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/platterhq/delivery-shared/clients"
	"github.com/platterhq/delivery-shared/config"
	"github.com/platterhq/delivery-shared/delivery"
	"github.com/platterhq/delivery-shared/geo"
	"github.com/platterhq/delivery-shared/health"
	pkghttp "github.com/platterhq/delivery-shared/http"
	"github.com/platterhq/delivery-shared/logging"
	"github.com/platterhq/delivery-shared/maps"
	"github.com/platterhq/delivery-shared/telemetry"
)

// Service holds all initialized components of the fee service.
type Service struct {
	Config    *config.Config
	Logger    *logging.Logger
	Telemetry *telemetry.AzureTelemetry
	Redis     *redis.Client

	Primary   *maps.Client
	Secondary *maps.NominatimClient
	Geocoder  *maps.GeocoderChain
	Distance  *maps.DistanceCalculator

	Zones    *clients.ZonesClient
	Branches *clients.BranchClient

	Resolver *delivery.Resolver
	Health   *health.Checker
}

// Options configures optional subsystems.
type Options struct {
	// UseRedis enables the Redis-backed maps cache and rate limiter.
	// When false an in-memory cache is used instead.
	UseRedis bool

	// UseTelemetry enables OTLP trace and metric export.
	UseTelemetry bool
}

// DefaultOptions returns options suitable for production.
func DefaultOptions() Options {
	return Options{
		UseRedis:     true,
		UseTelemetry: true,
	}
}

// Initialize sets up the service from configuration. Key Vault supplies
// secrets in production, environment variables in development.
func Initialize(ctx context.Context, serviceName string, opts Options) (*Service, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel).WithService(serviceName)
	logger.Info("starting service", "environment", cfg.Environment, "version", cfg.Version)

	svc := &Service{
		Config: cfg,
		Logger: logger,
	}

	if opts.UseTelemetry {
		tel, err := telemetry.InitFromEnv(ctx)
		if err != nil {
			logger.Warn("telemetry init failed, continuing without export", "error", err)
		} else {
			svc.Telemetry = tel
		}
	}

	var cache maps.Cache
	var limiter maps.RateLimiter = maps.NewNoopRateLimiter()
	if opts.UseRedis && cfg.RedisHost != "" {
		svc.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisHost,
			Password: cfg.RedisPassword,
		})
		if err := svc.Redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, using in-memory cache", "error", err)
			svc.Redis = nil
			cache = maps.NewInMemoryCache()
		} else {
			cache = maps.NewRedisCache(svc.Redis, "")
			limiter = maps.NewRedisRateLimiter(svc.Redis, nil)
		}
	} else {
		cache = maps.NewInMemoryCache()
	}

	primaryConfig := maps.DefaultConfig(cfg.MapsAPIKey)
	primaryConfig.Timeout = cfg.PrimaryTimeout
	svc.Primary = maps.NewClient(primaryConfig, logger, nil, cache, limiter)

	svc.Secondary = maps.NewNominatimClient(&maps.NominatimConfig{
		BaseURL: cfg.NominatimBaseURL,
		Timeout: cfg.SecondaryTimeout,
	}, logger)

	var geocodeMetrics *telemetry.GeocodeMetrics
	var feeMetrics *telemetry.FeeMetrics
	if svc.Telemetry != nil {
		geocodeMetrics = svc.Telemetry.GeocodeMetrics()
		feeMetrics = svc.Telemetry.FeeMetrics()
	}

	svc.Geocoder = maps.NewGeocoderChain(svc.Primary, svc.Secondary, logger, geocodeMetrics)
	svc.Distance = maps.NewDistanceCalculator(svc.Primary)

	svc.Zones = clients.NewZonesClient(clients.DefaultZonesClientConfig(cfg.ZoneServiceURL))
	svc.Branches = clients.NewBranchClient(clients.DefaultBranchClientConfig(cfg.BranchServiceURL))

	audit := logging.NewAuditLogger(serviceName, cfg.Environment)
	svc.Resolver = delivery.NewResolver(
		svc.Geocoder,
		svc.Distance,
		svc.Zones,
		svc.Branches,
		delivery.ResolverConfig{
			DefaultBranchLocation: geo.Point{Lat: cfg.DefaultBranchLat, Lng: cfg.DefaultBranchLng},
			StaticDefaultFee:      cfg.StaticDefaultFee,
		},
		logger,
		audit,
		feeMetrics,
	)

	svc.Health = buildHealthChecker(svc)

	if !cfg.HasPrimaryCredentials() {
		logger.Warn("no primary maps credentials, geocoding runs on secondary only and distance is unavailable")
	}

	return svc, nil
}

// MustInitialize initializes the service and panics on error.
func MustInitialize(ctx context.Context, serviceName string, opts Options) *Service {
	svc, err := Initialize(ctx, serviceName, opts)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize service: %v", err))
	}
	return svc
}

// Router builds the service's HTTP routes with the standard middleware
// stack.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(pkghttp.RequestID)
	r.Use(pkghttp.RealIP)
	r.Use(pkghttp.Recoverer(s.Logger))
	r.Use(pkghttp.Logger(s.Logger))
	r.Use(pkghttp.SecurityHeaders)
	r.Use(pkghttp.Timeout(30 * time.Second))
	if s.Telemetry != nil {
		r.Use(telemetry.TracingMiddleware(s.Telemetry.Tracer()))
		r.Use(telemetry.MetricsMiddleware(s.Telemetry.HTTPMetrics()))
	}

	r.Get("/health/live", s.Health.LivenessHandler())
	r.Get("/health/ready", s.Health.ReadinessHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/delivery", delivery.NewHandler(s.Resolver).Routes())
	})

	return r
}

// Run serves HTTP until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	server := pkghttp.NewServer(pkghttp.ServerConfig{
		Port:         s.Config.Port,
		ReadTimeout:  s.Config.ReadTimeout,
		WriteTimeout: s.Config.WriteTimeout,
		IdleTimeout:  s.Config.IdleTimeout,
	}, s.Router(), s.Logger)

	return server.Run(ctx)
}

// Close cleans up all resources.
func (s *Service) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Telemetry.Shutdown(ctx)
	}
}

// buildHealthChecker registers the service's dependency checks.
func buildHealthChecker(s *Service) *health.Checker {
	checker := health.NewChecker(s.Config.Version)

	if s.Redis != nil {
		checker.AddCheck("redis", health.RedisCheck(redisPinger{s.Redis}, 2*time.Second), false)
	}
	checker.AddCheck("primary-geocoder", health.PrimaryGeocoderCheck(s.Primary), false)

	sc := health.NewServiceChecker(2 * time.Second)
	sc.AddService("zone-service", s.Config.ZoneServiceURL+"/health")
	sc.AddService("branch-service", s.Config.BranchServiceURL+"/health")
	checker.AddCheck("upstreams", sc.CheckFunc(), false)

	return checker
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
