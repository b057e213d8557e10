package control

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/quangvu/fetchd/internal/cache"
	"github.com/quangvu/fetchd/internal/core/config"
	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/core/gate"
	"github.com/quangvu/fetchd/internal/fetch/classify"
	"github.com/quangvu/fetchd/internal/fetch/executor"
	"github.com/quangvu/fetchd/internal/fetch/metrics"
	"github.com/quangvu/fetchd/internal/fetch/plan"
	"github.com/quangvu/fetchd/internal/fetch/provider"
	"github.com/quangvu/fetchd/internal/fetch/retry"
	"github.com/quangvu/fetchd/internal/health"
	redisclient "github.com/quangvu/fetchd/internal/infra/redis"
	"github.com/quangvu/fetchd/internal/infra/storage/memory"
	"github.com/quangvu/fetchd/internal/infra/storage/postgres"
)

// Config holds the application configuration.
type Config struct {
	Port     int
	Fetch    config.FetchConfig
	Gate     config.GateConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// FetchResult is the upward consumer contract for a successful fetch.
// Either Cached is set (previously delivered media, re-servable via its
// handle) or FilePath points at a freshly fetched file the caller now owns.
type FetchResult struct {
	Cached    *domain.Delivery
	FilePath  string
	Metadata  *domain.Metadata
	Provider  domain.Provider
	MediaType domain.MediaType
}

// Service wires the retrieval engine together and manages its lifecycle.
type Service struct {
	cfg          Config
	registry     *provider.Registry
	planner      *plan.Planner
	exec         *executor.Executor
	engine       *retry.Engine
	gate         *gate.Gate
	cache        *cache.DeliveryCache
	ledger       Ledger
	db           *postgres.DB
	redisClient  *redisclient.Client
	healthServer *health.Server
	log          *slog.Logger
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg Config, ledger Ledger) (*Service, error) {
	log := slog.Default()
	if ledger == nil {
		ledger = NopLedger{}
	}

	// 1. Primary store (durable). Optional: without it the cache degrades
	// to the secondary store only.
	var db *postgres.DB
	var primary cache.Store
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		primary = postgres.NewDeliveryRepo(db)
		log.Info("Using PostgreSQL as primary delivery store")
	} else {
		log.Warn("No database configured, primary delivery store disabled")
	}

	// 2. Secondary store: Redis when reachable, in-process map otherwise.
	var redisClient *redisclient.Client
	var secondary cache.Store
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unreachable, falling back to in-process store", "error", err)
		}
	}
	if redisClient != nil {
		secondary = redisClient
		log.Info("Using Redis as secondary delivery store")
	} else {
		secondary = memory.NewStore()
		log.Info("Using in-process map as secondary delivery store")
	}

	// 3. Fetch pipeline.
	registry := provider.NewRegistry()
	planner := plan.NewPlanner(cfg.Fetch.Regions, cfg.Fetch.CookiesB64, log)
	exec := executor.New(cfg.Fetch.ToolPath, cfg.Fetch.MaxFileSizeMB, log)
	engine := retry.New(exec, classify.New(log), log)

	// 4. Admission control.
	g := gate.New(map[domain.OperationClass]int{
		domain.OpFetch:     cfg.Gate.MaxFetch,
		domain.OpTranslate: cfg.Gate.MaxTranslate,
	})

	// 5. Health server.
	var dbPinger, secondaryPinger health.Pinger
	if db != nil {
		dbPinger = db
	}
	if redisClient != nil {
		secondaryPinger = redisClient
	}
	monitor := health.NewMonitor(dbPinger, secondaryPinger, cfg.Fetch.ToolPath)
	healthServer := health.NewServer(monitor, cfg.Port)

	return &Service{
		cfg:          cfg,
		registry:     registry,
		planner:      planner,
		exec:         exec,
		engine:       engine,
		gate:         g,
		cache:        cache.New(primary, secondary, log),
		ledger:       ledger,
		db:           db,
		redisClient:  redisClient,
		healthServer: healthServer,
		log:          log,
	}, nil
}

// Start starts the service background components.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		if err := s.healthServer.Start(); err != nil {
			s.log.Error("Health server failed", "error", err)
		}
	}()

	if s.db != nil {
		s.db.StartMetricsCollector(ctx)
	}
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}
	return s.healthServer.Stop(ctx)
}

// Fetch retrieves media for a user: provider detection, concurrency slot,
// cache lookup, then the retry engine on a miss. Failures carry exactly one
// domain.ErrorKind, extractable with domain.KindOf.
func (s *Service) Fetch(ctx context.Context, url, userID string) (*FetchResult, error) {
	provID, ok := s.registry.Detect(url)
	if !ok {
		return nil, domain.NewClassifiedError(domain.ErrUnsupportedURL)
	}

	allowed, err := s.ledger.Check(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger check failed: %w", err)
	}
	if !allowed {
		return nil, ErrInsufficientCredits
	}

	release, err := s.gate.Acquire(ctx, domain.OpFetch, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	prov := s.registry.Get(provID)

	// Cache hit short-circuits the engine entirely.
	if d := s.cache.Lookup(ctx, url); d != nil {
		return &FetchResult{Cached: d, Provider: provID, MediaType: d.MediaType}, nil
	}

	if err := s.ledger.Debit(ctx, userID); err != nil {
		return nil, fmt.Errorf("ledger debit failed: %w", err)
	}

	result, err := s.runJob(ctx, url, prov)
	if err != nil {
		if refundErr := s.ledger.Refund(ctx, userID); refundErr != nil {
			s.log.Warn("Refund failed", "user", userID, "error", refundErr)
		}
		return nil, err
	}
	result.Provider = provID
	result.MediaType = prov.MediaType
	return result, nil
}

// runJob owns one working directory for its whole life: created here,
// removed on every exit path. The delivered file is moved out before
// cleanup; the caller owns it afterwards.
func (s *Service) runJob(ctx context.Context, url string, prov *provider.Provider) (*FetchResult, error) {
	jobID := uuid.NewString()
	workDir := filepath.Join(s.cfg.Fetch.WorkDir, "job-"+jobID)
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.log.Warn("Failed to remove working directory", "dir", workDir, "error", err)
		}
	}()

	timeout := s.cfg.Fetch.ShortFormTimeout
	if prov.LongForm {
		timeout = s.cfg.Fetch.LongFormTimeout
	}

	attempts := s.planner.Plan(url, prov, workDir)

	start := time.Now()
	res, err := s.engine.Run(ctx, prov.ID, attempts, workDir, timeout)
	metrics.FetchDuration.WithLabelValues(string(prov.ID)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	delivered, err := s.moveOut(res.FilePath, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to stage delivered file: %w", err)
	}

	return &FetchResult{
		FilePath: delivered,
		Metadata: metadataFromFilename(res.FilePath),
	}, nil
}

// moveOut relocates the output file to the delivered staging area so the
// working directory can be removed while the caller streams the file.
func (s *Service) moveOut(filePath, jobID string) (string, error) {
	dir := filepath.Join(s.cfg.Fetch.WorkDir, "delivered")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, jobID+filepath.Ext(filePath))
	if err := os.Rename(filePath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// metadataFromFilename recovers the media id from the output template
// (%(id)s.%(ext)s). Best effort only; the metadata probe gives richer data.
func metadataFromFilename(filePath string) *domain.Metadata {
	base := filepath.Base(filePath)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	if id == "" {
		return nil
	}
	return &domain.Metadata{ID: id}
}

// Probe returns media metadata without materializing a file, for preview and
// inline-result flows.
func (s *Service) Probe(ctx context.Context, url string) (*domain.Metadata, error) {
	if _, ok := s.registry.Detect(url); !ok {
		return nil, domain.NewClassifiedError(domain.ErrUnsupportedURL)
	}
	return s.exec.Probe(ctx, url, s.cfg.Fetch.MetadataTimeout)
}

// CachedDelivery returns the cached delivery for a URL, or nil.
func (s *Service) CachedDelivery(ctx context.Context, url string) *domain.Delivery {
	return s.cache.Lookup(ctx, url)
}

// RecordDelivery caches a completed delivery for future re-serving. Called
// by the delivery layer once the provider-issued handle is known.
func (s *Service) RecordDelivery(ctx context.Context, url string, d *domain.Delivery) {
	now := time.Now().UTC()
	if d.StoredAt.IsZero() {
		d.StoredAt = now
	}
	if d.LastAccessedAt.IsZero() {
		d.LastAccessedAt = now
	}
	if d.ExpiresAt.IsZero() {
		d.ExpiresAt = d.StoredAt.Add(domain.DeliveryTTL)
	}
	s.cache.Store(ctx, url, d)
}

// InvalidateDelivery evicts a cached delivery whose handle failed at
// re-delivery time.
func (s *Service) InvalidateDelivery(ctx context.Context, url string) {
	s.cache.Invalidate(ctx, url)
}

// WithSlot runs fn under a concurrency slot for the user, releasing the slot
// on every exit path.
func (s *Service) WithSlot(
	ctx context.Context,
	class domain.OperationClass,
	userID string,
	fn func(ctx context.Context) error,
) error {
	release, err := s.gate.Acquire(ctx, class, userID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// SlotStatus reports a user's slot usage for pre-emptive quota messaging.
func (s *Service) SlotStatus(class domain.OperationClass, userID string) (active, queued int) {
	return s.gate.Status(class, userID)
}
