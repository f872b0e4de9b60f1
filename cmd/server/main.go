// Package main is the entry point for the comercio API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comercio/internal/config"
	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain/attachments"
	"comercio/internal/domain/catalogs/branch"
	"comercio/internal/domain/catalogs/category"
	"comercio/internal/domain/catalogs/company"
	"comercio/internal/domain/catalogs/location"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/domain/catalogs/profile"
	"comercio/internal/domain/documents/returns"
	"comercio/internal/domain/documents/transaction"
	"comercio/internal/domain/pricing"
	"comercio/internal/infrastructure/cache"
	v1 "comercio/internal/infrastructure/http/v1"
	"comercio/internal/infrastructure/metrics"
	"comercio/internal/infrastructure/security"
	"comercio/internal/infrastructure/storage/postgres"
	"comercio/internal/infrastructure/storage/postgres/catalog_repo"
	"comercio/internal/infrastructure/storage/postgres/document_repo"
	"comercio/pkg/logger"
	"comercio/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting comercio server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Availability cache ---
	var store cache.Cache = cache.NewNoop()
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warnw("redis unavailable, availability cache disabled", "error", err)
		} else {
			store = redisCache
			defer redisCache.Close()
			log.Infow("redis cache enabled", "addr", cfg.Redis.Addr)
		}
	}
	stockCache := cache.NewStockCache(store, cfg.Redis.StockTTL)

	// --- Repositories ---
	departmentRepo := catalog_repo.NewDepartmentRepo(txManager)
	municipalityRepo := catalog_repo.NewMunicipalityRepo(txManager)
	companyRepo := catalog_repo.NewCompanyRepo(txManager)
	branchRepo := catalog_repo.NewBranchRepo(txManager)
	profileRepo := catalog_repo.NewProfileRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	linkRepo := catalog_repo.NewProductLinkRepo(txManager, productRepo)
	attachmentRepo := catalog_repo.NewAttachmentRepo(txManager)
	transactionRepo := document_repo.NewTransactionRepo(txManager)
	returnRepo := document_repo.NewReturnRepo(txManager)

	// Numbers are consumed inside document transactions, so the
	// numerator queries through the transaction manager.
	numbers := numerator.New(txManager)

	// --- Pricing policy ---
	var pricingPolicy pricing.Policy
	if cfg.Pricing.Rule != "" {
		pricingPolicy, err = pricing.NewCELPolicy(cfg.Pricing.Rule)
		if err != nil {
			log.Fatalw("failed to compile pricing rule", "error", err)
		}
		log.Info("pricing policy: CEL rule")
	} else {
		pricingPolicy = pricing.NewFixedMarkup(types.NewMoney(cfg.Pricing.MarkupRate))
		log.Infow("pricing policy: fixed markup", "rate", cfg.Pricing.MarkupRate)
	}

	// --- Catalog services ---
	departmentService := location.NewDepartmentService(departmentRepo, municipalityRepo, txManager)
	municipalityService := location.NewMunicipalityService(municipalityRepo, departmentRepo, txManager)
	companyService := company.NewService(companyRepo, branchRepo, txManager)
	branchService := branch.NewService(branchRepo, companyRepo, municipalityRepo, txManager)
	profileService := profile.NewService(profileRepo, branchService, txManager)
	categoryService := category.NewService(categoryRepo, txManager)
	productService := product.NewService(productRepo, linkRepo, categoryRepo, transactionRepo, stockCache, txManager)

	// --- Document services ---
	transactionService := transaction.NewService(
		transactionRepo,
		productRepo,
		branchRepo,
		profileService,
		returnRepo,
		pricingPolicy,
		transaction.NewNumbering(numbers),
		txManager,
		auditService,
	)
	returnService := returns.NewService(
		returnRepo,
		transactionRepo,
		productRepo,
		profileService,
		numbers,
		txManager,
		auditService,
	)

	// --- Attachments ---
	registry := attachments.NewOwnerRegistry()
	registry.Register(entity.OwnerProduct, productRepo.Exists)
	registry.Register(entity.OwnerCategory, categoryRepo.Exists)
	registry.Register(entity.OwnerCompany, companyRepo.Exists)
	registry.Register(entity.OwnerBranch, branchRepo.Exists)
	registry.Register(entity.OwnerProfile, profileRepo.Exists)
	registry.Register(entity.OwnerTransaction, documentChecker(transactionRepo.GetByID))
	registry.Register(entity.OwnerReturn, documentChecker(returnRepo.GetByID))
	attachmentService := attachments.NewService(attachmentRepo, registry, txManager)

	// Deleting an owner cascades to its attachments. Documents keep
	// theirs: void and cancel change state, the row stays.
	detachCompany := attachmentService.CascadeDelete(entity.OwnerCompany)
	companyService.Hooks().OnAfterDelete(func(ctx context.Context, c *company.Company) error {
		return detachCompany(ctx, c.ID)
	})
	detachBranch := attachmentService.CascadeDelete(entity.OwnerBranch)
	branchService.Hooks().OnAfterDelete(func(ctx context.Context, b *branch.Branch) error {
		return detachBranch(ctx, b.ID)
	})
	detachProfile := attachmentService.CascadeDelete(entity.OwnerProfile)
	profileService.Hooks().OnAfterDelete(func(ctx context.Context, p *profile.Profile) error {
		return detachProfile(ctx, p.ID)
	})
	detachCategory := attachmentService.CascadeDelete(entity.OwnerCategory)
	categoryService.Hooks().OnAfterDelete(func(ctx context.Context, c *category.Category) error {
		return detachCategory(ctx, c.ID)
	})
	detachProduct := attachmentService.CascadeDelete(entity.OwnerProduct)
	productService.Hooks().OnAfterDelete(func(ctx context.Context, p *product.Product) error {
		return detachProduct(ctx, p.ID)
	})

	// --- JWT ---
	jwtManager := security.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	// --- Metrics ---
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Prefix)
		go trackPoolStats(m, pool)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		Metrics:        m,
		JWTValidator:   jwtManager,
		TokenIssuer:    jwtManager,
		Departments:    departmentService,
		Municipalities: municipalityService,
		Companies:      companyService,
		Branches:       branchService,
		Profiles:       profileService,
		Categories:     categoryService,
		Products:       productService,
		Transactions:   transactionService,
		Returns:        returnService,
		Attachments:    attachmentService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// documentChecker adapts a document GetByID into an owner existence
// check for the attachment registry.
func documentChecker[T any](get func(ctx context.Context, docID id.ID) (T, error)) attachments.OwnerChecker {
	return func(ctx context.Context, ownerID id.ID) (bool, error) {
		_, err := get(ctx, ownerID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
}

// trackPoolStats feeds database pool gauges.
func trackPoolStats(m *metrics.Metrics, pool *postgres.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		stats := postgres.GetPoolStats(pool.Unwrap())
		m.DBPoolAcquired.Set(float64(stats.AcquiredConns))
		m.DBPoolIdle.Set(float64(stats.IdleConns))
	}
}
