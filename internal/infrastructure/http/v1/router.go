package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comercio/internal/domain/attachments"
	"comercio/internal/domain/catalogs/branch"
	"comercio/internal/domain/catalogs/category"
	"comercio/internal/domain/catalogs/company"
	"comercio/internal/domain/catalogs/location"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/domain/catalogs/profile"
	"comercio/internal/domain/documents/returns"
	"comercio/internal/domain/documents/transaction"
	"comercio/internal/infrastructure/http/v1/handlers"
	"comercio/internal/infrastructure/http/v1/middleware"
	"comercio/internal/infrastructure/metrics"
	"comercio/internal/infrastructure/storage/postgres"
	"comercio/pkg/logger"
)

// RouterConfig holds the fully wired services for the HTTP API.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Metrics for request instrumentation (optional)
	Metrics *metrics.Metrics

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// TokenIssuer for login
	TokenIssuer handlers.TokenIssuer

	// Catalog services
	Departments    *location.DepartmentService
	Municipalities *location.MunicipalityService
	Companies      *company.Service
	Branches       *branch.Service
	Profiles       *profile.Service
	Categories     *category.Service
	Products       *product.Service

	// Document services
	Transactions *transaction.Service
	Returns      *returns.Service

	// Attachments
	Attachments *attachments.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerAttachmentRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.Profiles, cfg.TokenIssuer)

	public := rg.Group("/auth")

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(public, protected)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- DEPARTMENTS ---
	{
		handler := handlers.NewDepartmentHandler(baseHandler, cfg.Departments)
		group := catalogs.Group("/departments")
		RegisterCatalogRoutes(group, handler)
		group.GET("/dane/:code", handler.GetByDANECode)
	}

	// --- MUNICIPALITIES ---
	{
		handler := handlers.NewMunicipalityHandler(baseHandler, cfg.Municipalities)
		group := catalogs.Group("/municipalities")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-department/:departmentId", handler.ListByDepartment)
	}

	// --- COMPANIES ---
	{
		handler := handlers.NewCompanyHandler(baseHandler, cfg.Companies)
		group := catalogs.Group("/companies")
		RegisterCatalogRoutes(group, handler)
		group.GET("/tax-id/:taxId", handler.GetByTaxID)
	}

	// --- BRANCHES ---
	{
		handler := handlers.NewBranchHandler(baseHandler, cfg.Branches)
		group := catalogs.Group("/branches")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-company/:companyId", handler.ListByCompany)
	}

	// --- PROFILES ---
	{
		handler := handlers.NewProfileHandler(baseHandler, cfg.Profiles)
		group := catalogs.Group("/profiles")
		RegisterCatalogRoutes(group, handler)
		group.POST("/:id/password", middleware.RequireRole(string(profile.RoleAdmin)), handler.SetPassword)
		group.GET("/by-role/:role", handler.ListByRole)
	}

	// --- CATEGORIES ---
	{
		handler := handlers.NewCategoryHandler(baseHandler, cfg.Categories)
		group := catalogs.Group("/categories")
		RegisterCatalogRoutes(group, handler)
		group.GET("/:id/children", handler.ListChildren)
	}

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.Products)
		group := catalogs.Group("/products")
		RegisterCatalogRoutes(group, handler)
		group.GET("/low-stock", handler.LowStock)
		group.POST("/:id/adjust-stock", handler.AdjustStock)
		group.GET("/:id/availability", handler.Availability)
		group.GET("/:id/categories", handler.ListCategories)
		group.POST("/:id/categories", handler.AssignCategory)
		group.DELETE("/:id/categories/:categoryId", handler.UnassignCategory)
		group.POST("/:id/categories/:categoryId/primary", handler.SetPrimaryCategory)
		group.GET("/by-category/:categoryId", handler.ListByCategory)
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// --- TRANSACTIONS ---
	{
		handler := handlers.NewTransactionHandler(baseHandler, cfg.Transactions)
		group := docsGroup.Group("/transactions")
		group.GET("", handler.List)
		group.POST("", handler.Open)
		group.GET("/:id", handler.Get)
		group.POST("/:id/lines", handler.AddLine)
		group.DELETE("/:id/lines/:lineId", handler.RemoveLine)
		group.POST("/:id/discount", handler.SetDiscount)
		group.POST("/:id/finalize", handler.Finalize)
		group.POST("/:id/cancel", handler.Cancel)
		group.POST("/:id/void", handler.Void)
	}

	// --- RETURNS ---
	{
		handler := handlers.NewReturnHandler(baseHandler, cfg.Returns)
		group := docsGroup.Group("/returns")
		group.GET("", handler.List)
		group.POST("", handler.File)
		group.GET("/:id", handler.Get)
		group.POST("/:id/process", handler.Process)
		group.POST("/:id/reject", handler.Reject)
		group.POST("/:id/cancel", handler.Cancel)
		group.GET("/returnable/:lineId", handler.ReturnableQuantity)
	}
}

// registerAttachmentRoutes registers attachment endpoints.
func registerAttachmentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAttachmentHandler(baseHandler, cfg.Attachments)

	group := rg.Group("/attachments")
	group.POST("", handler.Attach)
	group.GET("/token/:token", handler.GetByToken)
	group.GET("/by-owner/:ownerType/:ownerId", handler.ListByOwner)
	group.DELETE("/:id", handler.Detach)
}
