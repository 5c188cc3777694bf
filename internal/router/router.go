package router

import (
	"time"

	"naxospos/internal/config"
	"naxospos/internal/handler"
	"naxospos/internal/infra"
	"naxospos/internal/middleware"
	"naxospos/internal/model"
	"naxospos/internal/repository"
	"naxospos/internal/service"
	"naxospos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// A nil dispatcher disables receipt and shift report jobs.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	saleSvc := service.NewSaleService(saleRepo, catalogRepo, dispatcher)
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, catalogRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	staff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleCashier)
	anyone := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleCashier, model.RoleViewer)
	supervisors := middleware.RequireRole(model.RoleAdmin, model.RoleManager)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", staff, salesH.OpenSale)
			sales.POST("/full", staff, salesH.CreateFullSale)
			sales.GET("", anyone, salesH.ListSales)
			sales.GET("/:id", anyone, salesH.GetSale)
			sales.POST("/:id/items", staff, salesH.AddItem)
			sales.PUT("/items/:itemId", staff, salesH.UpdateItem)
			sales.DELETE("/items/:itemId", staff, salesH.RemoveItem)
			sales.POST("/:id/payments", staff, salesH.AddPayment)
			sales.POST("/:id/finalize", staff, salesH.FinalizeSale)
			sales.POST("/:id/cancel", staff, salesH.CancelSale)
			sales.DELETE("/:id", supervisors, salesH.DeleteSale)
		}

		shifts := v1.Group("/shifts")
		{
			shifts.POST("", staff, shiftsH.OpenShift)
			shifts.GET("", supervisors, shiftsH.ShiftHistory)
			shifts.GET("/active/:locationId", anyone, shiftsH.GetActiveShift)
			shifts.GET("/:id", anyone, shiftsH.GetShift)
			shifts.PUT("/:id/close", staff, shiftsH.CloseShift)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
