package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"easy_promos/internal/controller"
	"easy_promos/internal/middleware"
	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/internal/router"
	"easy_promos/internal/service"
	"easy_promos/internal/task"
	"easy_promos/pkg/config"
	"easy_promos/pkg/database"
	"easy_promos/pkg/logger"
	"easy_promos/pkg/metrics"
	"easy_promos/pkg/shopify"
)

// @title Easy Promos API
// @version 1.0
// @description Shopify 促销活动后台接口
// @BasePath /
// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化日志
	zapLogger, err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: "easy-promos",
	})
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// 3. 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		zapLogger.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 4. 初始化依赖
	deps, err := initDependencies(cfg, db)
	if err != nil {
		zapLogger.Fatal("依赖初始化失败", zap.Error(err))
	}

	// 5. 启动定时任务
	storeTask := initTasks(cfg, deps, zapLogger)

	// 6. 初始化路由
	r := router.SetupRouter(deps.Controllers, router.Options{
		Session: middleware.SessionConfig{
			APIKey:    cfg.Shopify.APIKey,
			APISecret: cfg.Shopify.APISecret,
		},
		Metrics:     deps.Metrics,
		Limiter:     middleware.NewSyncRateLimiter(),
		EnableDocs:  !cfg.IsProduction(),
		Environment: cfg.Server.Env,
	})

	// 7. 启动服务
	startServer(cfg, r, zapLogger, storeTask)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Metrics     *metrics.Metrics
}

// Repositories 仓库集合
type Repositories struct {
	Store        repository.StoreRepository
	Session      repository.SessionRepository
	Promotion    repository.PromotionRepository
	PromotionUow *repository.PromotionUnitOfWork
	DiscountCode repository.DiscountCodeRepository
}

// Services 服务集合
type Services struct {
	Store     *service.StoreService
	Promotion *service.PromotionService
	Discount  *service.DiscountService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库并注册审计回调
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.InitDB(database.Options{
		DSN:             cfg.Database.DSN(),
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	},
		// Store
		&model.Store{}, &model.Session{},
		// Product
		&model.Product{}, &model.ProductVariant{},
		// Promotion
		&model.Promotion{}, &model.PromotionProduct{},
		// Discount
		&model.DiscountCode{},
	)
	if err != nil {
		return nil, err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, err
	}
	return db, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 基础设施 --------
	m := metrics.New("easy_promos")
	shopifyClient := shopify.NewClient(cfg.Shopify.APIKey, cfg.Shopify.APISecret, cfg.Shopify.APIVersion)

	// -------- 业务服务 --------
	services := &Services{}
	services.Store = service.NewStoreService(repos.Store, repos.Session, shopifyClient, m)
	services.Promotion = service.NewPromotionService(
		repos.PromotionUow, repos.Promotion,
		service.PricingPolicy{
			DiscountRate:     cfg.Pricing.DiscountRate,
			PlaceholderTitle: cfg.Pricing.PlaceholderTitle,
			PlaceholderPrice: cfg.Pricing.PlaceholderPrice,
		},
		m,
	)
	services.Discount = service.NewDiscountService(
		repos.DiscountCode, services.Store, shopifyClient,
		service.DiscountSettings{
			Rate:            cfg.Pricing.DiscountRate,
			MinimumSubtotal: cfg.Discount.MinimumSubtotal,
			UsageLimit:      cfg.Discount.UsageLimit,
			ValidDays:       cfg.Discount.ValidDays,
		},
		m,
	)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Promotion: controller.NewPromotionController(services.Promotion, services.Store),
		Store:     controller.NewStoreController(services.Store),
		Discount:  controller.NewDiscountController(services.Discount, services.Store),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Metrics:     m,
	}, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Store:        repository.NewStoreRepository(db),
		Session:      repository.NewSessionRepository(db),
		Promotion:    repository.NewPromotionRepository(db),
		PromotionUow: repository.NewPromotionUnitOfWork(db),
		DiscountCode: repository.NewDiscountCodeRepository(db),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务，未启用时返回 nil
func initTasks(cfg *config.Config, deps *Dependencies, l *zap.Logger) *task.StoreSyncTask {
	if !cfg.Task.StoreSyncEnabled {
		l.Info("店铺同步任务未启用")
		return nil
	}

	storeTask := task.NewStoreSyncTask(deps.Services.Store, l)
	if err := storeTask.Start(cfg.Task.StoreSyncSpec); err != nil {
		l.Fatal("定时任务启动失败", zap.Error(err))
	}
	return storeTask
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(cfg *config.Config, r *gin.Engine, l *zap.Logger, storeTask *task.StoreSyncTask) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		l.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if storeTask != nil {
		storeTask.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal("服务强制关闭", zap.Error(err))
	}

	l.Info("服务已退出")
}
