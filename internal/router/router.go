package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"easy_promos/internal/controller"
	"easy_promos/internal/middleware"
	"easy_promos/pkg/logger"
	"easy_promos/pkg/metrics"

	_ "easy_promos/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Promotion *controller.PromotionController
	Store     *controller.StoreController
	Discount  *controller.DiscountController
}

// Options 路由级依赖
type Options struct {
	Session     middleware.SessionConfig
	Metrics     *metrics.Metrics // 为 nil 时不挂 /metrics
	Limiter     *middleware.SyncRateLimiter
	EnableDocs  bool
	Environment string
}

// SetupRouter 创建 engine 并注册所有路由
func SetupRouter(ctls *Controllers, opts Options) *gin.Engine {
	if opts.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewSyncRateLimiter()
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})

	// 访问 http://localhost:8080/swagger/index.html 查看文档
	if opts.EnableDocs {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	InitRoutes(r, ctls, opts)
	return r
}

// InitRoutes 注册 /api 路由，全部需要 session token
func InitRoutes(r *gin.Engine, ctls *Controllers, opts Options) {
	api := r.Group("/api")
	api.Use(middleware.SessionAuth(opts.Session), middleware.AuditContext())
	{
		// 促销活动
		promotions := api.Group("/promotions")
		{
			promotions.GET("", ctls.Promotion.List)
			promotions.GET("/:id", ctls.Promotion.Get)
			promotions.POST("", ctls.Promotion.Create)
		}
		// 店铺
		store := api.Group("/store")
		{
			store.GET("", ctls.Store.Get)
			store.POST("/sync",
				middleware.SyncRateLimit(opts.Limiter, middleware.SyncTypeStore, 0),
				ctls.Store.Sync,
			)
		}
		// 折扣码
		discounts := api.Group("/discount-codes")
		{
			discounts.GET("", ctls.Discount.List)
			discounts.POST("",
				middleware.SyncRateLimit(opts.Limiter, middleware.SyncTypeDiscount, 0),
				ctls.Discount.Generate,
			)
		}
	}
}
