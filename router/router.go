package router

import (
	"context"
	"net/http"
	"time"

	"ledger/api"
	"ledger/config"
	"ledger/database"
	"ledger/docs"
	"ledger/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由，ctx 结束时停止中间件的后台任务
func SetupRouter(ctx context.Context, cfg *config.Config, store *database.Store) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档，地址随监听配置
	docs.SwaggerInfo.Host = cfg.Server.Addr()
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.WriteRateLimit(ctx, cfg.Server.WriteRateLimit, time.Minute))
	{
		transactionHandler := api.NewTransactionHandler(store)
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		categoryHandler := api.NewCategoryHandler(store)
		v1.GET("/categories", categoryHandler.List)

		summaryHandler := api.NewSummaryHandler(store)
		v1.GET("/statistics/summary", summaryHandler.GetSummary)

		// 导出相关
		exportHandler := api.NewExportHandler(store)
		export := v1.Group("/export")
		{
			export.GET("/csv", exportHandler.ExportCSV)
			export.GET("/excel", exportHandler.ExportExcel)
		}
	}

	// 健康检查，附带当前 schema 版本
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		version, err := store.Version(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": api.SafeErrorMessage(err, "存储不可用"),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"schema_version": version,
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
