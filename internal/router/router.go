package router

import (
	"github.com/samislam/exchange-profitbook/internal/config"
	"github.com/samislam/exchange-profitbook/internal/handler"
	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	service := ledger.NewService(db)

	api := r.Group("/api")

	// 登录和推演不需要鉴权
	authHandler := handler.NewAuthHandler(cfg.Auth)
	api.POST("/auth/login", authHandler.Login)

	simulateHandler := handler.NewSimulateHandler()
	api.POST("/simulate", simulateHandler.Simulate)

	// 图标直接公开访问（前端 <img> 不带 Header）
	institutionHandler := handler.NewInstitutionHandler(service, cfg.Upload.Dir)
	api.GET("/institutions/icons/:fileName", institutionHandler.GetInstitutionIcon)

	// 其余接口受登录保护（auth.enabled 时）
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.Auth),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/institutions", institutionHandler.ListInstitutions)
	protected.POST("/institutions", institutionHandler.CreateInstitution)

	cycleHandler := handler.NewCycleHandler(service)
	protected.GET("/cycles", cycleHandler.ListCycles)
	protected.POST("/cycles", cycleHandler.CreateCycle)
	protected.PATCH("/cycles/:id", cycleHandler.RenameCycle)
	protected.DELETE("/cycles/:id", cycleHandler.DeleteCycle)
	protected.POST("/cycles/:id/reset", cycleHandler.ResetCycle)
	protected.POST("/cycles/:id/undo-last", cycleHandler.UndoLast)

	transactionHandler := handler.NewTransactionHandler(service)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.PATCH("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	exportHandler := handler.NewExportHandler(service)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	auditHandler := handler.NewAuditHandler(db, cfg.App.PageSize)
	protected.GET("/logs", auditHandler.ListLogs)

	return r
}
