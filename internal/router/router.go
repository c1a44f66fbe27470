package router

import (
	"time"

	"finanz-server/internal/assistant"
	"finanz-server/internal/bot"
	"finanz-server/internal/cache"
	"finanz-server/internal/config"
	"finanz-server/internal/graph"
	"finanz-server/internal/handler"
	"finanz-server/internal/ledger"
	"finanz-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires every handler onto the Gin engine.
func Setup(cfg *config.Config, db *gorm.DB, store *cache.Cache) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RateLimit(store))

	ledgerService := ledger.NewService(db)
	notifier := bot.NewNotifier(cfg.Discord.WebhookURL)

	var finAssistant *assistant.Assistant
	if cfg.Gemini.APIKey != "" {
		client := assistant.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		finAssistant = assistant.New(client, db, ledgerService)
	}

	jwtSecret := cfg.JWT.Secret
	tokenTTL := time.Duration(cfg.JWT.ExpireHours) * time.Hour

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, store, jwtSecret, tokenTTL)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	webhookHandler := handler.NewWebhookHandler(notifier)
	api.POST("/webhooks/github", webhookHandler.GitHub)

	schema, err := graph.NewSchema(db)
	if err != nil {
		return nil, err
	}
	api.POST("/graphql", graph.Handler(schema))

	protected := api.Group("")
	protected.Use(middleware.Auth(jwtSecret, db, store))

	protected.POST("/auth/logout", authHandler.Logout)

	userHandler := handler.NewUserHandler(db, store)
	protected.GET("/me", userHandler.GetMe)
	protected.PATCH("/me", userHandler.UpdateMe)
	protected.DELETE("/me", userHandler.DeleteMe)

	accountHandler := handler.NewAccountHandler(db)
	protected.GET("/account", accountHandler.GetAccount)
	protected.PATCH("/account", accountHandler.UpdateAccount)

	categoryHandler := handler.NewCategoryHandler(db)
	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.ListCategories)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := handler.NewTransactionHandler(db, ledgerService, notifier)
	protected.POST("/transactions", transactionHandler.CreateTransaction)
	protected.GET("/transactions", transactionHandler.ListTransactions)
	protected.GET("/transactions/:id", transactionHandler.GetTransaction)
	protected.PUT("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)

	cardHandler := handler.NewCreditCardHandler(db, store)
	protected.POST("/credit-cards", cardHandler.CreateCard)
	protected.GET("/credit-cards", cardHandler.ListCards)
	protected.GET("/credit-cards/:id", cardHandler.GetCard)
	protected.PUT("/credit-cards/:id", cardHandler.UpdateCard)
	protected.DELETE("/credit-cards/:id", cardHandler.DeleteCard)

	invoiceHandler := handler.NewInvoiceHandler(db, ledgerService, notifier)
	protected.GET("/credit-cards/:id/invoices", invoiceHandler.ListInvoices)
	protected.POST("/credit-cards/:id/invoices", invoiceHandler.CreateInvoice)
	protected.POST("/credit-cards/:id/invoices/generate", invoiceHandler.GenerateInvoice)
	protected.GET("/credit-cards/:id/invoices/open", invoiceHandler.GetOpenInvoice)
	protected.GET("/credit-cards/:id/invoices/statistics", invoiceHandler.InvoiceStatistics)
	protected.GET("/invoices/:id", invoiceHandler.GetInvoice)
	protected.PATCH("/invoices/:id", invoiceHandler.UpdateInvoice)
	protected.POST("/invoices/:id/pay", invoiceHandler.PayInvoice)
	protected.DELETE("/invoices/:id", invoiceHandler.DeleteInvoice)

	planningHandler := handler.NewPlanningHandler(db)
	protected.POST("/plannings", planningHandler.CreatePlanning)
	protected.GET("/plannings", planningHandler.ListPlannings)
	protected.GET("/plannings/:id", planningHandler.GetPlanning)
	protected.PUT("/plannings/:id", planningHandler.UpdatePlanning)
	protected.DELETE("/plannings/:id", planningHandler.DeletePlanning)

	holdingHandler := handler.NewHoldingHandler(db, ledgerService)
	protected.POST("/holdings", holdingHandler.CreateHolding)
	protected.GET("/holdings", holdingHandler.ListHoldings)
	protected.GET("/holdings/:id", holdingHandler.GetHolding)
	protected.DELETE("/holdings/:id", holdingHandler.DeleteHolding)
	protected.POST("/holdings/:id/moviments", holdingHandler.CreateMoviment)
	protected.GET("/moviments", holdingHandler.ListMoviments)
	protected.DELETE("/moviments/:movimentId", holdingHandler.DeleteMoviment)

	objectiveHandler := handler.NewObjectiveHandler(db)
	protected.POST("/objectives", objectiveHandler.CreateObjective)
	protected.GET("/objectives", objectiveHandler.ListObjectives)
	protected.GET("/objectives/:id", objectiveHandler.GetObjective)
	protected.PUT("/objectives/:id", objectiveHandler.UpdateObjective)
	protected.DELETE("/objectives/:id", objectiveHandler.DeleteObjective)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	fileHandler := handler.NewFileHandler(db, cfg.Storage.Dir)
	protected.POST("/files", fileHandler.Upload)
	protected.GET("/files", fileHandler.ListFiles)
	protected.GET("/files/:id/download", fileHandler.Download)
	protected.DELETE("/files/:id", fileHandler.DeleteFile)

	assistantHandler := handler.NewAssistantHandler(db, finAssistant)
	protected.POST("/assistant/message", assistantHandler.Ask)

	return r, nil
}
