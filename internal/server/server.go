// Package server assembles the services, handlers and routes of the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"finman/internal/events"
	"finman/internal/handlers"
	"finman/internal/middleware"
	"finman/internal/services"
	"finman/internal/timewindow"

	_ "finman/internal/docs" // swagger spec registration
)

// Services bundles every service the router exposes.
type Services struct {
	Transactions  services.TransactionServicer
	Budgets       services.BudgetServicer
	Recurring     services.RecurringServicer
	Goals         services.GoalServicer
	Notifications services.NotificationServicer
	Audit         services.AuditServicer
}

// NewServices wires the service graph on top of db. A nil publisher disables
// execution events.
func NewServices(db *gorm.DB, publisher events.Publisher, clock timewindow.Clock, notifications services.NotificationConfig) Services {
	spending := services.NewSpendingAggregator(db)
	transactions := services.NewTransactionService(db, clock)
	budgets := services.NewBudgetService(db, spending, clock)
	goals := services.NewGoalService(db, clock)
	recurring := services.NewRecurringService(db, transactions, publisher, clock)

	return Services{
		Transactions:  transactions,
		Budgets:       budgets,
		Recurring:     recurring,
		Goals:         goals,
		Notifications: services.NewNotificationService(budgets, spending, goals, recurring, transactions, clock, notifications),
		Audit:         services.NewAuditService(db),
	}
}

// Options configures the router.
type Options struct {
	CORSOrigins    []string
	PipelineAPIKey string
	Clock          timewindow.Clock
	Swagger        bool
	RequestLogging bool
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(svc Services, opts Options) *gin.Engine {
	if opts.Clock == nil {
		opts.Clock = timewindow.SystemClock{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit, opts.Clock)
	recurringHandler := handlers.NewRecurringHandler(svc.Recurring, svc.Audit)
	goalHandler := handlers.NewGoalHandler(svc.Goals, svc.Audit, opts.Clock)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	pipelineHandler := handlers.NewPipelineHandler(svc.Recurring)

	v1 := router.Group("/api/v1")

	// Scheduler trigger, authenticated by API key
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/recurring/execute", pipelineHandler.ExecutePending)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.GetRecurring)
	recurring.GET("/upcoming", recurringHandler.GetUpcoming)
	recurring.GET("/:id", recurringHandler.GetRecurringByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurring)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)
	recurring.POST("/:id/execute", recurringHandler.ExecuteNow)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/stats", goalHandler.GetGoalStats)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/add", goalHandler.AddAmount)

	protected.GET("/notifications", notificationHandler.GetNotifications)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
