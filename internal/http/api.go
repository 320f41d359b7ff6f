package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portfolio-tracker/internal/exporter"
	"portfolio-tracker/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	portfolios   service.PortfolioService
	transactions service.TransactionService
	tokens       *service.TokenIssuer
	exports      exporter.Manager
	logger       *logrus.Logger
}

// NewHandler builds the API handler. exports may be nil when no bucket is configured.
func NewHandler(users service.UserService, portfolios service.PortfolioService, transactions service.TransactionService, tokens *service.TokenIssuer, exports exporter.Manager, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:        users,
		portfolios:   portfolios,
		transactions: transactions,
		tokens:       tokens,
		exports:      exports,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/users/confirm", h.getUserToConfirm)
	}

	authed := api.Group("")
	authed.Use(requireAuth(h.tokens))
	{
		authed.GET("/users", h.getAllUsers)
		authed.GET("/users/me", h.getCurrentUser)
		authed.GET("/users/:id", h.getUser)
		authed.PUT("/users/:id", h.updateUser)
		authed.GET("/users/:id/managed", h.getManagedUsers)

		authed.POST("/portfolios", h.createPortfolio)
		authed.GET("/portfolios", h.listPortfolios)
		authed.GET("/portfolios/:pId", h.getPortfolio)
		authed.GET("/portfolios/:pId/transactions", h.getPortfolioTransactions)
		authed.POST("/portfolios/:pId/exports", h.createExport)
		authed.GET("/portfolios/:pId/exports", h.listExports)

		authed.GET("/transactions", h.getTransactions)
		authed.POST("/transactions", h.createTransaction)
		authed.GET("/transactions/:id", h.getTransaction)
		authed.PUT("/transactions/:id", h.updateTransaction)
		authed.DELETE("/transactions/:id", h.deleteTransaction)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
