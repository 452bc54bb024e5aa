package main

import (
	"log"
	"strings"
	"time"

	"go-pharma-pos/internal/auth"
	"go-pharma-pos/internal/config"
	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/handlers"
	"go-pharma-pos/internal/middleware"
	"go-pharma-pos/internal/rbac"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	cfg := config.Load()
	auth.Init(cfg.JWTSecret)
	database.Connect(cfg.DatabaseDSN, cfg.Debug)
	middleware.InitMetrics()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/api/login", handlers.Login)

	// --- PROTECTED ROUTES ---
	// Reads only need a valid token; every mutation goes through the
	// RBAC matrix for the caller's role.
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/dashboard", handlers.GetDashboard)

		api.GET("/products", handlers.GetProducts)
		api.POST("/products", middleware.RequirePermission("Products", rbac.ActionCreate), handlers.AddProduct)
		api.PUT("/products/:id", middleware.RequirePermission("Products", rbac.ActionEdit), handlers.UpdateProduct)
		api.DELETE("/products/:id", middleware.RequirePermission("Products", rbac.ActionDelete), handlers.DeleteProduct)

		api.GET("/suppliers", handlers.GetSuppliers)
		api.POST("/suppliers", middleware.RequirePermission("Suppliers", rbac.ActionCreate), handlers.AddSupplier)
		api.PUT("/suppliers/:id", middleware.RequirePermission("Suppliers", rbac.ActionEdit), handlers.UpdateSupplier)
		api.DELETE("/suppliers/:id", middleware.RequirePermission("Suppliers", rbac.ActionDelete), handlers.DeleteSupplier)

		api.GET("/outlets", handlers.GetOutlets)
		api.POST("/outlets", middleware.RequirePermission("Outlets", rbac.ActionCreate), handlers.AddOutlet)
		api.PUT("/outlets/:id", middleware.RequirePermission("Outlets", rbac.ActionEdit), handlers.UpdateOutlet)
		api.DELETE("/outlets/:id", middleware.RequirePermission("Outlets", rbac.ActionDelete), handlers.DeleteOutlet)

		api.GET("/users", handlers.GetUsers)
		api.POST("/users", middleware.RequirePermission("Users", rbac.ActionCreate), handlers.AddUser)
		api.PUT("/users/:id", middleware.RequirePermission("Users", rbac.ActionEdit), handlers.UpdateUser)
		api.DELETE("/users/:id", middleware.RequirePermission("Users", rbac.ActionDelete), handlers.DeleteUser)

		api.POST("/inventory/adjust", middleware.RequirePermission("Stock", rbac.ActionEdit), handlers.AdjustStock)
		api.GET("/inventory/history", handlers.GetInventoryHistory)
		api.POST("/stock-opname", middleware.RequirePermission("Stock Opname", rbac.ActionCreate), handlers.StockOpname)

		api.GET("/transactions", handlers.GetTransactions)
		api.POST("/transactions", middleware.RequirePermission("Transactions", rbac.ActionCreate), handlers.CreateTransaction)

		api.GET("/financial/profit-loss", handlers.GetProfitLoss)
		api.GET("/reports/balance", handlers.GetBalanceSheet)
		api.GET("/reports/transactions", handlers.GetTransactionReport)

		api.GET("/settings", handlers.GetSettings)
		api.PUT("/settings", middleware.RequirePermission("Settings", rbac.ActionEdit), handlers.UpdateSettings)

		api.POST("/substitutions", middleware.RequirePermission("Substitutions", rbac.ActionShow), handlers.FindSubstitutions)

		// Role administration is superadmin-only, regardless of the matrix
		rbacGroup := api.Group("/rbac")
		{
			rbacGroup.GET("/modules", handlers.GetModules)
			rbacGroup.GET("/roles", handlers.GetRoles)
			rbacGroup.POST("/roles", middleware.RequireSuperadmin(), handlers.AddRole)
			rbacGroup.DELETE("/roles/:id", middleware.RequireSuperadmin(), handlers.DeleteRole)
			rbacGroup.GET("/permissions", handlers.GetPermissions)
			rbacGroup.PUT("/permissions", middleware.RequireSuperadmin(), handlers.UpdatePermissions)
		}
	}

	log.Println("🚀 Server starting on port " + cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
