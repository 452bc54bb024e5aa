package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"go-pharma-pos/internal/auth"
	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/middleware"
	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-level database handle at a fresh
// in-memory SQLite instance with the full schema and base roles.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql.DB: %v", err)
	}
	// A single connection keeps the :memory: database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	for _, name := range []string{rbac.SuperadminRole, "cashier"} {
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			t.Fatalf("seed role %s: %v", name, err)
		}
	}
	if err := db.Create(&models.Setting{PPNRate: 11, DiscountRate: 0}).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	auth.Init("test-secret")
}

// newTestRouter registers the same routes and guards as cmd/server.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/login", Login)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/dashboard", GetDashboard)

		api.GET("/products", GetProducts)
		api.POST("/products", middleware.RequirePermission("Products", rbac.ActionCreate), AddProduct)
		api.PUT("/products/:id", middleware.RequirePermission("Products", rbac.ActionEdit), UpdateProduct)
		api.DELETE("/products/:id", middleware.RequirePermission("Products", rbac.ActionDelete), DeleteProduct)

		api.GET("/suppliers", GetSuppliers)
		api.POST("/suppliers", middleware.RequirePermission("Suppliers", rbac.ActionCreate), AddSupplier)
		api.PUT("/suppliers/:id", middleware.RequirePermission("Suppliers", rbac.ActionEdit), UpdateSupplier)
		api.DELETE("/suppliers/:id", middleware.RequirePermission("Suppliers", rbac.ActionDelete), DeleteSupplier)

		api.GET("/outlets", GetOutlets)
		api.POST("/outlets", middleware.RequirePermission("Outlets", rbac.ActionCreate), AddOutlet)
		api.PUT("/outlets/:id", middleware.RequirePermission("Outlets", rbac.ActionEdit), UpdateOutlet)
		api.DELETE("/outlets/:id", middleware.RequirePermission("Outlets", rbac.ActionDelete), DeleteOutlet)

		api.GET("/users", GetUsers)
		api.POST("/users", middleware.RequirePermission("Users", rbac.ActionCreate), AddUser)
		api.PUT("/users/:id", middleware.RequirePermission("Users", rbac.ActionEdit), UpdateUser)
		api.DELETE("/users/:id", middleware.RequirePermission("Users", rbac.ActionDelete), DeleteUser)

		api.POST("/inventory/adjust", middleware.RequirePermission("Stock", rbac.ActionEdit), AdjustStock)
		api.GET("/inventory/history", GetInventoryHistory)
		api.POST("/stock-opname", middleware.RequirePermission("Stock Opname", rbac.ActionCreate), StockOpname)

		api.GET("/transactions", GetTransactions)
		api.POST("/transactions", middleware.RequirePermission("Transactions", rbac.ActionCreate), CreateTransaction)

		api.GET("/financial/profit-loss", GetProfitLoss)
		api.GET("/reports/balance", GetBalanceSheet)
		api.GET("/reports/transactions", GetTransactionReport)

		api.GET("/settings", GetSettings)
		api.PUT("/settings", middleware.RequirePermission("Settings", rbac.ActionEdit), UpdateSettings)

		rbacGroup := api.Group("/rbac")
		{
			rbacGroup.GET("/modules", GetModules)
			rbacGroup.GET("/roles", GetRoles)
			rbacGroup.POST("/roles", middleware.RequireSuperadmin(), AddRole)
			rbacGroup.DELETE("/roles/:id", middleware.RequireSuperadmin(), DeleteRole)
			rbacGroup.GET("/permissions", GetPermissions)
			rbacGroup.PUT("/permissions", middleware.RequireSuperadmin(), UpdatePermissions)
		}
	}

	return r
}

// createTestUser inserts an account and returns a valid token for it.
func createTestUser(t *testing.T, username, password, role string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

func createTestProduct(t *testing.T, name string, stock int, costPrice, sellingPrice float64) models.Product {
	t.Helper()

	product := models.Product{
		Name:         name,
		Stock:        stock,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		Unit:         "strip",
		Category:     "Obat Bebas",
	}
	if err := database.DB.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func grantPermission(t *testing.T, roleName, module string, action rbac.Action) {
	t.Helper()

	var role models.Role
	if err := database.DB.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("find role %s: %v", roleName, err)
	}
	if err := rbac.UpsertPermission(database.DB, role.ID, module, action, true); err != nil {
		t.Fatalf("grant %s %s/%s: %v", roleName, module, action, err)
	}
}

// doRequest runs a JSON request through the router and decodes the body.
func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			// Some endpoints return arrays; callers that care decode themselves
			decoded = nil
		}
	}
	return w, decoded
}

func reloadProduct(t *testing.T, id uint) models.Product {
	t.Helper()

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return product
}

func historyCount(t *testing.T, productID uint) int64 {
	t.Helper()

	var count int64
	if err := database.DB.Model(&models.InventoryHistory{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	return count
}
