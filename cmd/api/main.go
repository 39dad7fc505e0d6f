package main

import (
	"log"
	"os"

	_ "propertyhub/api/swagger" // swagger docs
	"propertyhub/internal/database"
	"propertyhub/internal/handler"
	"propertyhub/internal/middleware"
	"propertyhub/internal/repository"
	"propertyhub/internal/service"
	"propertyhub/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           PropertyHub API
// @version         1.0
// @description     Approval workflow and permission backend for the PropertyHub portals.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "propertyhub"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)

	userService := service.NewUserService(userRepo)
	propertyService := service.NewPropertyService(propertyRepo, auditRepo, txManager)
	tenantService := service.NewTenantService(tenantRepo, auditRepo, txManager)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo)
	paymentService := service.NewPaymentService(paymentRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	approvalService := service.NewApprovalService(approvalRepo, tenantRepo, maintenanceRepo, paymentRepo, auditRepo, txManager, wsHub)
	dashboardService := service.NewDashboardService(propertyRepo, tenantRepo, paymentRepo, approvalRepo)
	roleService := service.NewRoleService()

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	auditHandler := handler.NewAuditHandler(auditService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	roleHandler := handler.NewRoleHandler(roleService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	propertyHandler.RegisterRoutes(router.Group(""))
	tenantHandler.RegisterRoutes(router.Group(""))
	maintenanceHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	approvalHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
