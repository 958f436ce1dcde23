package main

import (
	"log"
	"os"

	_ "saccosphere/api/swagger" // swagger docs
	"saccosphere/internal/database"
	"saccosphere/internal/handler"
	"saccosphere/internal/middleware"
	"saccosphere/internal/repository"
	"saccosphere/internal/service"
	"saccosphere/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Sacco Back Office API
// @version         1.0
// @description     Back-office API for sacco member, product, account and transaction maintenance with maker-checker review.
// @host            localhost:8080
// @BasePath        /api
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
		dbName = "postgres"
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

	// RequirePermission resolves role grants through this DB reference.
	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	txManager := repository.NewTransactionManager(db)

	roleService := service.NewRoleService(db)
	userService := service.NewUserService(userRepo, roleService, db)
	memberService := service.NewMemberService(db, txManager)
	productService := service.NewProductService(db)
	accountService := service.NewAccountService(db)
	transactionService := service.NewTransactionService(db)
	saccoService := service.NewSaccoService(db)
	approvalService := service.NewApprovalService(service.NewStatusStores(db), wsHub)
	auditService := service.NewAuditService(db)
	loanService := service.NewLoanService()

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	memberHandler := handler.NewMemberHandler(memberService, accountService, approvalService)
	productHandler := handler.NewProductHandler(productService, approvalService)
	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transactionService, approvalService)
	saccoHandler := handler.NewSaccoHandler(saccoService, approvalService)
	auditHandler := handler.NewAuditHandler(auditService)
	loanHandler := handler.NewLoanHandler(loanService)

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

	// WebSocket endpoint pushing batch status-change events
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	roleHandler.RegisterRoutes(api)
	memberHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	accountHandler.RegisterRoutes(api)
	transactionHandler.RegisterRoutes(api)
	saccoHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	loanHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
