package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"casaops/internal/caching"
	"casaops/internal/config"
	"casaops/internal/handlers"
	"casaops/internal/jobs/background"
	"casaops/internal/middleware"
	"casaops/internal/repositories"
	"casaops/internal/services"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Application config (billing policy, buckets, report settings)
	appConfig := config.DefaultAppConfig()
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "casaops.toml"
	}
	if _, err := os.Stat(configPath); err == nil {
		appConfig, err = config.LoadAppConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config file %s: %v", configPath, err)
		}
		log.Printf("Loaded configuration from %s", configPath)
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	buckets := []string{
		appConfig.Storage.DocumentsBucket,
		appConfig.Storage.InvoicesBucket,
		appConfig.Storage.ReportsBucket,
	}
	for _, bucket := range buckets {
		if err := storageSvc.EnsureBucketExists(context.Background(), bucket); err != nil {
			log.Printf("WARNING: Failed to ensure bucket %s: %v", bucket, err)
		}
	}

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	propertyRepo := repositories.NewPropertyRepository(pool)
	vehicleRepo := repositories.NewVehicleRepository(pool)
	bookingRepo := repositories.NewBookingRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	noteRepo := repositories.NewNoteRepository(pool)
	taskRepo := repositories.NewTaskRepository(pool)
	documentRepo := repositories.NewDocumentRepository(pool)
	scheduleRepo := repositories.NewReportScheduleRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	propertySvc := services.NewPropertyService(propertyRepo, cacheSvc)
	vehicleSvc := services.NewVehicleService(vehicleRepo)
	bookingSvc := services.NewBookingService(bookingRepo, propertyRepo, cacheSvc)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, bookingRepo,
		appConfig.Billing.AllowNegativeAmounts, appConfig.Billing.DueDays)
	noteSvc := services.NewNoteService(noteRepo)
	taskSvc := services.NewTaskService(taskRepo)
	documentSvc := services.NewDocumentService(documentRepo, storageSvc, appConfig.Storage.DocumentsBucket)
	reportSvc := services.NewReportService(invoiceRepo, bookingRepo, propertyRepo, scheduleRepo,
		storageSvc, appConfig.Storage.ReportsBucket)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	propertyHandlers := handlers.NewPropertyHandlers(propertySvc)
	vehicleHandlers := handlers.NewVehicleHandlers(vehicleSvc)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc, invoiceSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, propertySvc, storageSvc, appConfig.Storage.InvoicesBucket)
	noteHandlers := handlers.NewNoteHandlers(noteSvc)
	taskHandlers := handlers.NewTaskHandlers(taskSvc)
	documentHandlers := handlers.NewDocumentHandlers(documentSvc)
	reportHandlers := handlers.NewReportHandlers(reportSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	jobScheduler := background.NewJobScheduler(invoiceSvc, reportSvc,
		time.Duration(appConfig.Reports.SchedulerIntervalMinutes)*time.Minute)
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer jobScheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	// Protected routes
	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.TenantContext(userRepo))

	protected.GET("/me", authHandlers.Me)

	// Property routes
	protected.GET("/properties", propertyHandlers.ListProperties)
	protected.POST("/properties", propertyHandlers.CreateProperty)
	protected.GET("/properties/search", propertyHandlers.SearchProperties)
	protected.GET("/properties/:id", propertyHandlers.GetProperty)
	protected.PUT("/properties/:id", propertyHandlers.UpdateProperty)
	protected.DELETE("/properties/:id", propertyHandlers.DeleteProperty)

	// Vehicle routes
	protected.GET("/vehicles", vehicleHandlers.ListVehicles)
	protected.POST("/vehicles", vehicleHandlers.CreateVehicle)
	protected.GET("/vehicles/:id", vehicleHandlers.GetVehicle)
	protected.PUT("/vehicles/:id", vehicleHandlers.UpdateVehicle)
	protected.DELETE("/vehicles/:id", vehicleHandlers.DeleteVehicle)

	// Booking routes
	protected.GET("/bookings", bookingHandlers.ListBookings)
	protected.POST("/bookings", bookingHandlers.CreateBooking)
	protected.GET("/bookings/availability", bookingHandlers.CheckAvailability)
	protected.GET("/bookings/:id", bookingHandlers.GetBooking)
	protected.PUT("/bookings/:id", bookingHandlers.UpdateBooking)
	protected.PUT("/bookings/:id/status", bookingHandlers.UpdateBookingStatus)
	protected.POST("/bookings/:id/invoice", bookingHandlers.GenerateInvoice)
	protected.DELETE("/bookings/:id", bookingHandlers.DeleteBooking)

	// Invoice routes
	protected.GET("/invoices", invoiceHandlers.ListInvoices)
	protected.POST("/invoices", invoiceHandlers.CreateInvoice)
	protected.GET("/invoices/unpaid", invoiceHandlers.GetUnpaidInvoices)
	protected.GET("/invoices/:id", invoiceHandlers.GetInvoice)
	protected.PUT("/invoices/:id", invoiceHandlers.UpdateInvoice)
	protected.PUT("/invoices/:id/status", invoiceHandlers.UpdateInvoiceStatus)
	protected.PUT("/invoices/:id/line-items", invoiceHandlers.ReplaceLineItems)
	protected.POST("/invoices/:id/line-items", invoiceHandlers.AppendLineItem)
	protected.PATCH("/invoices/:id/line-items/:index", invoiceHandlers.EditLineItemField)
	protected.DELETE("/invoices/:id/line-items/:index", invoiceHandlers.RemoveLineItem)
	protected.POST("/invoices/:id/payments", invoiceHandlers.RecordPayment)
	protected.POST("/invoices/:id/generate-pdf", invoiceHandlers.GenerateInvoicePDF)
	protected.DELETE("/invoices/:id", invoiceHandlers.DeleteInvoice)

	// Note routes
	protected.GET("/notes", noteHandlers.ListNotes)
	protected.POST("/notes", noteHandlers.CreateNote)
	protected.PUT("/notes/:id", noteHandlers.UpdateNote)
	protected.DELETE("/notes/:id", noteHandlers.DeleteNote)

	// Task routes
	protected.GET("/tasks", taskHandlers.ListTasks)
	protected.POST("/tasks", taskHandlers.CreateTask)
	protected.GET("/tasks/overdue", taskHandlers.ListOverdueTasks)
	protected.GET("/tasks/:id", taskHandlers.GetTask)
	protected.PUT("/tasks/:id", taskHandlers.UpdateTask)
	protected.PUT("/tasks/:id/status", taskHandlers.UpdateTaskStatus)
	protected.DELETE("/tasks/:id", taskHandlers.DeleteTask)

	// Document routes
	protected.GET("/documents", documentHandlers.ListDocuments)
	protected.POST("/documents", documentHandlers.UploadDocument)
	protected.GET("/documents/:id/download", documentHandlers.GetDownloadURL)
	protected.DELETE("/documents/:id", documentHandlers.DeleteDocument)

	// Report routes
	protected.GET("/reports/financial-summary", reportHandlers.GetFinancialSummary)
	protected.GET("/reports/occupancy", reportHandlers.GetOccupancy)
	protected.POST("/reports/generate", reportHandlers.GenerateReport)
	protected.GET("/reports", reportHandlers.ListGeneratedReports)
	protected.GET("/reports/schedules", reportHandlers.ListSchedules)
	protected.POST("/reports/schedules", reportHandlers.CreateSchedule)
	protected.PUT("/reports/schedules/:id", reportHandlers.UpdateSchedule)
	protected.DELETE("/reports/schedules/:id", reportHandlers.DeleteSchedule)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Casaops server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
