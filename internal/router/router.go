package router

import (
	"database/sql"

	"github.com/dillendillen/doya.app-sub001/internal/handlers"
	"github.com/dillendillen/doya.app-sub001/internal/middleware"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and mounts all routes
// under /api/v1. db may be nil; mutating endpoints then answer 503.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	noteRepo := repositories.NewNoteRepository(db)
	dogRepo := repositories.NewDogRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// Services
	audit := services.NewAuditService(auditRepo, db)
	authService := services.NewAuthService(authRepo, audit, db)
	clientService := services.NewClientService(clientRepo, noteRepo, audit, db)
	dogService := services.NewDogService(dogRepo, clientRepo, audit, db)
	packageService := services.NewPackageService(packageRepo, invoiceRepo, clientRepo, sessionRepo, audit, db)
	paymentService := services.NewPaymentService(paymentRepo, invoiceRepo, audit, db)
	sessionService := services.NewSessionService(sessionRepo, packageRepo, dogRepo, audit, db)
	revenueService := services.NewRevenueService(paymentRepo, invoiceRepo, db)
	bookingService := services.NewBookingService(bookingRepo, clientRepo, dogRepo, audit, db)
	taskService := services.NewTaskService(taskRepo, clientRepo, audit, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	auditHandler := handlers.NewAuditHandler(audit)
	clientHandler := handlers.NewClientHandler(clientService)
	dogHandler := handlers.NewDogHandler(dogService)
	packageHandler := handlers.NewPackageHandler(packageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	invoiceHandler := handlers.NewInvoiceHandler(paymentService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	revenueHandler := handlers.NewRevenueHandler(revenueService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	taskHandler := handlers.NewTaskHandler(taskService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupClientRoutes(authenticated, clientHandler)
		SetupDogRoutes(authenticated, dogHandler)
		SetupPackageRoutes(authenticated, packageHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupInvoiceRoutes(authenticated, invoiceHandler)
		SetupSessionRoutes(authenticated, sessionHandler)
		SetupRevenueRoutes(authenticated, revenueHandler)
		SetupBookingRoutes(authenticated, bookingHandler)
		SetupTaskRoutes(authenticated, taskHandler)
		SetupAuditRoutes(authenticated, auditHandler)
	}
}
