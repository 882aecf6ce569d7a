package router

import (
	"github.com/dillendillen/doya.app-sub001/internal/handlers"
	"github.com/dillendillen/doya.app-sub001/internal/middleware"
	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts auth endpoints. Register, login and refresh are
// public; /auth/me requires a valid token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)

		authRequired := authRoutes.Group("")
		authRequired.Use(middleware.AuthMiddleware())
		{
			authRequired.GET("/me", authHandler.Me)
		}
	}
}

// SetupClientRoutes mounts client CRUD plus the nested notes endpoints.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PATCH("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)

		clientRoutes.POST("/:id/notes", clientHandler.AddNote)
		clientRoutes.GET("/:id/notes", clientHandler.GetNotes)
		clientRoutes.DELETE("/:id/notes/:noteId", clientHandler.DeleteNote)
	}
}

// SetupDogRoutes mounts dog CRUD.
func SetupDogRoutes(authenticatedGroup *gin.RouterGroup, dogHandler *handlers.DogHandler) {
	dogRoutes := authenticatedGroup.Group("/dogs")
	{
		dogRoutes.POST("", dogHandler.CreateDog)
		dogRoutes.GET("", dogHandler.GetDogs)
		dogRoutes.GET("/:id", dogHandler.GetDogByID)
		dogRoutes.PATCH("/:id", dogHandler.UpdateDog)
		dogRoutes.DELETE("/:id", dogHandler.DeleteDog)
	}
}

// SetupPackageRoutes mounts the credit-package endpoints. The templates
// listing must register before /:id so Gin does not treat it as an id.
func SetupPackageRoutes(authenticatedGroup *gin.RouterGroup, packageHandler *handlers.PackageHandler) {
	packageRoutes := authenticatedGroup.Group("/packages")
	{
		packageRoutes.POST("", packageHandler.CreatePackage)
		packageRoutes.GET("", packageHandler.GetPackages)
		packageRoutes.GET("/templates", packageHandler.GetTemplates)
		packageRoutes.GET("/:id", packageHandler.GetPackageByID)
		packageRoutes.PATCH("/:id", packageHandler.UpdatePackage)
		packageRoutes.DELETE("/:id", packageHandler.DeletePackage)
	}
}

// SetupPaymentRoutes mounts the payment endpoints.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	{
		paymentRoutes.POST("", paymentHandler.RecordPayment)
		paymentRoutes.GET("", paymentHandler.GetPayments)
		paymentRoutes.GET("/:id", paymentHandler.GetPaymentByID)
		paymentRoutes.PATCH("/:id", paymentHandler.UpdatePayment)
		paymentRoutes.DELETE("/:id", paymentHandler.DeletePayment)
	}
}

// SetupInvoiceRoutes mounts the read-only invoice endpoints. Invoices are
// created and settled through package purchases and payments, so there are
// no write routes here.
func SetupInvoiceRoutes(authenticatedGroup *gin.RouterGroup, invoiceHandler *handlers.InvoiceHandler) {
	invoiceRoutes := authenticatedGroup.Group("/invoices")
	{
		invoiceRoutes.GET("", invoiceHandler.GetInvoices)
		invoiceRoutes.GET("/pending", invoiceHandler.GetPendingInvoices)
		invoiceRoutes.GET("/:id", invoiceHandler.GetInvoiceByID)
	}
}

// SetupSessionRoutes mounts the training-session endpoints.
func SetupSessionRoutes(authenticatedGroup *gin.RouterGroup, sessionHandler *handlers.SessionHandler) {
	sessionRoutes := authenticatedGroup.Group("/sessions")
	{
		sessionRoutes.POST("", sessionHandler.CreateSession)
		sessionRoutes.GET("", sessionHandler.GetSessions)
		sessionRoutes.GET("/:id", sessionHandler.GetSessionByID)
		sessionRoutes.PATCH("/:id", sessionHandler.UpdateSession)
		sessionRoutes.DELETE("/:id", sessionHandler.DeleteSession)
	}
}

// SetupRevenueRoutes mounts the read-only revenue projections.
func SetupRevenueRoutes(authenticatedGroup *gin.RouterGroup, revenueHandler *handlers.RevenueHandler) {
	revenueRoutes := authenticatedGroup.Group("/revenue")
	{
		revenueRoutes.GET("/summary", revenueHandler.GetSummary)
		revenueRoutes.GET("/by-period", revenueHandler.GetByPeriod)
	}
}

// SetupBookingRoutes mounts the booking-request endpoints.
func SetupBookingRoutes(authenticatedGroup *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	bookingRoutes := authenticatedGroup.Group("/bookings")
	{
		bookingRoutes.POST("", bookingHandler.CreateBooking)
		bookingRoutes.GET("", bookingHandler.GetBookings)
		bookingRoutes.GET("/:id", bookingHandler.GetBookingByID)
		bookingRoutes.PATCH("/:id", bookingHandler.UpdateBooking)
		bookingRoutes.DELETE("/:id", bookingHandler.DeleteBooking)
	}
}

// SetupTaskRoutes mounts the task endpoints.
func SetupTaskRoutes(authenticatedGroup *gin.RouterGroup, taskHandler *handlers.TaskHandler) {
	taskRoutes := authenticatedGroup.Group("/tasks")
	{
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.GET("", taskHandler.GetTasks)
		taskRoutes.GET("/:id", taskHandler.GetTaskByID)
		taskRoutes.PATCH("/:id", taskHandler.UpdateTask)
		taskRoutes.PATCH("/:id/done", taskHandler.SetTaskDone)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
	}
}

// SetupAuditRoutes mounts the audit trail listing, admin only.
func SetupAuditRoutes(authenticatedGroup *gin.RouterGroup, auditHandler *handlers.AuditHandler) {
	auditRoutes := authenticatedGroup.Group("/audit")
	auditRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		auditRoutes.GET("", auditHandler.GetEntries)
	}
}
