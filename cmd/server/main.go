package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lifeline/backend/internal/config"
	"github.com/lifeline/backend/internal/database"
	"github.com/lifeline/backend/internal/handlers"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/services"
	"github.com/lifeline/backend/internal/session"
	"github.com/lifeline/backend/pkg/logger"
)

func main() {
	logger.Init()

	cfg := config.Load()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("admin seeding failed: %v", err)
	}

	sessions := session.NewStore(time.Duration(cfg.Session.TTLHours) * time.Hour)
	sessions.StartCleanup(cfg.Session.CleanupInterval)

	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(db, sessions, auditService, cfg.Session)
	donorsHandler := handlers.NewDonorsHandler(db)
	requestsHandler := handlers.NewRequestsHandler(db)
	messagesHandler := handlers.NewMessagesHandler(db)
	adminHandler := handlers.NewAdminHandler(db, auditService)

	authMiddleware := middleware.NewAuthMiddleware(sessions, cfg.Session.CookieName)

	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authMiddleware.RequireAuth, authHandler.Logout)
	api.Get("/session", authMiddleware.OptionalAuth, authHandler.Session)

	donorRoutes := api.Group("/donors", authMiddleware.RequireAuth)
	donorRoutes.Post("/", donorsHandler.Create)
	donorRoutes.Get("/", donorsHandler.List)
	donorRoutes.Get("/my", donorsHandler.My)
	donorRoutes.Put("/:id", donorsHandler.Update)

	requestRoutes := api.Group("/blood-requests", authMiddleware.RequireAuth)
	requestRoutes.Post("/", requestsHandler.Create)
	requestRoutes.Get("/", requestsHandler.List)
	requestRoutes.Get("/my", requestsHandler.ListMy)
	requestRoutes.Put("/:id", requestsHandler.UpdateStatus)

	api.Post("/contact-donor", authMiddleware.RequireAuth, messagesHandler.Contact)
	api.Get("/contact-messages/received", authMiddleware.RequireAuth, messagesHandler.Received)

	adminRoutes := api.Group("/admin", authMiddleware.RequireAuth, middleware.AdminOnly)
	adminRoutes.Get("/stats", adminHandler.Stats)
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Delete("/users/:id", adminHandler.DeleteUser)
	adminRoutes.Get("/donors", adminHandler.ListDonors)
	adminRoutes.Delete("/donors/:id", adminHandler.DeleteDonor)
	adminRoutes.Put("/blood-requests/:id", adminHandler.UpdateRequestStatus)
	adminRoutes.Delete("/blood-requests/:id", adminHandler.DeleteRequest)
	adminRoutes.Get("/messages", adminHandler.ListMessages)
	adminRoutes.Get("/audit-log", adminHandler.AuditLog)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
