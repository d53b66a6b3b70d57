package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/tutorlink/api/cache"
	config "github.com/tutorlink/api/configs"
	"github.com/tutorlink/api/database"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/jobs"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/payments"
	"github.com/tutorlink/api/routes"
)

func main() {
	db := database.ConnectDB()
	database.Migrate(db)
	database.SeedAdmin(db)

	emailService := notifications.NewEmailService()
	gateway := payments.NewStripeService()
	store := cache.New()

	background := &jobs.Jobs{DB: db, Notifier: emailService}
	c := cron.New()
	c.AddFunc("*/10 * * * *", background.CompleteElapsedSessions)
	c.AddFunc("*/15 * * * *", background.SendSessionReminders)
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "TutorLink API",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler := &handlers.AuthHandler{DB: db}
	bookingHandler := &handlers.BookingHandler{DB: db, Gateway: gateway, Notifier: emailService}
	paymentHandler := &handlers.PaymentHandler{DB: db, Gateway: gateway, Notifier: emailService}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	subjectHandler := &handlers.SubjectHandler{DB: db, Cache: store}
	userHandler := &handlers.UserHandler{DB: db, Cache: store}

	routes.AuthRoutes(app, authHandler)
	routes.UserRoutes(app, userHandler)
	routes.SubjectRoutes(app, subjectHandler)
	routes.BookingRoutes(app, bookingHandler, paymentHandler)
	routes.ReviewRoutes(app, reviewHandler)
	routes.UploadRoutes(app)

	port := config.Config("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
