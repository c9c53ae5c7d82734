package main

import (
	"log"
	"time"

	config "github.com/grandesports/training_platform/configs"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/jobs"
	"github.com/grandesports/training_platform/notifications"
	"github.com/grandesports/training_platform/payments"
	"github.com/grandesports/training_platform/routes"
	"github.com/grandesports/training_platform/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	store := database.NewStore(database.DB)
	stripeService := payments.NewStripeService(
		config.Config("STRIPE_SECRET_KEY"),
		config.Config("STRIPE_WEBHOOK_SECRET"),
	)
	mailer := notifications.NewEmailMailer()
	bookingService := services.NewBookingService(
		store,
		stripeService,
		mailer,
		config.Config("APP_BASE_URL"),
		config.ConfigBool("RELEASE_SEAT_ON_CANCEL", true),
	)
	handlers.Init(bookingService)

	c := cron.New()
	c.AddFunc("0 * * * *", jobs.SendSessionReminders)
	c.AddFunc("*/30 * * * *", jobs.MarkCompletedSessions)
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Grande Sports Training",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Grande Sports Training API",
		})
	})

	routes.PublicRoutes(app)
	routes.AuthRoutes(app)
	routes.ProfileRoutes(app)
	routes.CheckoutRoutes(app)
	routes.BookingRoutes(app)
	routes.PaymentRoutes(app)
	routes.AdminRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
